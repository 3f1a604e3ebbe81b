package xsscontext

import (
	"fmt"
	"strings"
)

// Policy holds the knobs that change how a context is judged, not whether it
// matches.
type Policy struct {
	// ScriptTextExecutable treats a reflection in plain JavaScript code as
	// already executing: SCRIPT_TEXT then needs no breakout at all.
	ScriptTextExecutable bool
}

// DefaultPolicy is used by the package-level helpers and Variant methods.
var DefaultPolicy = Policy{ScriptTextExecutable: true}

// Variant is one named context in the catalog. Variants are built once at
// package init and never change afterwards.
type Variant struct {
	name      string
	region    Region
	quote     byte
	match     func(s *state) bool
	canBreak  func(v *Variant, payload string) bool
	needBreak func(p Policy, document string) bool
}

// variantSpec is the table row a Variant is built from.
type variantSpec struct {
	name      string
	region    Region
	quote     byte
	match     func(s *state) bool
	canBreak  func(v *Variant, payload string) bool
	needBreak func(p Policy, document string) bool
}

// mustVariant builds a Variant and panics when the row is incomplete.
func mustVariant(spec variantSpec) *Variant {
	switch {
	case spec.name == "":
		panic("xsscontext: variant without a name")
	case spec.region < RegionHTML || spec.region > RegionStyle:
		panic(fmt.Sprintf("xsscontext: variant %s: invalid region %d", spec.name, spec.region))
	case spec.quote != 0 && spec.quote != '"' && spec.quote != '\'':
		panic(fmt.Sprintf("xsscontext: variant %s: invalid quote %q", spec.name, spec.quote))
	case spec.match == nil:
		panic(fmt.Sprintf("xsscontext: variant %s: missing matcher", spec.name))
	case spec.canBreak == nil:
		panic(fmt.Sprintf("xsscontext: variant %s: missing breakout check", spec.name))
	}
	return &Variant{
		name:      spec.name,
		region:    spec.region,
		quote:     spec.quote,
		match:     spec.match,
		canBreak:  spec.canBreak,
		needBreak: spec.needBreak,
	}
}

// Name returns the fixed context tag, e.g. "ATTR_SINGLE_QUOTE".
func (v *Variant) Name() string { return v.name }

// Region returns the region the variant belongs to.
func (v *Variant) Region() Region { return v.region }

// Quote returns the quote character of quote variants, 0 for the others.
func (v *Variant) Quote() byte { return v.quote }

func (v *Variant) String() string { return v.name }

// IsMatch reports whether the end of prefix lies in this context.
func (v *Variant) IsMatch(prefix string) bool {
	return v.match(analyze(prefix))
}

// CanBreak reports whether payload carries the syntax needed to leave this
// context.
func (v *Variant) CanBreak(payload string) bool {
	return v.canBreak(v, payload)
}

// NeedBreak reports whether a reflection in this context must escape it
// before script can run. It uses DefaultPolicy.
func (v *Variant) NeedBreak(document string) bool {
	return v.needBreakUnder(DefaultPolicy, document)
}

// IsExecutable is the inverse of NeedBreak under DefaultPolicy.
func (v *Variant) IsExecutable(document string) bool {
	return !v.NeedBreak(document)
}

func (v *Variant) needBreakUnder(p Policy, document string) bool {
	if v.needBreak == nil {
		return true
	}
	return v.needBreak(p, document)
}

// state is a normalized prefix plus the facts every matcher shares.
type state struct {
	text  string
	block block
}

func analyze(prefix string) *state {
	text := Normalize(prefix)
	return &state{text: text, block: locate(text)}
}

func (s *state) inHTML() bool   { return s.block.region == RegionHTML }
func (s *state) inScript() bool { return s.block.region == RegionScript }
func (s *state) inStyle() bool  { return s.block.region == RegionStyle }

// body is the script or style text after the opening tag.
func (s *state) body() string {
	if s.block.body < 0 {
		return ""
	}
	return s.text[s.block.body:]
}

// blockSpan is the text after the "<" of the enclosing <script/<style token.
// Quotes inside the opening tag's own attributes are part of it.
func (s *state) blockSpan() string {
	if s.block.start < 0 {
		return ""
	}
	return s.text[s.block.start+1:]
}

func (s *state) htmlComment() bool {
	return s.inHTML() && strings.LastIndex(s.text, "<!--") > strings.LastIndex(s.text, "-->")
}

// openTag returns the index of the '<' of a tag that has not been closed yet.
func (s *state) openTag() (int, bool) {
	lt := strings.LastIndexByte(s.text, '<')
	if lt <= strings.LastIndexByte(s.text, '>') {
		return -1, false
	}
	return lt, true
}

func (s *state) tagQuote() (byte, bool) {
	lt, ok := s.openTag()
	if !ok {
		return 0, false
	}
	return OpenQuote(s.text[lt+1:]), true
}

func (s *state) multiComment() bool {
	body := s.body()
	return strings.LastIndex(body, "/*") > strings.LastIndex(body, "*/")
}

func (s *state) lineComment() bool {
	body := s.body()
	last := body[strings.LastIndexByte(body, '\n')+1:]
	return strings.HasPrefix(strings.TrimSpace(last), "//")
}

func (s *state) scriptComment() bool {
	return s.inScript() && (s.multiComment() || s.lineComment())
}

func (s *state) styleComment() bool {
	return s.inStyle() && s.multiComment()
}

func containsAll(payload string, chars ...string) bool {
	for _, c := range chars {
		if !strings.Contains(payload, c) {
			return false
		}
	}
	return true
}
