package xsscontext

import "strings"

// Context names.
const (
	Tag                = "TAG"
	HTMLText           = "HTML_TEXT"
	HTMLComment        = "HTML_COMMENT"
	AttrName           = "ATTR_NAME"
	AttrSingleQuote    = "ATTR_SINGLE_QUOTE"
	AttrDoubleQuote    = "ATTR_DOUBLE_QUOTE"
	ScriptMultiComment = "SCRIPT_MULTI_COMMENT"
	ScriptLineComment  = "SCRIPT_LINE_COMMENT"
	ScriptSingleQuote  = "SCRIPT_SINGLE_QUOTE"
	ScriptDoubleQuote  = "SCRIPT_DOUBLE_QUOTE"
	ScriptText         = "SCRIPT_TEXT"
	StyleText          = "STYLE_TEXT"
	StyleComment       = "STYLE_COMMENT"
	StyleSingleQuote   = "STYLE_SINGLE_QUOTE"
	StyleDoubleQuote   = "STYLE_DOUBLE_QUOTE"
)

// catalog is the ordered, process-wide variant registry.
var catalog = buildCatalog()

var catalogByName = func() map[string]*Variant {
	m := make(map[string]*Variant, len(catalog))
	for _, v := range catalog {
		if _, dup := m[v.name]; dup {
			panic("xsscontext: duplicate variant " + v.name)
		}
		m[v.name] = v
	}
	return m
}()

// Catalog returns the variants in evaluation order. The slice is a copy; the
// variants themselves are shared and immutable.
func Catalog() []*Variant {
	out := make([]*Variant, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a variant by name.
func Lookup(name string) (*Variant, bool) {
	v, ok := catalogByName[name]
	return v, ok
}

func buildCatalog() []*Variant {
	specs := []variantSpec{
		{
			name:   Tag,
			region: RegionHTML,
			match: func(s *state) bool {
				return s.inHTML() && !s.htmlComment() && strings.HasSuffix(s.text, "<")
			},
			canBreak: func(_ *Variant, p string) bool { return strings.ContainsAny(p, " >") },
		},
		{
			name:   HTMLText,
			region: RegionHTML,
			match: func(s *state) bool {
				if !s.inHTML() || s.htmlComment() {
					return false
				}
				return strings.LastIndexByte(s.text, '<') <= strings.LastIndexByte(s.text, '>')
			},
			canBreak: func(_ *Variant, p string) bool { return strings.Contains(p, "<") },
		},
		{
			name:     HTMLComment,
			region:   RegionHTML,
			match:    (*state).htmlComment,
			canBreak: func(_ *Variant, p string) bool { return containsAll(p, "-", ">", "<") },
		},
		{
			name:   AttrName,
			region: RegionHTML,
			match: func(s *state) bool {
				if !s.inHTML() || s.htmlComment() {
					return false
				}
				lt, ok := s.openTag()
				if !ok {
					return false
				}
				rest := s.text[lt+1:]
				return rest != "" && OpenQuote(rest) == 0
			},
			canBreak: func(_ *Variant, p string) bool { return strings.Contains(p, "=") },
		},
		attrQuote(AttrSingleQuote, '\''),
		attrQuote(AttrDoubleQuote, '"'),
		{
			name:   ScriptMultiComment,
			region: RegionScript,
			match: func(s *state) bool {
				return s.inScript() && s.multiComment()
			},
			canBreak: func(_ *Variant, p string) bool { return containsAll(p, "/", "*") },
		},
		{
			name:   ScriptLineComment,
			region: RegionScript,
			match: func(s *state) bool {
				return s.inScript() && s.lineComment()
			},
			canBreak: func(_ *Variant, p string) bool { return strings.Contains(p, "\n") },
		},
		blockQuote(ScriptSingleQuote, RegionScript, '\''),
		blockQuote(ScriptDoubleQuote, RegionScript, '"'),
		{
			name:   ScriptText,
			region: RegionScript,
			match: func(s *state) bool {
				return s.inScript() && !s.scriptComment() && OpenQuote(s.blockSpan()) == 0
			},
			canBreak: func(_ *Variant, p string) bool { return containsAll(p, "<", "/") },
			needBreak: func(p Policy, _ string) bool {
				return !p.ScriptTextExecutable
			},
		},
		{
			name:   StyleText,
			region: RegionStyle,
			match: func(s *state) bool {
				return s.inStyle() && !s.styleComment() && OpenQuote(s.blockSpan()) == 0
			},
			canBreak: func(_ *Variant, p string) bool { return containsAll(p, "<", "/") },
		},
		{
			name:     StyleComment,
			region:   RegionStyle,
			match:    (*state).styleComment,
			canBreak: func(_ *Variant, p string) bool { return containsAll(p, "/", "*") },
		},
		blockQuote(StyleSingleQuote, RegionStyle, '\''),
		blockQuote(StyleDoubleQuote, RegionStyle, '"'),
	}

	variants := make([]*Variant, 0, len(specs))
	for _, spec := range specs {
		variants = append(variants, mustVariant(spec))
	}
	return variants
}

// attrQuote is an HTML attribute value opened with q inside an unclosed tag.
func attrQuote(name string, q byte) variantSpec {
	return variantSpec{
		name:   name,
		region: RegionHTML,
		quote:  q,
		match: func(s *state) bool {
			if !s.inHTML() || s.htmlComment() {
				return false
			}
			open, ok := s.tagQuote()
			return ok && open == q
		},
		canBreak: func(v *Variant, p string) bool {
			quote := string(v.quote)
			if strings.Contains(p, quote) {
				return true
			}
			// A payload that itself ends in href=" or src=" starts a new
			// URL attribute, e.g. for javascript: scheme injection.
			p = strings.ReplaceAll(strings.ToLower(p), " ", "")
			return strings.HasSuffix(p, "href="+quote) || strings.HasSuffix(p, "src="+quote)
		},
	}
}

// blockQuote is a string literal opened with q inside a script or style body.
func blockQuote(name string, region Region, q byte) variantSpec {
	return variantSpec{
		name:   name,
		region: region,
		quote:  q,
		match: func(s *state) bool {
			if s.block.region != region {
				return false
			}
			if region == RegionScript && s.scriptComment() {
				return false
			}
			if region == RegionStyle && s.styleComment() {
				return false
			}
			return OpenQuote(s.blockSpan()) == q
		},
		canBreak: func(v *Variant, p string) bool {
			return strings.IndexByte(p, v.quote) >= 0
		},
	}
}
