// Package xsscontext classifies the syntactic context of every reflection of
// a marker string in an HTML document and decides whether a payload can
// break out of it.
//
// It is a lightweight lexer, not a parser: it looks at the text before each
// marker occurrence and applies a fixed catalog of heuristics. An occurrence
// may match several contexts, or none. No match does not mean safe.
//
// Everything here is a pure function of its inputs and is safe for
// concurrent use.
package xsscontext

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownContext is returned for a context name outside the catalog.
var ErrUnknownContext = errors.New("unknown context")

// Match is one context found for one marker occurrence.
type Match struct {
	Variant *Variant

	// Occurrence is the zero-based ordinal of the marker occurrence.
	Occurrence int

	// Offset is the byte offset of the occurrence in the document.
	Offset int

	// Attribute is the lower-cased attribute name for ATTR_SINGLE_QUOTE and
	// ATTR_DOUBLE_QUOTE matches.
	Attribute string
}

// Name returns the context name of the match.
func (m Match) Name() string {
	if m.Variant == nil {
		return ""
	}
	return m.Variant.name
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// Engine runs the catalog over documents under a Policy.
type Engine struct {
	variants []*Variant
	policy   Policy
}

// New creates an Engine over the shared catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		variants: catalog,
		policy:   DefaultPolicy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Policy returns the engine policy.
func (e *Engine) Policy() Policy { return e.policy }

// Classify returns every context of every occurrence of marker in document,
// in occurrence order and catalog order within an occurrence. A missing or
// empty marker gives an empty result.
func (e *Engine) Classify(document, marker string) []Match {
	if marker == "" {
		return nil
	}

	var matches []Match
	occurrence := 0
	offset := 0
	for {
		idx := strings.Index(document[offset:], marker)
		if idx == -1 {
			break
		}
		offset += idx

		s := analyze(document[:offset])
		for _, v := range e.variants {
			if !v.match(s) {
				continue
			}
			m := Match{Variant: v, Occurrence: occurrence, Offset: offset}
			if v.region == RegionHTML && v.quote != 0 {
				m.Attribute = attributeName(s)
			}
			matches = append(matches, m)
		}

		occurrence++
		offset += len(marker)
	}
	return matches
}

// CanBreak reports whether payload can leave the named context.
func (e *Engine) CanBreak(name, payload string) (bool, error) {
	v, err := lookup(name)
	if err != nil {
		return false, err
	}
	return v.CanBreak(payload), nil
}

// NeedBreak reports whether a reflection in the named context must escape it
// before script can run.
func (e *Engine) NeedBreak(name, document string) (bool, error) {
	v, err := lookup(name)
	if err != nil {
		return false, err
	}
	return v.needBreakUnder(e.policy, document), nil
}

// Exploitable applies the audit rule: a match is exploitable with payload
// when no breakout is needed or the payload can break out.
func (e *Engine) Exploitable(m Match, document, payload string) bool {
	if m.Variant == nil {
		return false
	}
	return !m.Variant.needBreakUnder(e.policy, document) || m.Variant.CanBreak(payload)
}

// Executable reports whether text reflected at m runs as script or is
// loaded as a URL without leaving the context: plain script under the
// policy, or the value of an event handler or URL attribute.
func (e *Engine) Executable(m Match, document string) bool {
	if m.Variant == nil {
		return false
	}
	if !m.Variant.needBreakUnder(e.policy, document) {
		return true
	}
	return IsSinkAttribute(m.Attribute)
}

func lookup(name string) (*Variant, error) {
	v, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
	}
	return v, nil
}

// Classify runs the default engine.
func Classify(document, marker string) []Match {
	return defaultEngine.Classify(document, marker)
}

// CanBreak runs the default engine.
func CanBreak(name, payload string) (bool, error) {
	return defaultEngine.CanBreak(name, payload)
}

// NeedBreak runs the default engine.
func NeedBreak(name, document string) (bool, error) {
	return defaultEngine.NeedBreak(name, document)
}

// Exploitable runs the default engine.
func Exploitable(m Match, document, payload string) bool {
	return defaultEngine.Exploitable(m, document, payload)
}
