package payloads

import (
	"fmt"
	"net/url"
	"strings"
)

// Characters rewritten by the entity and escape encoders.
const sensitiveChars = "<>\"'()"

// Encoder produces encoded forms of a payload for filters that decode
// input before reflecting it.
type Encoder struct{}

// NewEncoder creates a new payload encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// URLEncode performs standard URL encoding
func (e *Encoder) URLEncode(payload string) string {
	return url.QueryEscape(payload)
}

// DoubleURLEncode performs double URL encoding
func (e *Encoder) DoubleURLEncode(payload string) string {
	return url.QueryEscape(url.QueryEscape(payload))
}

// HTMLEntityEncode encodes sensitive characters as decimal entities,
// e.g. < -> &#60;
func (e *Encoder) HTMLEntityEncode(payload string) string {
	return e.mapSensitive(payload, func(r rune) string { return fmt.Sprintf("&#%d;", r) })
}

// HTMLEntityHexEncode encodes sensitive characters as hex entities,
// e.g. < -> &#x3c;
func (e *Encoder) HTMLEntityHexEncode(payload string) string {
	return e.mapSensitive(payload, func(r rune) string { return fmt.Sprintf("&#x%x;", r) })
}

// UnicodeEncode encodes sensitive and non-ASCII characters as JavaScript
// escapes, e.g. < -> \u003c
func (e *Encoder) UnicodeEncode(payload string) string {
	var sb strings.Builder
	for _, r := range payload {
		if r > 127 || strings.ContainsRune(sensitiveChars, r) {
			fmt.Fprintf(&sb, "\\u%04x", r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Variants returns every encoded form of payload; the unicode form only for
// payloads that run script.
func (e *Encoder) Variants(payload string) []string {
	out := []string{
		e.URLEncode(payload),
		e.DoubleURLEncode(payload),
		e.HTMLEntityEncode(payload),
		e.HTMLEntityHexEncode(payload),
	}
	if strings.Contains(payload, "<script") {
		out = append(out, e.UnicodeEncode(payload))
	}
	return out
}

func (e *Encoder) mapSensitive(payload string, enc func(rune) string) string {
	var sb strings.Builder
	for _, r := range payload {
		if strings.ContainsRune(sensitiveChars, r) {
			sb.WriteString(enc(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
