package xsscontext

import "strings"

// Region is the macro lexical mode at an insertion point.
type Region int

const (
	RegionHTML Region = iota
	RegionScript
	RegionStyle
)

// String returns the region label used in output.
func (r Region) String() string {
	switch r {
	case RegionScript:
		return "script"
	case RegionStyle:
		return "style"
	default:
		return "html"
	}
}

const (
	scriptOpen  = "<script"
	scriptClose = "</script>"
	styleOpen   = "<style"
	styleClose  = "</style>"
)

// block describes the script or style element enclosing the end of a prefix.
//
// start is the index of the opening "<script"/"<style" token and body the
// index just past the '>' that closes the opening tag. Both are -1 for the
// HTML region.
type block struct {
	region Region
	start  int
	body   int
}

// ClassifyRegion decides whether the end of prefix lies in HTML, inside a
// <script> body or inside a <style> body.
//
// Only the rightmost opener is considered: a prefix is in a script body when
// its last "<script" is not followed by "</script>" and the opening tag has
// already been closed by a '>'. Nothing is stacked, so an unclosed script
// followed by another script opener is classified by the last opener alone.
func ClassifyRegion(prefix string) Region {
	return locate(prefix).region
}

func locate(prefix string) block {
	lower := asciiLower(prefix)
	script := openElement(lower, scriptOpen, scriptClose)
	style := openElement(lower, styleOpen, styleClose)

	// When both look open the later opener wins.
	switch {
	case script >= 0 && script > style:
		return block{region: RegionScript, start: script, body: bodyStart(lower, script)}
	case style >= 0:
		return block{region: RegionStyle, start: style, body: bodyStart(lower, style)}
	}
	return block{region: RegionHTML, start: -1, body: -1}
}

// openElement returns the index of the rightmost open token when it has no
// later close token and its opening tag is complete, -1 otherwise.
func openElement(lower, open, close string) int {
	start := strings.LastIndex(lower, open)
	if start == -1 || start <= strings.LastIndex(lower, close) {
		return -1
	}
	if !strings.Contains(lower[start:], ">") {
		return -1
	}
	return start
}

func bodyStart(lower string, start int) int {
	return start + strings.IndexByte(lower[start:], '>') + 1
}

// asciiLower lower-cases A-Z only so that byte offsets stay aligned with
// the original text.
func asciiLower(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = c + ('a' - 'A')
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}
