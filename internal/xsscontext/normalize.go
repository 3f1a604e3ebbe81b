package xsscontext

import "strings"

// Normalize prepares a prefix for classification.
//
// Backslash-escaped double quotes are removed, then escaped single quotes,
// so they never count as delimiters. A pair uncovered by the first pass is
// removed by the second. Then every '<' that appears while a quote is open
// is rewritten to "&lt;" so it cannot be taken for a tag boundary.
func Normalize(prefix string) string {
	s := strings.ReplaceAll(prefix, `\"`, "")
	s = strings.ReplaceAll(s, `\'`, "")
	if strings.IndexByte(s, '<') == -1 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	var open byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			if open == 0 {
				open = c
			} else if open == c {
				open = 0
			}
		case c == '<' && open != 0:
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
