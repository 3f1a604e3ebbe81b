package xsscontext

// OpenQuote scans span left to right and returns the quote character that is
// still open at its end, or 0 when every quote has been closed.
//
// Only the first unmatched quote matters: while a ' is open a " is plain text
// and the other way round.
func OpenQuote(span string) byte {
	var open byte
	for i := 0; i < len(span); i++ {
		c := span[i]
		if c != '"' && c != '\'' {
			continue
		}
		switch open {
		case 0:
			open = c
		case c:
			open = 0
		}
	}
	return open
}

// QuoteName returns a printable label for a quote byte.
func QuoteName(q byte) string {
	switch q {
	case '\'':
		return "single"
	case '"':
		return "double"
	default:
		return "none"
	}
}
