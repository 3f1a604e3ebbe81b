package xsscontext

import "strings"

// Attributes whose value is fetched or navigated to as a URL, or parsed as
// CSS. Event handlers (on*) are matched separately.
var sinkAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"data":       true,
	"srcdoc":     true,
	"style":      true,
	"xlink:href": true,
}

// IsSinkAttribute reports whether an attribute value is run as script or
// loaded as a URL by the browser.
func IsSinkAttribute(name string) bool {
	name = strings.ToLower(name)
	if len(name) > 2 && strings.HasPrefix(name, "on") {
		return true
	}
	return sinkAttributes[name]
}

// attributeName returns the name of the attribute whose quoted value is open
// at the end of the state, or "" when it cannot be told.
func attributeName(s *state) string {
	lt, ok := s.openTag()
	if !ok {
		return ""
	}
	span := s.text[lt+1:]

	var open byte
	openAt := -1
	for i := 0; i < len(span); i++ {
		c := span[i]
		if c != '"' && c != '\'' {
			continue
		}
		switch open {
		case 0:
			open, openAt = c, i
		case c:
			open, openAt = 0, -1
		}
	}
	if openAt < 0 {
		return ""
	}

	before := strings.TrimRight(span[:openAt], " \t\r\n")
	if !strings.HasSuffix(before, "=") {
		return ""
	}
	before = strings.TrimRight(before[:len(before)-1], " \t\r\n")

	start := strings.LastIndexAny(before, " \t\r\n/\"'") + 1
	return asciiLower(before[start:])
}
