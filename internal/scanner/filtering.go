// Package scanner - Character filtering detection implementation
package scanner

import (
	"context"
	"strings"

	"github.com/Serdar715/xssctx/internal/payloads"
)

// Sender sends one value through an injection point.
type Sender interface {
	Send(ctx context.Context, p InjectionPoint, value string) (*Response, error)
}

// DefaultFilterTester implements FilterTester interface
type DefaultFilterTester struct {
	sender Sender
	chars  []string
}

// NewFilterTester creates a filter tester probing payloads.BreakoutChars.
func NewFilterTester(sender Sender) *DefaultFilterTester {
	return &DefaultFilterTester{
		sender: sender,
		chars:  payloads.BreakoutChars,
	}
}

// TestFiltering returns the breakout characters that do not come back raw.
// A character whose probe is not reflected at all, or whose request fails,
// is left out: nothing is known about it.
func (f *DefaultFilterTester) TestFiltering(ctx context.Context, p InjectionPoint) []string {
	var filtered []string
	token := randomAlnum(CanaryLength)

	for _, char := range f.chars {
		select {
		case <-ctx.Done():
			return filtered
		default:
		}

		if f.isFiltered(ctx, p, token, char) {
			filtered = append(filtered, char)
		}
	}
	return filtered
}

// isFiltered sends token+char+token and checks for the raw sequence.
func (f *DefaultFilterTester) isFiltered(ctx context.Context, p InjectionPoint, token, char string) bool {
	resp, err := f.sender.Send(ctx, p, token+char+token)
	if err != nil {
		return false
	}
	if !strings.Contains(resp.Body, token) {
		return false
	}
	return !strings.Contains(resp.Body, token+char+token)
}
