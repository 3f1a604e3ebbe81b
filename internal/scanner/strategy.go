package scanner

import (
	"context"

	"github.com/go-rod/rod"
)

// VerificationResult is what a strategy observed in the browser.
type VerificationResult struct {
	Confirmed bool
	Message   string // dialog text or DOM proof
	Channel   string // "dialog" or "dom"
}

// VerificationStrategy confirms execution of a payload in a browser page.
type VerificationStrategy interface {
	// Name returns the unique name of the strategy
	Name() string

	// InjectMarker rewrites payload so that running it reveals marker
	InjectMarker(payload, marker string) string

	// Verify loads urlStr in page and reports whether marker surfaced
	Verify(ctx context.Context, page *rod.Page, urlStr, marker string) (VerificationResult, error)
}
