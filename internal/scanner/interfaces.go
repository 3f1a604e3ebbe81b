// Package scanner - Interface definitions for the audit components
package scanner

import (
	"context"
	"net/http"
)

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ReflectionDetector detects if and how a probe is reflected in response
type ReflectionDetector interface {
	// Detect checks if probe is reflected in body
	// Returns: isReflected, format (raw/url-encoded/html-encoded)
	Detect(body, probe string) (bool, string)
}

// FilterTester tests which breakout characters are filtered
type FilterTester interface {
	TestFiltering(ctx context.Context, p InjectionPoint) []string
}

// PayloadSource returns candidate payloads for the contexts a marker was
// reflected in
type PayloadSource interface {
	ForContexts(names []string, wafType string) []string
}

// Verifier confirms a finding by executing payload through the point
type Verifier interface {
	Verify(ctx context.Context, p InjectionPoint, payload string) (VerificationResult, error)
	Close() error
}
