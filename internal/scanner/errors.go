// Package scanner - Error types for the audit
package scanner

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidURL indicates the URL format is invalid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrNoParameters indicates no injection point was found
	ErrNoParameters = errors.New("no injectable parameters found")

	// ErrRequestFailed indicates the HTTP request failed
	ErrRequestFailed = errors.New("HTTP request failed")

	// ErrResponseTooLarge indicates response exceeded size limit
	ErrResponseTooLarge = errors.New("response body too large")

	// ErrContextCanceled indicates the operation was canceled
	ErrContextCanceled = errors.New("operation canceled")

	// ErrBrowserUnavailable indicates no browser could be launched or the
	// circuit breaker is open
	ErrBrowserUnavailable = errors.New("browser unavailable")
)

// ScanError provides detailed error information for scanning operations
type ScanError struct {
	URL       string // The URL being scanned
	Parameter string // The parameter being tested (if applicable)
	Payload   string // The payload being tested (if applicable)
	Operation string // The operation that failed
	Cause     error  // The underlying error
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("%s failed for param '%s' on %s: %v",
			e.Operation, e.Parameter, truncateString(e.URL, 50), e.Cause)
	}
	return fmt.Sprintf("%s failed for %s: %v",
		e.Operation, truncateString(e.URL, 50), e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// NewScanError creates a new ScanError
func NewScanError(operation, url string, cause error) *ScanError {
	return &ScanError{
		URL:       url,
		Operation: operation,
		Cause:     cause,
	}
}

// NewPointError creates a ScanError for a failure on one injection point
func NewPointError(operation string, p InjectionPoint, payload string, cause error) *ScanError {
	return &ScanError{
		URL:       p.URL,
		Parameter: p.Name,
		Payload:   payload,
		Operation: operation,
		Cause:     cause,
	}
}

// truncateString truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ErrorAggregator collects errors from multiple goroutines safely.
type ErrorAggregator struct {
	errors []error
	mu     sync.Mutex
}

// NewErrorAggregator creates a new error aggregator instance.
func NewErrorAggregator() *ErrorAggregator {
	return &ErrorAggregator{}
}

// Add appends an error to the aggregator if it's not nil.
func (ea *ErrorAggregator) Add(err error) {
	if err == nil {
		return
	}
	ea.mu.Lock()
	ea.errors = append(ea.errors, err)
	ea.mu.Unlock()
}

// Errors returns a copy of all collected errors, nil when there are none.
func (ea *ErrorAggregator) Errors() []error {
	ea.mu.Lock()
	defer ea.mu.Unlock()

	if len(ea.errors) == 0 {
		return nil
	}
	result := make([]error, len(ea.errors))
	copy(result, ea.errors)
	return result
}

// Messages returns the collected errors as strings.
func (ea *ErrorAggregator) Messages() []string {
	var out []string
	for _, err := range ea.Errors() {
		out = append(out, err.Error())
	}
	return out
}

// Count returns the number of collected errors.
func (ea *ErrorAggregator) Count() int {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	return len(ea.errors)
}

// Error implements the error interface for ErrorAggregator.
func (ea *ErrorAggregator) Error() string {
	msgs := ea.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return fmt.Sprintf("%d errors occurred: [%s]", len(msgs), strings.Join(msgs, "; "))
}

// Combined returns a single error wrapping all collected errors, or nil.
func (ea *ErrorAggregator) Combined() error {
	return errors.Join(ea.Errors()...)
}
