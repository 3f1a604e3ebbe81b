package scanner

import "time"

const (
	// Default configuration values
	DefaultBrowserWaitTime = 1500 * time.Millisecond
	DefaultNavigationDelay = 500 * time.Millisecond
	DefaultTimeout         = 30 * time.Second
	DefaultThreads         = 5

	// Evidence is the reflection plus this many bytes either side
	EvidenceContextRadius = 50

	// Random tokens
	CanaryPrefix = "xsc"
	CanaryLength = 6
	ProbeLength  = 4

	// Vulnerability types
	VulnTypeReflected = "reflected"
	VulnTypeStored    = "stored"

	// Verification methods
	MethodBrowser = "Browser Execution"
	MethodStatic  = "Context Analysis"

	// Severity levels
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// MaxResponseBodyBytes is the maximum response body size to read
const MaxResponseBodyBytes = 1 * 1024 * 1024 // 1MB

// DefaultUserAgent is the default user agent for requests
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
