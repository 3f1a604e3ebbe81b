package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidTarget is wrapped by Validate when the target URL is unusable.
var ErrInvalidTarget = errors.New("invalid target URL")

// ScanConfig holds all configuration for an XSS audit
type ScanConfig struct {
	TargetURL string
	Method    string // GET or POST for the target's own parameters
	Data      string // POST body when Method is POST

	Threads int
	Timeout int // seconds
	Delay   int // milliseconds between requests per worker

	ProxyURL    string
	Cookies     string
	AuthHeader  string
	Headers     map[string]string
	HeadersFile string

	PayloadFile  string
	SmartPayload bool
	WAFType      string

	DiscoverForms   bool
	CheckFiltering  bool
	StoredXSS       bool
	StoredCheckURLs []string

	// ScriptTextNeedsBreak treats plain script text as inert until broken out of.
	ScriptTextNeedsBreak bool

	Verify          bool
	VisibleMode     bool
	BrowserWaitTime int // milliseconds
	NavigationDelay int // milliseconds

	OutputFormat string
	OutputFile   string
	Verbose      bool
	Silent       bool
}

// Vulnerability represents a detected XSS finding
type Vulnerability struct {
	Type        string `json:"type"`       // reflected, stored
	Payload     string `json:"payload"`    // The payload that worked
	URL         string `json:"url"`        // PoC URL (GET) or form action
	Method      string `json:"method"`     // HTTP method of the write request
	ReadURL     string `json:"read_url,omitempty"`
	Parameter   string `json:"parameter"`  // Vulnerable parameter
	Context     string `json:"context"`    // Context name, e.g. ATTR_DOUBLE_QUOTE
	Region      string `json:"region"`     // html, script, style
	Attribute   string `json:"attribute,omitempty"`
	Occurrence  int    `json:"occurrence"` // Occurrence ordinal of the payload in the body
	Severity    string `json:"severity"`   // critical, high, medium, low
	WAFBypassed bool   `json:"waf_bypassed"`
	Verified    bool   `json:"verified"`
	Evidence    string `json:"evidence"`
}

// ScanResult contains the complete scan results
type ScanResult struct {
	ScanID          string          `json:"scan_id"`
	TargetURL       string          `json:"target_url"`
	TargetURLs      []string        `json:"target_urls,omitempty"` // batch scans only
	ScanStartTime   time.Time       `json:"scan_start_time"`
	ScanEndTime     time.Time       `json:"scan_end_time"`
	InjectionPoints int             `json:"injection_points"`
	TotalPayloads   int             `json:"total_payloads"`
	TestedPayloads  int             `json:"tested_payloads"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	WAFDetected     string          `json:"waf_detected,omitempty"`
	WAFBypassed     bool            `json:"waf_bypassed"`
	ScanDuration    string          `json:"scan_duration"`
	ErrorCount      int             `json:"error_count"`
	Errors          []string        `json:"errors,omitempty"`
}

// DefaultConfig returns a default scan configuration
func DefaultConfig() *ScanConfig {
	return &ScanConfig{
		Method:          "GET",
		WAFType:         "auto",
		SmartPayload:    true,
		StoredXSS:       true,
		OutputFormat:    "json",
		Threads:         5,
		Timeout:         30,
		BrowserWaitTime: 1500,
		NavigationDelay: 500,
		Headers:         make(map[string]string),
	}
}

// Validate checks the fields a scan cannot start without.
func (c *ScanConfig) Validate() error {
	u, err := url.Parse(c.TargetURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w %q", ErrInvalidTarget, c.TargetURL)
	}
	switch strings.ToUpper(c.Method) {
	case "GET", "POST":
	default:
		return fmt.Errorf("unsupported method %q", c.Method)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", c.Timeout)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %d", c.Delay)
	}
	switch c.OutputFormat {
	case "json", "html", "markdown", "md":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	if c.Verbose && c.Silent {
		return fmt.Errorf("verbose and silent are mutually exclusive")
	}
	return nil
}
