// Package scanner - Finding output
package scanner

import (
	"fmt"
	"sync"

	"github.com/Serdar715/xssctx/internal/config"
	"github.com/fatih/color"
)

// VulnReporter receives findings as the audit produces them.
type VulnReporter interface {
	// Report outputs a vulnerability finding
	Report(vuln *config.Vulnerability, count int)
	// ReportSummary outputs a summary of all findings
	ReportSummary(total, verified, unverified int)
}

// ConsoleReporter prints findings to the terminal. Safe for concurrent use.
type ConsoleReporter struct {
	mu      sync.Mutex
	verbose bool
}

// NewConsoleReporter creates a new console-based reporter.
func NewConsoleReporter(verbose bool) *ConsoleReporter {
	return &ConsoleReporter{verbose: verbose}
}

// Report outputs a vulnerability to the console.
func (r *ConsoleReporter) Report(vuln *config.Vulnerability, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color.Red("\n  [!] XSS #%d (%s) in parameter '%s'", count, vuln.Type, vuln.Parameter)
	color.White("  Severity:  %s", colorSeverity(vuln.Severity))
	color.White("  Context:   %s (%s)", vuln.Context, vuln.Region)
	if vuln.Attribute != "" {
		color.White("  Attribute: %s", vuln.Attribute)
	}

	if vuln.Verified {
		color.Green("  Verified:  YES (%s)", MethodBrowser)
	} else {
		color.Yellow("  Verified:  NO (%s)", MethodStatic)
	}
	if vuln.WAFBypassed {
		color.Magenta("  WAF:       bypassed")
	}

	color.Cyan("  Payload:   %s", truncateString(vuln.Payload, 100))
	color.Cyan("  %s %s", vuln.Method, vuln.URL)
	if vuln.ReadURL != "" {
		color.Cyan("  Read at:   %s", vuln.ReadURL)
	}
	if r.verbose && vuln.Evidence != "" {
		color.White("  Evidence:  %s", vuln.Evidence)
	}
	fmt.Println()
}

// ReportSummary outputs a summary of all findings.
func (r *ConsoleReporter) ReportSummary(total, verified, unverified int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color.Cyan("\n═══════════════════════ FINDINGS ═══════════════════════")
	if total == 0 {
		color.Green("  No exploitable reflections found")
	} else {
		color.Red("  Total: %d", total)
		if verified > 0 {
			color.Red("    Verified:   %d", verified)
		}
		if unverified > 0 {
			color.Yellow("    Unverified: %d", unverified)
		}
	}
	color.Cyan("═════════════════════════════════════════════════════════")
}

func colorSeverity(severity string) string {
	switch severity {
	case SeverityCritical, SeverityHigh:
		return color.RedString(severity)
	case SeverityMedium:
		return color.YellowString(severity)
	case SeverityLow:
		return color.WhiteString(severity)
	default:
		return severity
	}
}

// SilentReporter collects findings without printing them.
type SilentReporter struct {
	mu    sync.Mutex
	vulns []config.Vulnerability
}

// NewSilentReporter creates a new silent reporter.
func NewSilentReporter() *SilentReporter {
	return &SilentReporter{}
}

// Report silently collects the vulnerability.
func (r *SilentReporter) Report(vuln *config.Vulnerability, count int) {
	r.mu.Lock()
	r.vulns = append(r.vulns, *vuln)
	r.mu.Unlock()
}

// ReportSummary does nothing for silent reporter.
func (r *SilentReporter) ReportSummary(total, verified, unverified int) {}

// Vulnerabilities returns a copy of the collected findings.
func (r *SilentReporter) Vulnerabilities() []config.Vulnerability {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]config.Vulnerability, len(r.vulns))
	copy(out, r.vulns)
	return out
}
