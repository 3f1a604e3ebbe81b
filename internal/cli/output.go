package cli

import (
	"fmt"
	"strings"

	"github.com/Serdar715/xssctx/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// loadURLsFromFile loads URLs from a file (one per line)
func loadURLsFromFile(path string) ([]string, error) {
	urls, err := config.ReadLines(path)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no valid URLs found in file")
	}
	return urls, nil
}

// printConfigSummary prints the scan configuration
func printConfigSummary(cfg *config.ScanConfig, urlCount int) {
	color.Yellow("\n┌─────────────────────────────────────────────────┐")
	color.Yellow("│              SCAN CONFIGURATION                 │")
	color.Yellow("└─────────────────────────────────────────────────┘")

	if urlCount > 1 {
		color.White("  📋 Mode:        Batch Scan (%d URLs)", urlCount)
	} else {
		color.White("  📋 Mode:        Single URL Scan (%s)", cfg.Method)
	}

	color.White("  🧵 Threads:     %d", cfg.Threads)
	color.White("  ⏱️  Timeout:     %ds", cfg.Timeout)
	color.White("  🛡️  WAF:         %s", cfg.WAFType)

	if cfg.Delay > 0 {
		color.White("  ⏳ Delay:       %dms (rate limiting)", cfg.Delay)
	}
	if cfg.ProxyURL != "" {
		color.White("  🔀 Proxy:       %s", cfg.ProxyURL)
	}
	if cfg.Cookies != "" {
		color.White("  🍪 Cookies:     %s", truncateURL(cfg.Cookies, 30))
	}
	if cfg.AuthHeader != "" {
		color.White("  🔑 Auth:        %s", truncateURL(cfg.AuthHeader, 30))
	}
	if len(cfg.Headers) > 0 {
		color.White("  📝 Headers:     %d custom header(s)", len(cfg.Headers))
	}

	var checks []string
	if cfg.DiscoverForms {
		checks = append(checks, "forms")
	}
	if cfg.CheckFiltering {
		checks = append(checks, "filter")
	}
	if cfg.StoredXSS {
		checks = append(checks, fmt.Sprintf("stored (+%d pages)", len(cfg.StoredCheckURLs)))
	}
	if cfg.Verify {
		checks = append(checks, "browser")
	}
	if len(checks) > 0 {
		color.White("  🎯 Checks:      %s", strings.Join(checks, ", "))
	}

	color.Yellow("─────────────────────────────────────────────────")
}

// printFindings prints one line per finding, for --silent runs.
func printFindings(cmd *cobra.Command, vulns []config.Vulnerability) {
	out := cmd.OutOrStdout()
	for _, v := range vulns {
		fmt.Fprintf(out, "[%s] [%s] %s %s %s %s\n",
			getSeverityColor(v.Severity), v.Type, v.Context, v.Parameter, v.Method, v.URL)
	}
}

// printSummary prints the final scan summary
func printSummary(results *config.ScanResult, urlCount int) {
	color.Yellow("\n┌─────────────────────────────────────────────────┐")
	color.Yellow("│                 SCAN SUMMARY                    │")
	color.Yellow("└─────────────────────────────────────────────────┘")

	if urlCount > 1 {
		color.White("  📊 URLs Scanned:      %d", urlCount)
	}

	color.White("  🔌 Injection Points:  %d", results.InjectionPoints)
	color.White("  🎯 Payloads Tested:   %d", results.TestedPayloads)
	color.White("  ⏱️  Duration:          %s", results.ScanDuration)

	if results.WAFDetected != "" {
		color.Yellow("  🛡️  WAF Detected:      %s", results.WAFDetected)
	}

	if len(results.Vulnerabilities) > 0 {
		color.Red("  ⚠️  Vulnerabilities:   %d FOUND", len(results.Vulnerabilities))
		for _, v := range results.Vulnerabilities {
			fmt.Printf("      %s %-20s %s\n", getSeverityColor(v.Severity), v.Context, v.Parameter)
		}
	} else {
		color.Green("  ✅ Vulnerabilities:   0 (Clean)")
	}

	if results.ErrorCount > 0 {
		color.Yellow("  ❌ Errors:            %d", results.ErrorCount)
	}

	color.Yellow("─────────────────────────────────────────────────")
}

// mergeResults merges multiple scan results into one
func mergeResults(results []*config.ScanResult, targetURLs []string) *config.ScanResult {
	if len(results) == 0 {
		return &config.ScanResult{Vulnerabilities: make([]config.Vulnerability, 0)}
	}

	if len(results) == 1 {
		return results[0]
	}

	merged := &config.ScanResult{
		ScanID:          results[0].ScanID,
		TargetURL:       targetURLs[0],
		TargetURLs:      targetURLs,
		ScanStartTime:   results[0].ScanStartTime,
		ScanEndTime:     results[len(results)-1].ScanEndTime,
		Vulnerabilities: make([]config.Vulnerability, 0),
	}

	for _, result := range results {
		merged.InjectionPoints += result.InjectionPoints
		merged.TotalPayloads += result.TotalPayloads
		merged.TestedPayloads += result.TestedPayloads
		merged.ErrorCount += result.ErrorCount
		merged.Vulnerabilities = append(merged.Vulnerabilities, result.Vulnerabilities...)
		merged.Errors = append(merged.Errors, result.Errors...)

		if result.WAFDetected != "" && merged.WAFDetected == "" {
			merged.WAFDetected = result.WAFDetected
		}
		merged.WAFBypassed = merged.WAFBypassed || result.WAFBypassed
	}

	merged.ScanDuration = merged.ScanEndTime.Sub(merged.ScanStartTime).String()

	return merged
}

func getSeverityColor(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return color.New(color.FgRed, color.Bold).Sprint(severity)
	case "high":
		return color.RedString(severity)
	case "medium":
		return color.YellowString(severity)
	case "low":
		return color.CyanString(severity)
	default:
		return severity
	}
}

func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen] + "..."
}
