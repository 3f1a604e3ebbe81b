package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Serdar715/xssctx/internal/config"
)

func markdown(result *config.ScanResult) string {
	var b strings.Builder

	b.WriteString("# xssctx Scan Report\n\n")
	fmt.Fprintf(&b, "**Target:** %s\n", result.TargetURL)
	fmt.Fprintf(&b, "**Scan ID:** %s\n", result.ScanID)
	fmt.Fprintf(&b, "**Date:** %s\n", result.ScanStartTime.Format(time.RFC1123))
	fmt.Fprintf(&b, "**Duration:** %s\n", result.ScanDuration)
	fmt.Fprintf(&b, "**Injection Points:** %d\n", result.InjectionPoints)
	fmt.Fprintf(&b, "**Payloads Tested:** %d/%d\n", result.TestedPayloads, result.TotalPayloads)
	waf := result.WAFDetected
	if waf == "" {
		waf = "none"
	}
	fmt.Fprintf(&b, "**WAF Detected:** %s\n\n", waf)

	b.WriteString("## Findings\n\n")
	if len(result.Vulnerabilities) == 0 {
		b.WriteString("_No exploitable reflections found._\n")
	} else {
		b.WriteString("| Context | Findings |\n|---|---|\n")
		for _, c := range CountByContext(result.Vulnerabilities) {
			fmt.Fprintf(&b, "| `%s` | %d |\n", c.Context, c.Count)
		}
		b.WriteString("\n")

		for i, v := range result.Vulnerabilities {
			fmt.Fprintf(&b, "### %d. %s XSS in `%s` (%s)\n", i+1, v.Type, v.Parameter, v.Severity)
			fmt.Fprintf(&b, "- **Request:** %s `%s`\n", v.Method, v.URL)
			if v.ReadURL != "" {
				fmt.Fprintf(&b, "- **Shown at:** `%s`\n", v.ReadURL)
			}
			fmt.Fprintf(&b, "- **Context:** `%s` (%s)\n", v.Context, v.Region)
			if v.Attribute != "" {
				fmt.Fprintf(&b, "- **Attribute:** `%s`\n", v.Attribute)
			}
			fmt.Fprintf(&b, "- **Verified:** %v\n", v.Verified)
			fmt.Fprintf(&b, "- **Payload:**\n```\n%s\n```\n", v.Payload)
			if v.Evidence != "" {
				fmt.Fprintf(&b, "- **Evidence:**\n```html\n%s\n```\n", v.Evidence)
			}
			b.WriteString("\n")
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "## Errors (%d)\n\n", result.ErrorCount)
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}
