// Package report - Scan reports in JSON, HTML and Markdown
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Serdar715/xssctx/internal/config"
)

// Supported formats. "md" is accepted as an alias of markdown.
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Reporter generates scan reports in one format
type Reporter struct {
	format string
}

// New creates a reporter for format. Unknown formats are rejected.
func New(format string) (*Reporter, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "", FormatJSON:
		f = FormatJSON
	case "md", FormatMarkdown:
		f = FormatMarkdown
	case FormatHTML:
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	return &Reporter{format: f}, nil
}

// Format returns the normalized format name.
func (r *Reporter) Format() string {
	return r.format
}

// Write renders result to w.
func (r *Reporter) Write(w io.Writer, result *config.ScanResult) error {
	switch r.format {
	case FormatHTML:
		return writeHTML(w, result)
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(result))
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	}
}

// Save writes the report to path, replacing any existing file.
func (r *Reporter) Save(result *config.ScanResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.Write(file, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ContextCount is the number of findings in one context.
type ContextCount struct {
	Context string
	Count   int
}

// CountByContext groups findings by context name, most frequent first.
func CountByContext(vulns []config.Vulnerability) []ContextCount {
	counts := make(map[string]int)
	for _, v := range vulns {
		counts[v.Context]++
	}
	out := make([]ContextCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ContextCount{Context: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Context < out[j].Context
	})
	return out
}
