package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Serdar715/xssctx/internal/config"
	"github.com/Serdar715/xssctx/internal/scanner"
	"github.com/Serdar715/xssctx/internal/xsscontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestContextsCommand(t *testing.T) {
	out, err := run(t, "", "contexts")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), len(xsscontext.Catalog()))
	for i, v := range xsscontext.Catalog() {
		assert.True(t, strings.HasPrefix(lines[i+1], v.Name()+" "), "line %d: %q", i+1, lines[i+1])
	}
	assert.Contains(t, out, "ATTR_DOUBLE_QUOTE")
	assert.Contains(t, out, "double")
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "Attribute breakout",
			args: []string{"check", "-c", "ATTR_DOUBLE_QUOTE", "-p", `"><svg onload=alert(1)>`},
			want: []string{"can_break:   true", "exploitable: true"},
		},
		{
			name: "Attribute without quote",
			args: []string{"check", "-c", "ATTR_DOUBLE_QUOTE", "-p", "alert(1)"},
			want: []string{"can_break:   false", "need_break:  true", "exploitable: false"},
		},
		{
			name: "Script text runs by default",
			args: []string{"check", "-c", "SCRIPT_TEXT", "-p", "alert(1)"},
			want: []string{"need_break:  false", "exploitable: true"},
		},
		{
			name: "Script text needs break when asked",
			args: []string{"check", "-c", "SCRIPT_TEXT", "-p", "alert(1)", "--script-text-needs-break"},
			want: []string{"need_break:  true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCheckCommandJSON(t *testing.T) {
	out, err := run(t, "", "check", "-c", "HTML_TEXT", "-p", "<svg>", "--json")
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "HTML_TEXT", res["context"])
	assert.Equal(t, true, res["exploitable"])
}

func TestCheckUnknownContext(t *testing.T) {
	_, err := run(t, "", "check", "-c", "NOPE", "-p", "x")
	assert.True(t, errors.Is(err, xsscontext.ErrUnknownContext), "got %v", err)
}

func TestClassifyCommand(t *testing.T) {
	doc := `<html><body><input value="XSS1"><script>var a = 'XSS1';</script></body></html>`

	out, err := run(t, doc, "classify", "-m", "XSS1", "--json")
	require.NoError(t, err)

	var got []matchView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, xsscontext.AttrDoubleQuote, got[0].Context)
	assert.Equal(t, "value", got[0].Attribute)
	assert.Equal(t, xsscontext.ScriptSingleQuote, got[1].Context)
	assert.Equal(t, 1, got[1].Occurrence)
	assert.Equal(t, "script", got[1].Region)
}

func TestClassifyCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>M</p>"), 0o644))

	out, err := run(t, "", "classify", path, "-m", "M")
	require.NoError(t, err)
	assert.Contains(t, out, "OCCURRENCE")
	assert.Contains(t, out, xsscontext.HTMLText)

	out, err = run(t, "", "classify", path, "-m", "absent")
	require.NoError(t, err)
	assert.Contains(t, out, `marker "absent" not found`)
}

func TestClassifyErrors(t *testing.T) {
	_, err := run(t, "<p>x</p>", "classify")
	assert.Error(t, err, "marker is required")

	_, err = run(t, "", "classify", filepath.Join(t.TempDir(), "missing.html"), "-m", "x")
	assert.Error(t, err)
}

func TestScanCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><input value="%s"></html>`, r.URL.Query().Get("q"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.json")
	listPath := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("# targets\n"+srv.URL+"/b?q=2\n"), 0o644))

	out, err := run(t, "", "scan", srv.URL+"/a?q=1", "-l", listPath,
		"--silent", "--waf", "none", "--no-stored", "-t", "1", "-o", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ATTR_DOUBLE_QUOTE q GET "+srv.URL+"/a?")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var result config.ScanResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Vulnerabilities, 2)
	assert.Equal(t, []string{srv.URL + "/a?q=1", srv.URL + "/b?q=2"}, result.TargetURLs)
	assert.Equal(t, 2, result.InjectionPoints)
}

func TestScanCommandValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "No target", args: []string{"scan"}},
		{name: "Bad WAF", args: []string{"scan", "http://x/?q=1", "--waf", "nope"}},
		{name: "Bad proxy", args: []string{"scan", "http://x/?q=1", "--proxy", "127.0.0.1:8080"}},
		{name: "Bad header", args: []string{"scan", "http://x/?q=1", "-H", "NoColon"}},
		{name: "Missing payload file", args: []string{"scan", "http://x/?q=1", "-p", "/nonexistent/payloads.txt"}},
		{name: "Invalid URL", args: []string{"scan", "ftp://x/?q=1", "--silent"}},
		{name: "Not a URL", args: []string{"scan", "not a url", "--silent"}},
		{name: "No host", args: []string{"scan", "http:///?q=1", "--silent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestScanCommandInvalidTargets(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("ftp://x/?q=1\nnot a url\n"), 0o644))

	_, err := run(t, "", "scan", "-l", list, "--silent", "--no-stored")
	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrInvalidURL)
	assert.Contains(t, err.Error(), "no target could be audited")
}

func TestApplyOptions(t *testing.T) {
	dir := t.TempDir()
	headersFile := filepath.Join(dir, "headers.txt")
	cookieFile := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(headersFile, []byte("X-From-File: 1\nX-Both: file\n"), 0o644))
	require.NoError(t, os.WriteFile(cookieFile, []byte("b=2\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Method = "post"
	cfg.Cookies = "a=1"
	cfg.HeadersFile = headersFile
	opts := &scanOptions{
		noSmart:    true,
		noStored:   true,
		headers:    []string{"X-Both: flag"},
		cookieFile: cookieFile,
	}

	require.NoError(t, applyOptions(cfg, opts))
	assert.Equal(t, "POST", cfg.Method)
	assert.False(t, cfg.SmartPayload)
	assert.False(t, cfg.StoredXSS)
	assert.Equal(t, "a=1; b=2", cfg.Cookies)
	assert.Equal(t, map[string]string{"X-From-File": "1", "X-Both": "flag"}, cfg.Headers)
}

func TestMergeResults(t *testing.T) {
	a := &config.ScanResult{ScanID: "a", TestedPayloads: 3, Vulnerabilities: []config.Vulnerability{{Parameter: "x"}}}
	b := &config.ScanResult{ScanID: "b", TestedPayloads: 4, WAFDetected: "cloudflare", ErrorCount: 1, Errors: []string{"boom"}}

	assert.Same(t, a, mergeResults([]*config.ScanResult{a}, []string{"u1"}))

	merged := mergeResults([]*config.ScanResult{a, b}, []string{"u1", "u2"})
	assert.Equal(t, 7, merged.TestedPayloads)
	assert.Equal(t, "cloudflare", merged.WAFDetected)
	assert.Equal(t, 1, merged.ErrorCount)
	assert.Len(t, merged.Vulnerabilities, 1)
	assert.Equal(t, "u1", merged.TargetURL)

	assert.NotNil(t, mergeResults(nil, nil).Vulnerabilities)
}

func TestValidateWAF(t *testing.T) {
	for _, w := range []string{"auto", "none", "Cloudflare", "incapsula", "aws-waf", "f5"} {
		assert.NoError(t, validateWAF(w), w)
	}
	assert.Error(t, validateWAF("fortinet"))
}
