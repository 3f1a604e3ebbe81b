package scanner

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Serdar715/xssctx/internal/config"
	"github.com/Serdar715/xssctx/internal/xsscontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []string

func (s staticSource) ForContexts(names []string, wafType string) []string {
	return s
}

type fakeVerifier struct {
	confirm bool
	calls   int
	closed  bool
}

func (f *fakeVerifier) Verify(ctx context.Context, p InjectionPoint, payload string) (VerificationResult, error) {
	f.calls++
	return VerificationResult{Confirmed: f.confirm, Message: "dialog opened", Channel: "dialog"}, nil
}

func (f *fakeVerifier) Close() error {
	f.closed = true
	return nil
}

func testConfig(target string) *config.ScanConfig {
	cfg := config.DefaultConfig()
	cfg.TargetURL = target
	cfg.WAFType = "none"
	cfg.StoredXSS = false
	cfg.SmartPayload = false
	cfg.Silent = true
	cfg.Threads = 1
	return cfg
}

func runAudit(t *testing.T, cfg *config.ScanConfig, opts ...AuditorOption) *config.ScanResult {
	t.Helper()
	opts = append([]AuditorOption{WithReporter(NewSilentReporter())}, opts...)
	a, err := NewAuditor(cfg, opts...)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	return result
}

func reflectingServer(tmpl string, transform func(string) string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, tmpl, transform(r.URL.Query().Get("q")))
	}))
}

func raw(s string) string { return s }

func TestAuditReflected(t *testing.T) {
	tests := []struct {
		name        string
		tmpl        string
		transform   func(string) string
		wantContext string
		wantAttr    string
		wantSev     string
	}{
		{
			name:        "Double quoted attribute",
			tmpl:        `<html><body><input value="%s"></body></html>`,
			transform:   raw,
			wantContext: xsscontext.AttrDoubleQuote,
			wantAttr:    "value",
			wantSev:     SeverityMedium,
		},
		{
			name:        "Script string",
			tmpl:        `<html><script>var s = '%s';</script></html>`,
			transform:   raw,
			wantContext: xsscontext.ScriptSingleQuote,
			wantSev:     SeverityMedium,
		},
		{
			name:        "Event handler",
			tmpl:        `<html><body><a onclick="go('%s')">x</a></body></html>`,
			transform:   raw,
			wantContext: xsscontext.AttrDoubleQuote,
			wantAttr:    "onclick",
			wantSev:     SeverityHigh,
		},
		{
			name:        "HTML text",
			tmpl:        `<html><body><p>%s</p></body></html>`,
			transform:   raw,
			wantContext: xsscontext.HTMLText,
			wantSev:     SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := reflectingServer(tt.tmpl, tt.transform)
			defer srv.Close()

			result := runAudit(t, testConfig(srv.URL+"/?q=test"))

			require.Len(t, result.Vulnerabilities, 1)
			v := result.Vulnerabilities[0]
			assert.Equal(t, VulnTypeReflected, v.Type)
			assert.Equal(t, "q", v.Parameter)
			assert.Equal(t, tt.wantContext, v.Context)
			assert.Equal(t, tt.wantAttr, v.Attribute)
			assert.Equal(t, tt.wantSev, v.Severity)
			assert.Contains(t, v.Evidence, v.Payload)
			assert.True(t, strings.HasPrefix(v.URL, srv.URL+"/?"), v.URL)
			assert.Equal(t, 1, result.InjectionPoints)
			assert.NotEmpty(t, result.ScanID)
		})
	}
}

func TestAuditReportsRawSimpleProbe(t *testing.T) {
	tests := []struct {
		name        string
		tmpl        string
		wantContext string
	}{
		{
			name:        "Attribute name",
			tmpl:        `<html><body><input %s></body></html>`,
			wantContext: xsscontext.AttrName,
		},
		{
			name:        "Script line comment",
			tmpl:        "<html><script>// %s\n</script></html>",
			wantContext: xsscontext.ScriptLineComment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := reflectingServer(tt.tmpl, raw)
			defer srv.Close()

			result := runAudit(t, testConfig(srv.URL+"/?q=test"), WithPayloadSource(staticSource{}))

			require.Len(t, result.Vulnerabilities, 1)
			v := result.Vulnerabilities[0]
			assert.Equal(t, tt.wantContext, v.Context)
			assert.Equal(t, SeverityMedium, v.Severity)
			assert.Contains(t, v.Payload, "</->")
			assert.Contains(t, v.Evidence, v.Payload)
		})
	}
}

func TestAuditEscapedOutputIsClean(t *testing.T) {
	srv := reflectingServer(`<html><body><p>%s</p></body></html>`, html.EscapeString)
	defer srv.Close()

	result := runAudit(t, testConfig(srv.URL+"/?q=test"))

	assert.Empty(t, result.Vulnerabilities)
	assert.Greater(t, result.TestedPayloads, 0)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestAuditSkipsPointsThatAreNotEchoed(t *testing.T) {
	srv := reflectingServer(`<html>%s</html>`, func(string) string { return "static" })
	defer srv.Close()

	result := runAudit(t, testConfig(srv.URL+"/?q=test"))

	assert.Empty(t, result.Vulnerabilities)
	assert.Equal(t, 0, result.TestedPayloads)
}

func TestAuditDiscoversForms(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form action="/search"><input name="q"><input type="submit" name="go"></form>`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<input value="%s">`, r.URL.Query().Get("q"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL + "/")
	cfg.DiscoverForms = true
	result := runAudit(t, cfg)

	require.Len(t, result.Vulnerabilities, 1)
	assert.True(t, strings.HasPrefix(result.Vulnerabilities[0].URL, srv.URL+"/search?"))
	assert.Equal(t, 1, result.InjectionPoints)
}

func TestAuditStored(t *testing.T) {
	var mu sync.Mutex
	var comments []string

	mux := http.NewServeMux()
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		if c := r.FormValue("comment"); r.Method == http.MethodPost && c != "" {
			mu.Lock()
			comments = append(comments, c)
			mu.Unlock()
		}
		fmt.Fprint(w, "saved")
	})
	mux.HandleFunc("/view", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(w, "<html><body>")
		for _, c := range comments {
			fmt.Fprintf(w, "<div>%s</div>", c)
		}
		fmt.Fprint(w, "</body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL + "/post")
	cfg.Method = "POST"
	cfg.Data = "comment=hello"
	cfg.StoredXSS = true
	cfg.StoredCheckURLs = []string{srv.URL + "/view"}

	result := runAudit(t, cfg, WithPayloadSource(staticSource{"<b>x</b>"}))

	require.Len(t, result.Vulnerabilities, 1)
	v := result.Vulnerabilities[0]
	assert.Equal(t, VulnTypeStored, v.Type)
	assert.Equal(t, "POST", v.Method)
	assert.Equal(t, srv.URL+"/view", v.ReadURL)
	assert.Equal(t, xsscontext.HTMLText, v.Context)
	assert.Equal(t, SeverityHigh, v.Severity)
	assert.Equal(t, 6, result.TestedPayloads)
}

func TestAuditVerification(t *testing.T) {
	srv := reflectingServer(`<p>%s</p>`, raw)
	defer srv.Close()

	cfg := testConfig(srv.URL + "/?q=1")
	cfg.Verify = true
	verifier := &fakeVerifier{confirm: true}

	a, err := NewAuditor(cfg, WithReporter(NewSilentReporter()), WithVerifier(verifier))
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.Close())

	require.Len(t, result.Vulnerabilities, 1)
	v := result.Vulnerabilities[0]
	assert.True(t, v.Verified)
	assert.Equal(t, SeverityCritical, v.Severity)
	assert.True(t, strings.HasPrefix(v.Evidence, "dialog opened | "))
	assert.Equal(t, 1, verifier.calls)
	assert.True(t, verifier.closed)
}

func TestAuditCustomPayloadsReplaceGenerated(t *testing.T) {
	srv := reflectingServer(`<p>%s</p>`, html.EscapeString)
	defer srv.Close()

	cfg := testConfig(srv.URL + "/?q=1")
	a, err := NewAuditor(cfg, WithReporter(NewSilentReporter()))
	require.NoError(t, err)
	a.custom = []string{"<i>1</i>", "plain"}
	a.result = &config.ScanResult{}

	got := a.candidates("abcd", nil, []string{"<"})
	assert.Len(t, got, 4, "probes plus plain, without payloads needing '<'")
	assert.Equal(t, "plain", got[len(got)-1])
}

func TestAuditErrors(t *testing.T) {
	srv := reflectingServer(`%s`, raw)
	defer srv.Close()

	t.Run("No parameters", func(t *testing.T) {
		a, err := NewAuditor(testConfig(srv.URL+"/"), WithReporter(NewSilentReporter()))
		require.NoError(t, err)
		_, err = a.Run(context.Background())
		assert.True(t, errors.Is(err, ErrNoParameters), "got %v", err)
	})

	t.Run("Invalid URL", func(t *testing.T) {
		a, err := NewAuditor(testConfig("not a url"), WithReporter(NewSilentReporter()))
		require.NoError(t, err)
		_, err = a.Run(context.Background())
		assert.True(t, errors.Is(err, ErrInvalidURL), "got %v", err)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a, err := NewAuditor(testConfig(srv.URL+"/?q=1"), WithReporter(NewSilentReporter()))
		require.NoError(t, err)
		result, err := a.Run(ctx)
		assert.True(t, errors.Is(err, ErrContextCanceled), "got %v", err)
		require.NotNil(t, result)
		assert.Empty(t, result.Vulnerabilities)
	})
}

func TestFilterTester(t *testing.T) {
	strip := strings.NewReplacer("<", "", ">", "")
	srv := reflectingServer(`<p>%s</p>`, strip.Replace)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	tester := NewFilterTester(NewRequester(srv.Client(), cfg))
	p := InjectionPoint{Method: "GET", URL: srv.URL, Name: "q", Params: url.Values{"q": {""}}}

	assert.Equal(t, []string{"<", ">"}, tester.TestFiltering(context.Background(), p))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityMedium, severity(false, false))
	assert.Equal(t, SeverityHigh, severity(true, false))
	assert.Equal(t, SeverityHigh, severity(false, true))
	assert.Equal(t, SeverityCritical, severity(true, true))
}

func TestRandomAlnum(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := randomAlnum(CanaryLength)
		require.Len(t, s, CanaryLength)
		assert.True(t, s[0] >= 'a' && s[0] <= 'z', s)
	}
}
