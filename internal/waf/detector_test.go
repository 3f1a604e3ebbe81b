package waf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers http.Header
		body    string
		want    string
	}{
		{name: "cloudflare header", status: 200, headers: http.Header{"Cf-Ray": {"8a1b2c"}}, want: "cloudflare"},
		{name: "cloudfront header", status: 200, headers: http.Header{"Via": {"1.1 abc.cloudfront.net (CloudFront)"}}, want: "cloudfront"},
		{name: "imperva header", status: 200, headers: http.Header{"X-Iinfo": {"Incapsula"}}, want: "imperva"},
		{name: "f5 cookie header", status: 200, headers: http.Header{"Set-Cookie": {"BIGipServerpool=123"}}, want: "f5"},
		{name: "wordfence body", status: 403, body: "Generated by Wordfence", want: "wordfence"},
		{name: "modsecurity body", status: 406, body: "This error was generated by Mod_Security.", want: "modsecurity"},
		{name: "header beats body", status: 200, headers: http.Header{"Server": {"Sucuri/Cloudproxy"}}, body: "akamai reference", want: "sucuri"},
		{name: "blocked without signature", status: 403, body: "Forbidden", want: Unknown},
		{name: "rate limited", status: 429, want: Unknown},
		{name: "clean", status: 200, headers: http.Header{"Server": {"nginx"}}, body: "<html></html>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identify(tt.status, tt.headers, tt.body); got != tt.want {
				t.Errorf("Identify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("xssctx_probe") != "" {
			w.Header().Set("Server", "cloudflare")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	got, err := NewDetector(srv.Client(), "xssctx-test").Detect(context.Background(), srv.URL+"/?q=1")
	require.NoError(t, err)
	assert.Equal(t, "cloudflare", got)
}

func TestDetectNoWAF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	got, err := NewDetector(nil, "").Detect(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestDetectInvalidURL(t *testing.T) {
	_, err := NewDetector(nil, "").Detect(context.Background(), "http://[::1")
	assert.Error(t, err)
}
