package waf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Unknown is reported for a blocking response without a known signature.
const Unknown = "unknown"

// probe is appended to the target to provoke a block.
const probe = "<script>alert(1)</script>"

// signature matches one WAF by header text or body text, both lower-cased.
type signature struct {
	name    string
	headers []string
	body    []string
}

// Checked in order; the first hit wins.
var signatures = []signature{
	{name: "cloudflare", headers: []string{"cloudflare", "cf-ray"}, body: []string{"cloudflare"}},
	{name: "akamai", headers: []string{"akamai"}, body: []string{"akamai"}},
	{name: "cloudfront", headers: []string{"cloudfront", "x-amz"}},
	{name: "imperva", headers: []string{"incapsula", "imperva"}, body: []string{"incapsula", "imperva"}},
	{name: "sucuri", headers: []string{"sucuri"}, body: []string{"sucuri"}},
	{name: "f5", headers: []string{"bigip", "x-wa-info"}},
	{name: "barracuda", headers: []string{"barracuda"}},
	{name: "wordfence", body: []string{"wordfence"}},
	{name: "modsecurity", body: []string{"modsecurity", "mod_security"}},
}

// Identify fingerprints a WAF from one response. Headers are checked for
// every signature before the body. Returns "" when nothing points to a WAF.
func Identify(status int, headers http.Header, body string) string {
	for _, sig := range signatures {
		for name, values := range headers {
			line := strings.ToLower(name + ": " + strings.Join(values, ", "))
			if containsAny(line, sig.headers) {
				return sig.name
			}
		}
	}

	lower := strings.ToLower(body)
	for _, sig := range signatures {
		if containsAny(lower, sig.body) {
			return sig.name
		}
	}

	switch status {
	case http.StatusForbidden, http.StatusNotAcceptable, http.StatusTooManyRequests:
		return Unknown
	}
	return ""
}

// Detector handles WAF detection
type Detector struct {
	client    *http.Client
	userAgent string
}

// NewDetector creates a WAF detector. A nil client gets a 10s default.
func NewDetector(client *http.Client, userAgent string) *Detector {
	if client == nil {
		client = &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Detector{client: client, userAgent: userAgent}
}

// Detect sends the target one noisy request and identifies the WAF from the
// response. When the noisy request fails outright it retries the plain URL.
func (d *Detector) Detect(ctx context.Context, targetURL string) (string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	q := u.Query()
	q.Set("xssctx_probe", probe)
	u.RawQuery = q.Encode()

	resp, err := d.get(ctx, u.String())
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		resp, err = d.get(ctx, targetURL)
		if err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return Identify(resp.StatusCode, resp.Header, string(body)), nil
}

func (d *Detector) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	return d.client.Do(req)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
