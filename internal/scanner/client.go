// Package scanner - HTTP transport for the audit
package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Serdar715/xssctx/internal/config"
)

// Response is the part of an HTTP response the audit looks at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
	URL        string
}

// Requester sends requests with the configured headers, cookies and delay.
type Requester struct {
	client  HTTPClient
	headers map[string]string
	cookies string
	auth    string
	delay   time.Duration
}

// NewHTTPClient builds the client used by every audit component.
func NewHTTPClient(cfg *config.ScanConfig) (*http.Client, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	timeout := DefaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// NewRequester wraps client with the request decoration from cfg.
func NewRequester(client HTTPClient, cfg *config.ScanConfig) *Requester {
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Requester{
		client:  client,
		headers: headers,
		cookies: cfg.Cookies,
		auth:    cfg.AuthHeader,
		delay:   time.Duration(cfg.Delay) * time.Millisecond,
	}
}

// Send puts value into the point's parameter and returns the response.
func (r *Requester) Send(ctx context.Context, p InjectionPoint, value string) (*Response, error) {
	req, err := p.NewRequest(ctx, value)
	if err != nil {
		return nil, NewPointError("build request", p, value, err)
	}
	resp, err := r.Do(req)
	if err != nil {
		return nil, NewPointError("send payload", p, value, err)
	}
	return resp, nil
}

// Get fetches target without mutation.
func (r *Requester) Get(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewScanError("build request", target, err)
	}
	resp, err := r.Do(req)
	if err != nil {
		return nil, NewScanError("fetch", target, err)
	}
	return resp, nil
}

// Do decorates and sends req, reading at most MaxResponseBodyBytes of body.
func (r *Requester) Do(req *http.Request) (*Response, error) {
	if r.delay > 0 {
		select {
		case <-req.Context().Done():
			return nil, ErrContextCanceled
		case <-time.After(r.delay):
		}
	}

	r.setHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrContextCanceled
		}
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if len(body) > MaxResponseBodyBytes {
		return nil, ErrResponseTooLarge
	}

	final := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
		URL:        final,
	}, nil
}

// setHeaders sets request headers
func (r *Requester) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	if r.cookies != "" {
		req.Header.Set("Cookie", r.cookies)
	}
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}
	for key, value := range r.headers {
		req.Header.Set(key, value)
	}
}
