// Package scanner - Headless browser verification of findings
package scanner

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/Serdar715/xssctx/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserVerifier confirms GET findings by loading them in Chrome.
type BrowserVerifier struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launch   func() (*rod.Browser, error)
	strategy VerificationStrategy
	health   *BrowserHealthChecker
}

// NewBrowserVerifier prepares a verifier; the browser starts on first use.
func NewBrowserVerifier(cfg *config.ScanConfig) *BrowserVerifier {
	navDelay := DefaultNavigationDelay
	if cfg.NavigationDelay > 0 {
		navDelay = time.Duration(cfg.NavigationDelay) * time.Millisecond
	}
	wait := DefaultBrowserWaitTime
	if cfg.BrowserWaitTime > 0 {
		wait = time.Duration(cfg.BrowserWaitTime) * time.Millisecond
	}

	visible, proxy := cfg.VisibleMode, cfg.ProxyURL
	return &BrowserVerifier{
		launch:   func() (*rod.Browser, error) { return launchBrowser(visible, proxy) },
		strategy: NewAlertStrategy(navDelay, wait),
		health:   NewBrowserHealthChecker(DefaultBrowserHealthConfig()),
	}
}

func launchBrowser(visible bool, proxy string) (*rod.Browser, error) {
	path, found := launcher.LookPath()
	if !found {
		return nil, fmt.Errorf("%w: no Chrome/Chromium found", ErrBrowserUnavailable)
	}

	l := launcher.New().Bin(path).Headless(!visible).NoSandbox(true)
	if proxy != "" {
		if u, err := url.Parse(proxy); err == nil {
			l = l.Proxy(u.Host)
		}
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	if err := browser.IgnoreCertErrors(true); err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	return browser, nil
}

// Verify loads the point with a marked copy of payload. Only GET points can
// be loaded directly; other points return false without error.
func (v *BrowserVerifier) Verify(ctx context.Context, p InjectionPoint, payload string) (VerificationResult, error) {
	if p.Method != "GET" {
		return VerificationResult{}, nil
	}
	if !v.health.Allow() {
		return VerificationResult{}, fmt.Errorf("%w: circuit open after %d failures", ErrBrowserUnavailable, v.health.FailureCount())
	}

	browser, err := v.connect()
	if err != nil {
		v.health.RecordFailure()
		return VerificationResult{}, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		v.health.RecordFailure()
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	defer page.Close()

	marker := CanaryPrefix + randomAlnum(CanaryLength)
	target := p.WithValue(v.strategy.InjectMarker(payload, marker))

	result, err := v.strategy.Verify(ctx, page, target, marker)
	if err != nil {
		v.health.RecordFailure()
		return result, err
	}
	v.health.RecordSuccess()
	return result, nil
}

func (v *BrowserVerifier) connect() (*rod.Browser, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.browser != nil {
		return v.browser, nil
	}
	b, err := v.launch()
	if err != nil {
		return nil, err
	}
	v.browser = b
	return b, nil
}

// Close shuts the browser down if it was started.
func (v *BrowserVerifier) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.browser == nil {
		return nil
	}
	err := v.browser.Close()
	v.browser = nil
	return err
}
