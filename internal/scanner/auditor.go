// Package scanner - Reflected and stored XSS audit driven by context analysis
package scanner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Serdar715/xssctx/internal/config"
	"github.com/Serdar715/xssctx/internal/payloads"
	"github.com/Serdar715/xssctx/internal/waf"
	"github.com/Serdar715/xssctx/internal/xsscontext"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// sentPayload is a payload written through a point, kept for the stored check.
type sentPayload struct {
	point   InjectionPoint
	payload string
}

// Auditor runs the XSS audit against one target.
type Auditor struct {
	cfg       *config.ScanConfig
	client    *http.Client
	requester *Requester
	engine    *xsscontext.Engine
	payloads  PayloadSource
	custom    []string
	detector  ReflectionDetector
	filter    FilterTester
	verifier  Verifier
	reporter  VulnReporter
	errs      *ErrorAggregator

	mu       sync.Mutex
	result   *config.ScanResult
	sent     []sentPayload
	reported map[string]bool
}

// AuditorOption customizes an Auditor.
type AuditorOption func(*Auditor)

// WithHTTPClient replaces the client built from the config.
func WithHTTPClient(c *http.Client) AuditorOption {
	return func(a *Auditor) { a.client = c }
}

// WithReporter replaces the console reporter.
func WithReporter(r VulnReporter) AuditorOption {
	return func(a *Auditor) { a.reporter = r }
}

// WithVerifier replaces the browser verifier. It is only used when
// cfg.Verify is set.
func WithVerifier(v Verifier) AuditorOption {
	return func(a *Auditor) { a.verifier = v }
}

// WithPayloadSource replaces the built-in payload generator.
func WithPayloadSource(s PayloadSource) AuditorOption {
	return func(a *Auditor) { a.payloads = s }
}

// NewAuditor creates an auditor for cfg.TargetURL.
func NewAuditor(cfg *config.ScanConfig, opts ...AuditorOption) (*Auditor, error) {
	a := &Auditor{
		cfg:      cfg,
		detector: NewReflectionDetector(),
		errs:     NewErrorAggregator(),
		reported: make(map[string]bool),
		engine: xsscontext.New(xsscontext.WithPolicy(xsscontext.Policy{
			ScriptTextExecutable: !cfg.ScriptTextNeedsBreak,
		})),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.client == nil {
		client, err := NewHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		a.client = client
	}
	a.requester = NewRequester(a.client, cfg)
	a.filter = NewFilterTester(a.requester)

	if a.payloads == nil {
		a.payloads = payloads.NewGenerator(cfg.SmartPayload)
	}
	if cfg.PayloadFile != "" {
		custom, err := payloads.NewGenerator(false).LoadFromFile(cfg.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load payloads: %w", err)
		}
		a.custom = custom
	}

	if a.reporter == nil {
		if cfg.Silent {
			a.reporter = NewSilentReporter()
		} else {
			a.reporter = NewConsoleReporter(cfg.Verbose)
		}
	}
	if cfg.Verify && a.verifier == nil {
		a.verifier = NewBrowserVerifier(cfg)
	}
	return a, nil
}

// Close releases the browser, if one was started.
func (a *Auditor) Close() error {
	if a.verifier == nil {
		return nil
	}
	return a.verifier.Close()
}

// Run audits every injection point of the target and returns the result.
// On cancellation the partial result is returned with ErrContextCanceled.
func (a *Auditor) Run(ctx context.Context) (*config.ScanResult, error) {
	a.result = &config.ScanResult{
		ScanID:          uuid.NewString(),
		TargetURL:       a.cfg.TargetURL,
		ScanStartTime:   time.Now(),
		Vulnerabilities: make([]config.Vulnerability, 0),
	}
	defer a.finish()

	points, err := a.injectionPoints(ctx)
	if err != nil {
		return a.result, err
	}
	a.result.InjectionPoints = len(points)
	a.logf(color.Cyan, "[*] %d injection points", len(points))

	a.result.WAFDetected = a.detectWAF(ctx)

	for _, p := range points {
		if ctx.Err() != nil {
			return a.result, fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())
		}
		a.logf(color.Cyan, "\n[*] Testing %s", p)
		a.auditPoint(ctx, p)
	}

	if a.cfg.StoredXSS {
		a.checkStored(ctx)
	}

	if ctx.Err() != nil {
		return a.result, fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())
	}
	return a.result, nil
}

func (a *Auditor) finish() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.result.ScanEndTime = time.Now()
	a.result.ScanDuration = a.result.ScanEndTime.Sub(a.result.ScanStartTime).String()
	a.result.ErrorCount = a.errs.Count()
	a.result.Errors = a.errs.Messages()

	verified := 0
	for _, v := range a.result.Vulnerabilities {
		if v.Verified {
			verified++
		}
		if v.WAFBypassed {
			a.result.WAFBypassed = true
		}
	}
	total := len(a.result.Vulnerabilities)
	a.reporter.ReportSummary(total, verified, total-verified)
}

// injectionPoints collects the target's own parameters and, when enabled,
// the fields of every form on the target page.
func (a *Auditor) injectionPoints(ctx context.Context) ([]InjectionPoint, error) {
	points, err := PointsFromURL(a.cfg.TargetURL, a.cfg.Method, a.cfg.Data)
	if err != nil {
		return nil, err
	}

	if a.cfg.DiscoverForms {
		forms, err := a.discoverForms(ctx)
		if err != nil {
			a.errs.Add(err)
			a.logf(color.Yellow, "[!] Form discovery failed: %v", err)
		}
		points = append(points, forms...)
	}

	points = uniquePoints(points)
	if len(points) == 0 {
		return nil, ErrNoParameters
	}
	return points, nil
}

func (a *Auditor) discoverForms(ctx context.Context) ([]InjectionPoint, error) {
	resp, err := a.requester.Get(ctx, a.cfg.TargetURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, NewScanError("parse HTML", resp.URL, err)
	}
	page, err := url.Parse(resp.URL)
	if err != nil {
		return nil, NewScanError("parse URL", resp.URL, err)
	}
	forms := DiscoverForms(doc, page)
	a.verbosef(color.Cyan, "[*] %d form fields discovered", len(forms))
	return forms, nil
}

func (a *Auditor) detectWAF(ctx context.Context) string {
	switch w := strings.ToLower(strings.TrimSpace(a.cfg.WAFType)); w {
	case "auto":
	case "", "none":
		return ""
	default:
		return w
	}
	a.logf(color.Yellow, "[*] Detecting WAF...")
	name, err := waf.NewDetector(a.client, DefaultUserAgent).Detect(ctx, a.cfg.TargetURL)
	switch {
	case err != nil:
		a.logf(color.Yellow, "[!] WAF detection failed: %v", err)
	case name != "":
		a.logf(color.Yellow, "[!] WAF Detected: %s", name)
	default:
		a.logf(color.Green, "[+] No WAF detected")
	}
	return name
}

// auditPoint runs echo check, context classification, filter test and
// payload testing for one point.
func (a *Auditor) auditPoint(ctx context.Context, p InjectionPoint) {
	marker := CanaryPrefix + randomAlnum(CanaryLength)
	resp, err := a.requester.Send(ctx, p, marker)
	if err != nil {
		a.errs.Add(err)
		return
	}

	echoed, format := a.detector.Detect(resp.Body, marker)
	echoed = echoed && format == ReflectionRaw
	if !echoed {
		a.verbosef(color.White, "  [-] %s is not echoed back (%s)", p.Name, format)
		// Payloads may still be stored and shown elsewhere.
		if !a.cfg.StoredXSS {
			return
		}
	}

	var names []string
	if echoed {
		names = contextNames(a.engine.Classify(resp.Body, marker))
		a.verbosef(color.Cyan, "  [*] %s reflected in %v", p.Name, names)
	}

	var filtered []string
	if echoed && a.cfg.CheckFiltering {
		filtered = a.filter.TestFiltering(ctx, p)
		if len(filtered) > 0 {
			a.verbosef(color.Yellow, "  [!] Filtered characters: %q", filtered)
		}
	}

	token := randomAlnum(ProbeLength)
	candidates := a.candidates(token, names, filtered)
	a.mu.Lock()
	a.result.TotalPayloads += len(candidates)
	a.mu.Unlock()

	a.testPayloads(ctx, p, candidates, payloads.SimpleProbe(token))
}

// candidates returns the payload list for a point: the breakout probes built
// from token first, then custom or generated payloads, minus those needing a
// filtered character.
func (a *Auditor) candidates(token string, names, filtered []string) []string {
	list := append([]string{payloads.SimpleProbe(token)}, payloads.Probes(token)...)
	if len(a.custom) > 0 {
		list = append(list, a.custom...)
	} else {
		list = append(list, a.payloads.ForContexts(names, a.result.WAFDetected)...)
	}

	out := list[:0]
	for _, p := range list {
		if payloads.Usable(p, filtered) {
			out = append(out, p)
		}
	}
	return out
}

// testPayloads sends candidates through a worker pool until one finding is
// recorded for the point. simple is the combined probe, reported on any raw
// reflection.
func (a *Auditor) testPayloads(ctx context.Context, p InjectionPoint, candidates []string, simple string) {
	threads := a.cfg.Threads
	if threads <= 0 {
		threads = DefaultThreads
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go a.worker(ctx, &wg, p, simple, jobs)
	}

	for _, payload := range candidates {
		if ctx.Err() != nil || a.hasFinding(p) {
			break
		}
		jobs <- payload
	}
	close(jobs)
	wg.Wait()
}

// worker processes payloads from the job channel
func (a *Auditor) worker(ctx context.Context, wg *sync.WaitGroup, p InjectionPoint, simple string, jobs <-chan string) {
	defer wg.Done()

	for payload := range jobs {
		if ctx.Err() != nil || a.hasFinding(p) {
			continue
		}

		resp, err := a.requester.Send(ctx, p, payload)
		a.mu.Lock()
		a.result.TestedPayloads++
		a.sent = append(a.sent, sentPayload{point: p, payload: payload})
		a.mu.Unlock()
		if err != nil {
			if !errors.Is(err, ErrContextCanceled) {
				a.errs.Add(err)
			}
			continue
		}

		vuln := a.analyze(VulnTypeReflected, p, payload, resp.Body)
		if vuln == nil && payload == simple {
			vuln = a.rawReflection(p, payload, resp.Body)
		}
		if vuln == nil || !a.claim(p.Key()) {
			continue
		}
		a.verify(ctx, p, vuln)
		a.record(vuln)
	}
}

// analyze returns a finding for the first exploitable occurrence of payload
// in body, or nil.
func (a *Auditor) analyze(kind string, p InjectionPoint, payload, body string) *config.Vulnerability {
	for _, m := range a.engine.Classify(body, payload) {
		if !a.engine.Exploitable(m, body, payload) {
			continue
		}
		return &config.Vulnerability{
			Type:        kind,
			Payload:     payload,
			URL:         p.WithValue(payload),
			Method:      p.Method,
			Parameter:   p.Name,
			Context:     m.Name(),
			Region:      m.Variant.Region().String(),
			Attribute:   m.Attribute,
			Occurrence:  m.Occurrence,
			Severity:    severity(a.engine.Executable(m, body), kind == VulnTypeStored),
			WAFBypassed: a.result.WAFDetected != "",
			Evidence:    evidence(body, payload, m.Offset),
		}
	}
	return nil
}

// rawReflection reports the combined probe coming back unencoded: every
// breakout character survived, whatever context it landed in. The context of
// the first match is recorded when there is one.
func (a *Auditor) rawReflection(p InjectionPoint, payload, body string) *config.Vulnerability {
	offset := strings.Index(body, payload)
	if offset < 0 {
		return nil
	}
	vuln := &config.Vulnerability{
		Type:        VulnTypeReflected,
		Payload:     payload,
		URL:         p.WithValue(payload),
		Method:      p.Method,
		Parameter:   p.Name,
		Severity:    severity(false, false),
		WAFBypassed: a.result.WAFDetected != "",
		Evidence:    evidence(body, payload, offset),
	}
	if matches := a.engine.Classify(body, payload); len(matches) > 0 {
		m := matches[0]
		vuln.Context = m.Name()
		vuln.Region = m.Variant.Region().String()
		vuln.Attribute = m.Attribute
		vuln.Occurrence = m.Occurrence
		vuln.Severity = severity(a.engine.Executable(m, body), false)
	}
	return vuln
}

func (a *Auditor) verify(ctx context.Context, p InjectionPoint, vuln *config.Vulnerability) {
	if a.verifier == nil || !a.cfg.Verify {
		return
	}
	res, err := a.verifier.Verify(ctx, p, vuln.Payload)
	if err != nil {
		a.errs.Add(NewPointError("browser verification", p, vuln.Payload, err))
		return
	}
	if res.Confirmed {
		vuln.Verified = true
		vuln.Severity = SeverityCritical
		vuln.Evidence = res.Message + " | " + vuln.Evidence
	}
}

// claim marks key as having a finding; false when it already had one.
func (a *Auditor) claim(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reported[key] {
		return false
	}
	a.reported[key] = true
	return true
}

func (a *Auditor) hasFinding(p InjectionPoint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reported[p.Key()]
}

func (a *Auditor) record(vuln *config.Vulnerability) {
	a.mu.Lock()
	a.result.Vulnerabilities = append(a.result.Vulnerabilities, *vuln)
	count := len(a.result.Vulnerabilities)
	a.mu.Unlock()

	a.reporter.Report(vuln, count)
}

// checkStored fetches the target and the extra read URLs again and looks for
// every payload sent during the audit.
func (a *Auditor) checkStored(ctx context.Context) {
	a.mu.Lock()
	sent := make([]sentPayload, len(a.sent))
	copy(sent, a.sent)
	a.mu.Unlock()
	if len(sent) == 0 {
		return
	}

	readURLs := append([]string{a.cfg.TargetURL}, a.cfg.StoredCheckURLs...)
	a.logf(color.Cyan, "\n[*] Checking %d pages for stored payloads", len(readURLs))

	for _, readURL := range readURLs {
		if ctx.Err() != nil {
			return
		}
		resp, err := a.requester.Get(ctx, readURL)
		if err != nil {
			a.errs.Add(err)
			continue
		}

		for _, s := range sent {
			key := "stored " + s.point.Key() + " " + readURL
			if !strings.Contains(resp.Body, s.payload) || a.hasKey(key) {
				continue
			}
			vuln := a.analyze(VulnTypeStored, s.point, s.payload, resp.Body)
			if vuln == nil || !a.claim(key) {
				continue
			}
			vuln.ReadURL = readURL
			a.record(vuln)
		}
	}
}

func (a *Auditor) hasKey(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reported[key]
}

// severity grades an unverified finding: executable sinks are High, other
// exploitable contexts Medium, and a stored finding is one level higher.
// Browser proof makes any finding Critical.
func severity(executable, stored bool) string {
	level := SeverityMedium
	if executable {
		level = SeverityHigh
	}
	if stored {
		if level == SeverityHigh {
			return SeverityCritical
		}
		return SeverityHigh
	}
	return level
}

// contextNames returns the distinct context names of matches in order.
func contextNames(matches []xsscontext.Match) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		if seen[m.Name()] {
			continue
		}
		seen[m.Name()] = true
		names = append(names, m.Name())
	}
	return names
}

func (a *Auditor) logf(c func(string, ...interface{}), format string, args ...interface{}) {
	if a.cfg.Silent {
		return
	}
	c(format, args...)
}

func (a *Auditor) verbosef(c func(string, ...interface{}), format string, args ...interface{}) {
	if !a.cfg.Verbose {
		return
	}
	a.logf(c, format, args...)
}

const alnum = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomAlnum returns n random lower-case alphanumerics, starting with a
// letter.
func randomAlnum(n int) string {
	b := make([]byte, n)
	for i := range b {
		set := alnum
		if i == 0 {
			set = alnum[:26]
		}
		b[i] = set[rand.Intn(len(set))]
	}
	return string(b)
}
