package scanner

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const domProof = "DOM execution verified via window object"

// AlertVerificationStrategy verifies XSS by listening for JavaScript dialogs
// (alert/confirm/prompt) carrying a marker, falling back to a window flag.
type AlertVerificationStrategy struct {
	reCall        *regexp.Regexp
	reTemplate    *regexp.Regexp
	reArrayMethod *regexp.Regexp
	reScriptTag   *regexp.Regexp
	reHandler     *regexp.Regexp

	navigationDelay time.Duration
	browserWaitTime time.Duration
}

// NewAlertStrategy creates the dialog-based strategy with its wait times.
func NewAlertStrategy(navDelay, browserWait time.Duration) *AlertVerificationStrategy {
	return &AlertVerificationStrategy{
		reCall:          regexp.MustCompile(`(alert|confirm|prompt)\s*\([^)]*\)`),
		reTemplate:      regexp.MustCompile("(alert|confirm|prompt)\\s*`[^`]*`"),
		reArrayMethod:   regexp.MustCompile(`\[(\d+)\]\.(find|map|some|every|filter|findIndex)\((confirm|alert|prompt)\)`),
		reScriptTag:     regexp.MustCompile(`(?i)<script[^>]*>`),
		reHandler:       regexp.MustCompile(`(?i)\b(on[a-z]+\s*=\s*["']?)`),
		navigationDelay: navDelay,
		browserWaitTime: browserWait,
	}
}

func (s *AlertVerificationStrategy) Name() string {
	return "AlertVerifier"
}

// InjectMarker makes every dialog call in payload show marker and adds a
// window[marker]=true flag where the payload runs script.
func (s *AlertVerificationStrategy) InjectMarker(payload, marker string) string {
	safe := charCodes(marker)
	call := fmt.Sprintf("${1}(%s)", safe)

	out := s.reCall.ReplaceAllString(payload, call)
	out = s.reTemplate.ReplaceAllString(out, call)
	out = s.reArrayMethod.ReplaceAllString(out, fmt.Sprintf("[${1}].${2}(function(){${3}(%s)})", safe))

	flag := fmt.Sprintf("window[%s]=true;", safe)
	lower := strings.ToLower(out)
	switch {
	case s.reScriptTag.MatchString(out):
		out = s.reScriptTag.ReplaceAllStringFunc(out, func(tag string) string { return tag + flag })
	case strings.Contains(lower, "javascript:"):
		i := strings.Index(lower, "javascript:") + len("javascript:")
		out = out[:i] + flag + out[i:]
	case s.reHandler.MatchString(out):
		loc := s.reHandler.FindStringIndex(out)
		out = out[:loc[1]] + flag + out[loc[1]:]
	case !strings.Contains(out, "<") && strings.ContainsAny(out, ";("):
		// Bare script such as ';alert(1);// lands inside existing code.
		if i := strings.Index(out, ";"); i >= 0 {
			out = out[:i+1] + flag + out[i+1:]
		} else {
			out = flag + out
		}
	}
	return out
}

// Verify sets up the dialog listener, loads urlStr and checks for marker in a
// dialog or the window flag.
func (s *AlertVerificationStrategy) Verify(ctx context.Context, page *rod.Page, urlStr, marker string) (VerificationResult, error) {
	var result VerificationResult

	if err := (proto.PageEnable{}).Call(page); err != nil {
		return result, fmt.Errorf("failed to enable page events: %w", err)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	listenerCtx, cancelListener := context.WithTimeout(ctx, s.navigationDelay+s.browserWaitTime+30*time.Second)
	defer cancelListener()

	wait := page.Context(listenerCtx).EachEvent(func(e *proto.PageJavascriptDialogOpening) bool {
		mu.Lock()
		if strings.Contains(e.Message, marker) {
			result.Confirmed = true
			result.Message = e.Message
			result.Channel = "dialog"
		}
		mu.Unlock()

		// Dismiss so the page keeps running.
		_ = proto.PageHandleJavaScriptDialog{Accept: true}.Call(page)
		return false
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		wait()
	}()

	time.Sleep(s.navigationDelay)

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	// A partial load can still have run the payload.
	_ = page.Context(navCtx).Navigate(urlStr)

	select {
	case <-ctx.Done():
	case <-time.After(s.browserWaitTime):
	}

	cancelListener()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if result.Confirmed {
		return result, nil
	}

	res, err := page.Context(ctx).Eval(fmt.Sprintf("() => window[%s] === true", strconv.Quote(marker)))
	if err == nil && res != nil && res.Value.Bool() {
		result.Confirmed = true
		result.Message = domProof
		result.Channel = "dom"
	}
	return result, ctx.Err()
}

// charCodes renders input as String.fromCharCode(...) so the marker survives
// any quoting around the payload.
func charCodes(input string) string {
	codes := make([]string, 0, len(input))
	for _, c := range input {
		codes = append(codes, strconv.Itoa(int(c)))
	}
	return fmt.Sprintf("String.fromCharCode(%s)", strings.Join(codes, ","))
}
