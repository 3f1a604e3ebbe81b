// Package scanner - Circuit breaker guarding browser verification
package scanner

import (
	"sync"
	"time"
)

// CircuitState is the state of a BrowserHealthChecker.
type CircuitState int

const (
	// CircuitClosed means the browser is healthy
	CircuitClosed CircuitState = iota
	// CircuitOpen means verification is skipped until the cooldown passes
	CircuitOpen
	// CircuitHalfOpen lets trial verifications through after the cooldown
	CircuitHalfOpen
)

// String returns a human-readable state name.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BrowserHealthConfig holds configuration for the health checker.
type BrowserHealthConfig struct {
	MaxFailures       int           // failures before the circuit opens
	Cooldown          time.Duration // open time before trial requests
	RecoveryThreshold int           // successes in half-open that close the circuit
}

// DefaultBrowserHealthConfig returns the defaults used by the verifier.
func DefaultBrowserHealthConfig() BrowserHealthConfig {
	return BrowserHealthConfig{
		MaxFailures:       3,
		Cooldown:          30 * time.Second,
		RecoveryThreshold: 2,
	}
}

// BrowserHealthChecker stops browser use after repeated failures and lets
// it recover after a cooldown.
type BrowserHealthChecker struct {
	mu            sync.Mutex
	cfg           BrowserHealthConfig
	failures      int
	consecutiveOK int
	lastFailure   time.Time
	now           func() time.Time
}

// NewBrowserHealthChecker creates a checker; zero config fields take defaults.
func NewBrowserHealthChecker(cfg BrowserHealthConfig) *BrowserHealthChecker {
	def := DefaultBrowserHealthConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.RecoveryThreshold <= 0 {
		cfg.RecoveryThreshold = def.RecoveryThreshold
	}
	return &BrowserHealthChecker{cfg: cfg, now: time.Now}
}

// State returns the current circuit state.
func (b *BrowserHealthChecker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *BrowserHealthChecker) stateLocked() CircuitState {
	if b.failures < b.cfg.MaxFailures {
		return CircuitClosed
	}
	if b.now().Sub(b.lastFailure) >= b.cfg.Cooldown {
		return CircuitHalfOpen
	}
	return CircuitOpen
}

// Allow reports whether a browser operation may run now.
func (b *BrowserHealthChecker) Allow() bool {
	return b.State() != CircuitOpen
}

// RecordFailure counts a failed browser operation.
func (b *BrowserHealthChecker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()
	b.consecutiveOK = 0
}

// RecordSuccess counts a successful operation; enough of them in a row
// close a tripped circuit.
func (b *BrowserHealthChecker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.cfg.MaxFailures {
		b.failures = 0
		return
	}
	b.consecutiveOK++
	if b.consecutiveOK >= b.cfg.RecoveryThreshold {
		b.failures = 0
		b.consecutiveOK = 0
	}
}

// FailureCount returns the current number of failures.
func (b *BrowserHealthChecker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
