// Package ratelimit implements a per-IP sliding-window request limiter.
//
// Each client IP keeps a time-ordered history of request timestamps. A
// request is rejected when the trailing hour already holds the hourly cap or
// the trailing minute holds the per-minute cap. A background sweep evicts
// idle IP buckets to bound memory.
package ratelimit

import (
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

// Config contains rate limiter settings.
type Config struct {
	RequestsPerMinute int           // per-minute cap (default: 60)
	RequestsPerHour   int           // per-hour cap (default: 1000)
	SweepInterval     time.Duration // idle-bucket eviction interval (default: 5m)
}

// DefaultConfig returns the default limiter settings.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		RequestsPerHour:   1000,
		SweepInterval:     5 * time.Minute,
	}
}

// Limiter tracks request timestamps per client IP using a sliding window.
type Limiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	perMinute int
	perHour   int
	sweepStop chan struct{}
	sweepOnce sync.Once

	// now is swappable for tests.
	now func() time.Time
}

// NewLimiter creates a limiter and starts its background sweep.
func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.RequestsPerHour <= 0 {
		cfg.RequestsPerHour = 1000
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}

	l := &Limiter{
		requests:  make(map[string][]time.Time),
		perMinute: cfg.RequestsPerMinute,
		perHour:   cfg.RequestsPerHour,
		sweepStop: make(chan struct{}),
		now:       time.Now,
	}

	go l.sweepLoop(cfg.SweepInterval)

	return l
}

// Stop terminates the background sweep goroutine.
func (l *Limiter) Stop() {
	l.sweepOnce.Do(func() { close(l.sweepStop) })
}

// Allow records a request for the client and reports whether it is within
// both the per-minute and per-hour caps. Rejected requests are not recorded.
func (l *Limiter) Allow(clientIP string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	history := pruneBefore(l.requests[clientIP], now.Add(-hourWindow))

	if len(history) >= l.perHour {
		l.requests[clientIP] = history
		return false
	}

	minuteCutoff := now.Add(-minuteWindow)
	recent := 0
	for i := len(history) - 1; i >= 0 && history[i].After(minuteCutoff); i-- {
		recent++
	}
	if recent >= l.perMinute {
		l.requests[clientIP] = history
		return false
	}

	l.requests[clientIP] = append(history, now)
	return true
}

// sweepLoop periodically prunes stale timestamps and drops empty buckets.
func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.sweepStop:
			return
		}
	}
}

func (l *Limiter) sweep() {
	cutoff := l.now().Add(-hourWindow)

	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, history := range l.requests {
		pruned := pruneBefore(history, cutoff)
		if len(pruned) == 0 {
			delete(l.requests, ip)
			continue
		}
		l.requests[ip] = pruned
	}
}

// pruneBefore drops leading timestamps at or before the cutoff. The history
// is append-only and therefore already time-ordered.
func pruneBefore(history []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(history) && !history[i].After(cutoff) {
		i++
	}
	return history[i:]
}
