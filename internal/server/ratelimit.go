package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter tracks per-client request counts over sliding windows.
// Lookups are cheap but scans can fan out dozens of OCR calls, so the
// limits apply per request regardless of document size.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int

	clients map[string]*clientUsage
}

// clientUsage tracks request counts for one client.
type clientUsage struct {
	minuteCount int
	hourCount   int
	dayCount    int

	minuteStart time.Time
	hourStart   time.Time
	dayStart    time.Time
}

// NewRateLimiter creates a rate limiter with the given limits. A limit of
// zero disables that window.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		clients:           make(map[string]*clientUsage),
	}
}

// Check records one request for the client and reports whether any window
// limit is exceeded.
func (rl *RateLimiter) Check(clientID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &clientUsage{minuteStart: now, hourStart: now, dayStart: now}
		rl.clients[clientID] = usage
	}

	rl.rollWindows(usage, now)

	if rl.requestsPerMinute > 0 && usage.minuteCount >= rl.requestsPerMinute {
		return &RateLimitError{
			Window:     "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: time.Minute - now.Sub(usage.minuteStart),
		}
	}
	if rl.requestsPerHour > 0 && usage.hourCount >= rl.requestsPerHour {
		return &RateLimitError{
			Window:     "hour",
			Limit:      rl.requestsPerHour,
			RetryAfter: time.Hour - now.Sub(usage.hourStart),
		}
	}
	if rl.maxRequestsPerDay > 0 && usage.dayCount >= rl.maxRequestsPerDay {
		return &RateLimitError{
			Window:     "day",
			Limit:      rl.maxRequestsPerDay,
			RetryAfter: 24*time.Hour - now.Sub(usage.dayStart),
		}
	}

	usage.minuteCount++
	usage.hourCount++
	usage.dayCount++
	return nil
}

// rollWindows resets counters whose window has elapsed.
func (rl *RateLimiter) rollWindows(usage *clientUsage, now time.Time) {
	if now.Sub(usage.minuteStart) >= time.Minute {
		usage.minuteCount = 0
		usage.minuteStart = now
	}
	if now.Sub(usage.hourStart) >= time.Hour {
		usage.hourCount = 0
		usage.hourStart = now
	}
	if now.Sub(usage.dayStart) >= 24*time.Hour {
		usage.dayCount = 0
		usage.dayStart = now
	}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Window     string        // "minute", "hour" or "day"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s window (limit: %d, retry after: %v)", e.Window, e.Limit, e.RetryAfter)
}
