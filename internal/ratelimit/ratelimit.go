// Package ratelimit bounds outbound request volume over a rolling window.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow admits at most maxRequests within any window-wide
// interval. It records the admission time of each allowed request and
// refuses when the rolling count is at the limit. Safe for concurrent
// callers; rejection policy is up to the caller.
type SlidingWindow struct {
	mu         sync.Mutex
	maxReqs    int
	window     time.Duration
	admissions []time.Time // ascending admission times, pruned on acquire
	now        func() time.Time
}

// NewSlidingWindow creates a limiter for maxRequests per window.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		maxReqs:    maxRequests,
		window:     window,
		admissions: make([]time.Time, 0, maxRequests),
		now:        time.Now,
	}
}

// SetClock injects a clock for testing.
func (l *SlidingWindow) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// TryAcquire admits one request if the rolling window has room.
// It never blocks.
func (l *SlidingWindow) TryAcquire() bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	if len(l.admissions) >= l.maxReqs {
		return false
	}

	l.admissions = append(l.admissions, now)
	return true
}

// Admitted returns the number of admissions still inside the window.
func (l *SlidingWindow) Admitted() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)
	return len(l.admissions)
}

// pruneLocked drops admissions older than the window. Caller holds mu.
func (l *SlidingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admissions) && !l.admissions[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.admissions = append(l.admissions[:0], l.admissions[i:]...)
	}
}
