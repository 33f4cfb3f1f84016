package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window admission gate keyed by user identity.
//
// A single mutex guards the whole map: prune-then-append must be atomic per
// user, and at the expected scale (tens of concurrent users) contention on
// one lock is insignificant.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	windows map[string][]time.Time
	now     func() time.Time
}

// New constructs a limiter admitting at most max requests per user within
// the trailing window.
func New(window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if max < 1 {
		max = 1
	}
	return &Limiter{
		window:  window,
		max:     max,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Admit reports whether the user's request is admitted. Admission records
// the attempt; denial leaves the window untouched.
func (l *Limiter) Admit(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := prune(l.windows[userID], now.Add(-l.window))

	if len(recent) >= l.max {
		l.windows[userID] = recent
		return false
	}

	l.windows[userID] = append(recent, now)
	return true
}

// Sweep drops users whose windows have emptied, bounding map growth. The
// daemon calls this periodically.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0
	for user, stamps := range l.windows {
		recent := prune(stamps, cutoff)
		if len(recent) == 0 {
			delete(l.windows, user)
			removed++
			continue
		}
		l.windows[user] = recent
	}
	return removed
}

// TrackedUsers returns the number of users currently holding a window.
func (l *Limiter) TrackedUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	recent := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	return recent
}
