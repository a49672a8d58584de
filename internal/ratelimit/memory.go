package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *SlidingWindow) {
		s.now = now
	}
}

// SlidingWindow is an in-process, process-wide admission limiter. It keeps the
// timestamps of admitted requests and admits a new one only while fewer than
// limit of them fall inside the trailing window.
type SlidingWindow struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	admitted []time.Time
	now      func() time.Time
}

// NewSlidingWindow creates a limiter admitting at most limit requests per window.
func NewSlidingWindow(limit int, window time.Duration, opts ...Option) *SlidingWindow {
	s := &SlidingWindow{
		limit:    limit,
		window:   window,
		admitted: make([]time.Time, 0, max(limit, 0)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit records and admits the request when the window has room. Rejected
// requests are not recorded.
func (s *SlidingWindow) Admit(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	kept := s.admitted[:0]
	for _, ts := range s.admitted {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	s.admitted = kept

	if len(s.admitted) >= s.limit {
		return false, nil
	}
	s.admitted = append(s.admitted, now)
	return true, nil
}
