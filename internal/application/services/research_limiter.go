package services

import (
	"sync"
	"time"
)

// ResearchLimiter bounds how many questions may trigger external
// research inside a fixed window. Callers must record the question
// before checking the quota, otherwise a burst of identical requests
// could each pass the check before any of them counted.
type ResearchLimiter struct {
	mu           sync.Mutex
	windowStart  time.Time
	count        int
	maxPerWindow int
	window       time.Duration
	now          func() time.Time
}

// NewResearchLimiter creates a limiter allowing maxPerWindow research
// runs per window.
func NewResearchLimiter(maxPerWindow int, window time.Duration) *ResearchLimiter {
	return &ResearchLimiter{
		maxPerWindow: maxPerWindow,
		window:       window,
		now:          time.Now,
	}
}

// RecordQuestionAsked increments the window counter, resetting the
// window first if it has expired.
func (l *ResearchLimiter) RecordQuestionAsked() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetIfExpiredLocked()
	l.count++
}

// CanPerformResearch reports whether the current window still has quota.
// It must be called after RecordQuestionAsked for the same request.
func (l *ResearchLimiter) CanPerformResearch() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetIfExpiredLocked()
	return l.count <= l.maxPerWindow
}

func (l *ResearchLimiter) resetIfExpiredLocked() {
	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
}
