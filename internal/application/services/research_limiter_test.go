package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsUpToMaxPerWindow(t *testing.T) {
	limiter := NewResearchLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		limiter.RecordQuestionAsked()
		assert.True(t, limiter.CanPerformResearch(), "question %d should be allowed", i+1)
	}

	limiter.RecordQuestionAsked()
	assert.False(t, limiter.CanPerformResearch())
}

func TestLimiter_WindowExpiryResetsQuota(t *testing.T) {
	now := time.Now()
	limiter := NewResearchLimiter(1, time.Hour)
	limiter.now = func() time.Time { return now }

	limiter.RecordQuestionAsked()
	limiter.RecordQuestionAsked()
	assert.False(t, limiter.CanPerformResearch())

	// Advance past the window: a previously exhausted quota allows new
	// research again.
	now = now.Add(time.Hour)
	limiter.RecordQuestionAsked()
	assert.True(t, limiter.CanPerformResearch())
}

func TestLimiter_CheckWithoutNewRecordKeepsState(t *testing.T) {
	limiter := NewResearchLimiter(2, time.Hour)

	limiter.RecordQuestionAsked()
	assert.True(t, limiter.CanPerformResearch())
	assert.True(t, limiter.CanPerformResearch())

	limiter.RecordQuestionAsked()
	limiter.RecordQuestionAsked()
	assert.False(t, limiter.CanPerformResearch())
}
