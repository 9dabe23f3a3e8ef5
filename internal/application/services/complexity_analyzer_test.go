package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripForceDirective_Present(t *testing.T) {
	stripped, forced := StripForceDirective("[FORCE_RESEARCH] explain scoring")
	assert.True(t, forced)
	assert.Equal(t, "explain scoring", stripped)
}

func TestStripForceDirective_CaseInsensitive(t *testing.T) {
	stripped, forced := StripForceDirective("explain [force_research] scoring")
	assert.True(t, forced)
	assert.Equal(t, "explain  scoring", stripped)
}

func TestStripForceDirective_Absent(t *testing.T) {
	stripped, forced := StripForceDirective("how does scoring work?")
	assert.False(t, forced)
	assert.Equal(t, "how does scoring work?", stripped)
}

func TestAnalyze_EmptyQuestionScoresZero(t *testing.T) {
	analyzer := NewComplexityAnalyzer(0)

	score := analyzer.Analyze("   ", "Wingspan")

	assert.Equal(t, 0, score.TotalScore)
	assert.False(t, score.ShouldTriggerResearch)
	assert.Contains(t, score.Reasoning, "empty question")
}

func TestAnalyze_SimpleQuestionStaysBelowThreshold(t *testing.T) {
	analyzer := NewComplexityAnalyzer(0)

	score := analyzer.Analyze("What is the setup time?", "Wingspan")

	assert.Less(t, score.TotalScore, defaultScoreThreshold)
	assert.False(t, score.ShouldTriggerResearch)
}

func TestAnalyze_ExceptionHeavyQuestionTriggersResearch(t *testing.T) {
	analyzer := NewComplexityAnalyzer(0)

	score := analyzer.Analyze(
		"Is there an official ruling on the timing conflict when two Wingspan bird powers trigger simultaneous effects at the end game?",
		"Wingspan",
	)

	assert.GreaterOrEqual(t, score.TotalScore, defaultScoreThreshold)
	assert.True(t, score.ShouldTriggerResearch)
	assert.NotEmpty(t, score.Reasoning)
}

func TestAnalyze_ScoreClampedToHundred(t *testing.T) {
	analyzer := NewComplexityAnalyzer(0)

	question := "official ruling errata faq timing conflict interrupt override simultaneous tiebreak exception interaction " +
		"strategy optimal combo synergy opening tactic meta counter " +
		"rule scoring setup phase variant expansion endgame turn order wingspan wingspan"
	score := analyzer.Analyze(question, "Wingspan")

	assert.LessOrEqual(t, score.TotalScore, 100)
	assert.True(t, score.ShouldTriggerResearch)
}

func TestAnalyzeV2_QuotedTerminologyAddsSignal(t *testing.T) {
	analyzer := NewComplexityAnalyzer(0)

	question := `How does the "round end" rule interact with "bonus cards"?`
	v1 := analyzer.Analyze(question, "Wingspan")
	v2 := analyzer.AnalyzeV2(question, "Wingspan")

	assert.Greater(t, v2.TotalScore, v1.TotalScore)
}

func TestAnalyze_CustomThreshold(t *testing.T) {
	analyzer := NewComplexityAnalyzer(5)

	score := analyzer.Analyze("What is the setup time?", "Wingspan")

	assert.True(t, score.ShouldTriggerResearch)
}
