package services

import (
	"fmt"
	"strings"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
)

// ForceResearchDirective is the in-band marker that bypasses heuristic
// scoring. It is stripped from the question before any further
// processing.
const ForceResearchDirective = "[FORCE_RESEARCH]"

// StripForceDirective removes every occurrence of the force-research
// directive (case-insensitive) and reports whether one was present.
func StripForceDirective(question string) (string, bool) {
	lower := strings.ToLower(question)
	marker := strings.ToLower(ForceResearchDirective)

	found := false
	for {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			break
		}
		found = true
		question = question[:idx] + question[idx+len(marker):]
		lower = lower[:idx] + lower[idx+len(marker):]
	}
	return strings.TrimSpace(question), found
}

// Keyword vocabularies driving the research-trigger heuristic. Exception
// and edge-case vocabulary weighs heaviest: those are the questions the
// base model most often gets wrong.
var (
	exceptionKeywords = []string{
		"exception", "edge case", "conflict", "contradict", "simultaneous",
		"tiebreak", "tie-break", "timing", "interrupt", "override", "errata",
		"faq", "official ruling", "tournament", "interaction",
	}
	strategyKeywords = []string{
		"strategy", "optimal", "best move", "combo", "synergy", "opening",
		"tactic", "counter", "meta",
	}
	rulesKeywords = []string{
		"rule", "scoring", "score", "setup", "allowed", "legal", "phase",
		"turn order", "end game", "endgame", "variant", "expansion",
	}
)

const (
	exceptionWeight = 15
	exceptionCap    = 40
	strategyWeight  = 10
	strategyCap     = 30
	rulesWeight     = 8
	rulesCap        = 24
	gameTermWeight  = 10
	gameTermCap     = 20

	defaultScoreThreshold = 50
)

// ComplexityAnalyzer scores how specialized a rules question is. The
// score drives the research-trigger decision; it is computed fresh per
// question and never cached.
type ComplexityAnalyzer struct {
	threshold int
}

// NewComplexityAnalyzer creates an analyzer with the given trigger
// threshold; non-positive values fall back to the default.
func NewComplexityAnalyzer(threshold int) *ComplexityAnalyzer {
	if threshold <= 0 {
		threshold = defaultScoreThreshold
	}
	return &ComplexityAnalyzer{threshold: threshold}
}

// Analyze computes the v1 complexity score: weighted keyword-category
// matches, question length, and game-specific terminology.
func (a *ComplexityAnalyzer) Analyze(question, gameTitle string) *entities.ComplexityScore {
	return a.analyze(question, gameTitle, false)
}

// AnalyzeV2 extends v1 with quoted-terminology and multi-part question
// signals.
func (a *ComplexityAnalyzer) AnalyzeV2(question, gameTitle string) *entities.ComplexityScore {
	return a.analyze(question, gameTitle, true)
}

func (a *ComplexityAnalyzer) analyze(question, gameTitle string, v2 bool) *entities.ComplexityScore {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return &entities.ComplexityScore{
			TotalScore:            0,
			ShouldTriggerResearch: false,
			Reasoning:             []string{"empty question"},
		}
	}

	lower := strings.ToLower(trimmed)
	total := 0
	var reasoning []string

	if pts, n := keywordScore(lower, exceptionKeywords, exceptionWeight, exceptionCap); n > 0 {
		total += pts
		reasoning = append(reasoning, fmt.Sprintf("%d exception/edge-case term(s): +%d", n, pts))
	}
	if pts, n := keywordScore(lower, strategyKeywords, strategyWeight, strategyCap); n > 0 {
		total += pts
		reasoning = append(reasoning, fmt.Sprintf("%d strategy term(s): +%d", n, pts))
	}
	if pts, n := keywordScore(lower, rulesKeywords, rulesWeight, rulesCap); n > 0 {
		total += pts
		reasoning = append(reasoning, fmt.Sprintf("%d rules term(s): +%d", n, pts))
	}

	if pts := lengthScore(trimmed); pts > 0 {
		total += pts
		reasoning = append(reasoning, fmt.Sprintf("question length %d chars: +%d", len([]rune(trimmed)), pts))
	}

	if pts, n := gameTermScore(lower, gameTitle); n > 0 {
		total += pts
		reasoning = append(reasoning, fmt.Sprintf("%d game-specific term(s): +%d", n, pts))
	}

	if v2 {
		if pts := quotedTermScore(trimmed); pts > 0 {
			total += pts
			reasoning = append(reasoning, fmt.Sprintf("quoted terminology: +%d", pts))
		}
		if strings.Count(trimmed, "?") > 1 {
			total += 10
			reasoning = append(reasoning, "multi-part question: +10")
		}
	}

	if total > 100 {
		total = 100
	}
	if len(reasoning) == 0 {
		reasoning = []string{"no complexity signals"}
	}

	return &entities.ComplexityScore{
		TotalScore:            total,
		ShouldTriggerResearch: total >= a.threshold,
		Reasoning:             reasoning,
	}
}

func keywordScore(question string, keywords []string, weight, capacity int) (int, int) {
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(question, kw) {
			matched++
		}
	}
	pts := matched * weight
	if pts > capacity {
		pts = capacity
	}
	return pts, matched
}

func lengthScore(question string) int {
	n := len([]rune(question))
	switch {
	case n >= 120:
		return 15
	case n >= 60:
		return 10
	case n >= 30:
		return 5
	default:
		return 0
	}
}

func gameTermScore(question, gameTitle string) (int, int) {
	title := strings.TrimSpace(strings.ToLower(gameTitle))
	if title == "" {
		return 0, 0
	}
	matched := 0
	if strings.Contains(question, title) {
		matched++
	}
	for _, word := range strings.Fields(title) {
		if len([]rune(word)) >= 4 && strings.Contains(question, word) {
			matched++
		}
	}
	pts := matched * gameTermWeight
	if pts > gameTermCap {
		pts = gameTermCap
	}
	return pts, matched
}

func quotedTermScore(question string) int {
	quotes := strings.Count(question, `"`) / 2
	pts := quotes * 8
	if pts > 16 {
		pts = 16
	}
	return pts
}
