package entities

// ComplexityScore is the heuristic estimate of how specialized a rules
// question is. Computed fresh per question and never mutated afterwards.
type ComplexityScore struct {
	TotalScore            int      `json:"totalScore"`
	ShouldTriggerResearch bool     `json:"shouldTriggerResearch"`
	Reasoning             []string `json:"reasoning"`
}
