package entities

import "time"

// ResearchStage names the coarse phases reported to progress listeners.
// The stage names are part of the inbound contract.
type ResearchStage string

const (
	StageAnalyzing  ResearchStage = "analyzing"
	StageSearching  ResearchStage = "searching"
	StageProcessing ResearchStage = "processing"
	StageCompleted  ResearchStage = "completed"
)

// ResearchResult is the outcome of one external research run: a textual
// summary plus the ordered source URLs it was derived from.
type ResearchResult struct {
	Summary   string    `json:"summary"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"createdAt"`
}

// AskResponse is what the orchestrator returns for every question.
// An answer is always present; research failures only show up as
// ResearchUsed=false with no sources.
type AskResponse struct {
	Answer       string `json:"answer"`
	ResearchUsed bool   `json:"researchUsed"`
	// omitzero keeps an empty-but-present source list in the body when
	// research ran and found nothing; only a nil list is omitted.
	Sources    []string         `json:"sources,omitzero"`
	FromCache  bool             `json:"fromCache,omitempty"`
	Complexity *ComplexityScore `json:"complexity,omitempty"`
}
