package providers

import "context"

// AnswerProvider is the opaque LLM collaborator that turns an enriched
// prompt into an answer. A missing credential is a construction-time
// configuration error, never a per-call one.
type AnswerProvider interface {
	AskGameQuestion(ctx context.Context, gameTitle, prompt string) (string, error)
}
