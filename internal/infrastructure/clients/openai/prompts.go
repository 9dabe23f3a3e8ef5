package openai

import "fmt"

const rulesSystemPrompt = `You are a board game rules expert. Answer rules questions accurately and concisely.
Cite the specific rule when you can. If a question is ambiguous, state the most common tournament interpretation first.
Never invent rules: when you are not sure, say so and explain the closest official ruling you know.`

func buildRulesUserPrompt(gameTitle, prompt string) string {
	if gameTitle == "" {
		return prompt
	}
	return fmt.Sprintf("Game: %s\n\n%s", gameTitle, prompt)
}
