package gen

import "context"

// Completer streams a completion from an LLM provider and returns the
// concatenated text. The stream is always consumed to completion before the
// text is handed to the parser.
type Completer interface {
	StreamCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	ModelName() string
}

// estimateTokens approximates the token count of a response. Close enough
// for logging and budget accounting without shipping a tokenizer.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}
