package evaluator

import "context"

// LLMClient sends one prompt to a completion endpoint, so the live client
// and the recorded mock are interchangeable.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}
