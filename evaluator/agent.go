package evaluator

import (
	"context"
	"errors"
	"strings"
)

// Evaluator grades documents against a rubric through an LLMClient.
type Evaluator struct {
	llm LLMClient
}

func NewEvaluator(llm LLMClient) (*Evaluator, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Evaluator{llm: llm}, nil
}

// Evaluate sends text and rubric to the model once and returns its raw
// completion. Blank text is rejected without calling the model.
func (e *Evaluator) Evaluate(ctx context.Context, text, rubric string) (Completion, error) {
	if strings.TrimSpace(text) == "" {
		return Completion{}, ErrEmptyText
	}
	return e.llm.Complete(ctx, BuildEvaluationPrompt(text, rubric))
}

// Grade evaluates text and extracts the criterion list from the first choice.
func (e *Evaluator) Grade(ctx context.Context, text, rubric string) ([]CriterionResult, error) {
	c, err := e.Evaluate(ctx, text, rubric)
	if err != nil {
		return nil, err
	}
	content := c.FirstContent()
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}
	return ExtractEvaluation(content)
}
