package evaluator

// Completion is the part of a chat completion response the tool consumes.
// It decodes both live responses and recorded mock fixtures.
type Completion struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// Choice is one candidate answer; only the first is inspected.
type Choice struct {
	Index   int64   `json:"index"`
	Message Message `json:"message"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FirstContent returns the text of the first choice, or "" when there is none.
func (c Completion) FirstContent() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// CriterionResult is the model's verdict on one rubric criterion.
// Level is expected to be 1-4 but is not validated.
type CriterionResult struct {
	Criterion string `json:"criterio"`
	Level     int    `json:"nivel"`
	Comment   string `json:"comentario"`
}

// Evaluation is the JSON object the model is asked to return.
type Evaluation struct {
	Criteria []CriterionResult `json:"evaluacion"`
}
