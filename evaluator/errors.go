package evaluator

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText is returned when a document has no text worth evaluating.
	ErrEmptyText = errors.New("document has no text to evaluate")
	// ErrEmptyCompletion is returned when the first choice carries no content.
	ErrEmptyCompletion = errors.New("completion has no content")
	// ErrNoEvaluation is returned when the answer parses but holds no "evaluacion" list.
	ErrNoEvaluation = errors.New("answer has no evaluation")
	// ErrMockNotFound is returned in mock mode when the fixture file is missing.
	ErrMockNotFound = errors.New("mock completion not found")
	// ErrMockDecode is returned in mock mode when the fixture is not a completion.
	ErrMockDecode = errors.New("mock completion is malformed")
)

// RemoteError reports a non-success status from the completion endpoint.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports an answer whose JSON does not match the evaluation schema.
type DecodeError struct {
	Candidate string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding evaluation: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
