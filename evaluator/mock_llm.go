package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MockFile is the recorded completion read by MockLLM.
const MockFile = "mock_gpt_response.json"

// MockLLM replays a recorded completion from DataDir instead of calling the
// network, for offline runs and tests.
type MockLLM struct {
	DataDir string
}

// Path is the fixture location.
func (m MockLLM) Path() string {
	return filepath.Join(m.DataDir, MockFile)
}

func (m MockLLM) Complete(ctx context.Context, _ Prompt) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	data, err := os.ReadFile(m.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return Completion{}, fmt.Errorf("%w: %s", ErrMockNotFound, m.Path())
	}
	if err != nil {
		return Completion{}, err
	}
	var c Completion
	if err := json.Unmarshal(data, &c); err != nil {
		return Completion{}, fmt.Errorf("%w: %s: %v", ErrMockDecode, m.Path(), err)
	}
	return c, nil
}
