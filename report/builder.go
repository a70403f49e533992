package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"evaluate_homework/evaluator"

	"github.com/chainguard-dev/clog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Results maps document names to their criterion results, in insertion order.
type Results = orderedmap.OrderedMap[string, []evaluator.CriterionResult]

// Builder accumulates the evaluations of one folder.
type Builder struct {
	Folder  string
	results *Results
}

func NewBuilder(folder string) *Builder {
	return &Builder{Folder: folder, results: orderedmap.New[string, []evaluator.CriterionResult]()}
}

// Add stores the results of one document. A name already present is kept
// and the new entry goes under "<name> (<documentID>)". It returns the key
// used.
func (b *Builder) Add(ctx context.Context, name, documentID string, results []evaluator.CriterionResult) string {
	if results == nil {
		results = []evaluator.CriterionResult{}
	}
	key := name
	if _, dup := b.results.Get(key); dup {
		key = fmt.Sprintf("%s (%s)", name, documentID)
		clog.FromContext(ctx).With("document", name).With("key", key).
			Warn("Duplicate document name in folder, storing under a qualified key")
	}
	b.results.Set(key, results)
	return key
}

// Len is the number of documents stored.
func (b *Builder) Len() int { return b.results.Len() }

// Results returns the accumulated mapping. Callers must not modify it.
func (b *Builder) Results() *Results { return b.results }

// Filename is "<folder>.json".
func (b *Builder) Filename() string { return b.Folder + ".json" }

// MarshalIndent renders {"<folder>": {"<doc>": [...]}} with two-space indentation.
func (b *Builder) MarshalIndent() ([]byte, error) {
	wrapper := orderedmap.New[string, *Results]()
	wrapper.Set(b.Folder, b.results)
	return json.MarshalIndent(wrapper, "", "  ")
}

// WriteFile writes the report to <dir>/<folder>.json, replacing any existing
// file, and returns the path written.
func (b *Builder) WriteFile(dir string) (string, error) {
	if b.Folder == "" {
		return "", errors.New("report folder name is empty")
	}
	data, err := b.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	path := filepath.Join(dir, b.Filename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Decode parses a written report back into a Builder, preserving document order.
func Decode(data []byte) (*Builder, error) {
	wrapper := orderedmap.New[string, *Results]()
	if err := json.Unmarshal(data, wrapper); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	if wrapper.Len() != 1 {
		return nil, fmt.Errorf("decoding report: expected one folder key, found %d", wrapper.Len())
	}
	pair := wrapper.Oldest()
	b := NewBuilder(pair.Key)
	if pair.Value != nil {
		b.results = pair.Value
	}
	return b, nil
}
