package evaluator

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonFence matches the first ```json ... ``` block, across newlines.
var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractJSONBlock returns the interior of the first ```json fenced block in
// raw, or raw itself when there is no such block.
func ExtractJSONBlock(raw string) string {
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// ParseEvaluation decodes candidate JSON into the criterion list.
func ParseEvaluation(candidate string) ([]CriterionResult, error) {
	var ev *Evaluation
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &ev); err != nil {
		return nil, &DecodeError{Candidate: candidate, Err: err}
	}
	if ev == nil || ev.Criteria == nil {
		return nil, ErrNoEvaluation
	}
	return ev.Criteria, nil
}

// ExtractEvaluation pulls the evaluation out of a model answer, with or
// without a ```json fence around it.
func ExtractEvaluation(raw string) ([]CriterionResult, error) {
	return ParseEvaluation(ExtractJSONBlock(raw))
}
