package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var errMalformedJSON = errors.New("malformed JSON")

// document is a parsed JSON settings file. Keys are probed in the flat
// "Group:Field" form first and the nested {"Group":{"Field":...}} form second.
type document struct {
	raw []byte
}

func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, err
	}
	if !gjson.ValidBytes(data) {
		return document{}, fmt.Errorf("%s: %w", path, errMalformedJSON)
	}
	return document{raw: data}, nil
}

func (d document) lookup(group, field string) []gjson.Result {
	if d.raw == nil {
		return nil
	}
	return []gjson.Result{
		gjson.GetBytes(d.raw, group+":"+field),
		gjson.GetBytes(d.raw, group+"."+field),
	}
}

func (d document) str(group, field string) string {
	for _, r := range d.lookup(group, field) {
		if !r.Exists() || r.IsArray() || r.IsObject() {
			continue
		}
		if v := r.String(); v != "" {
			return v
		}
	}
	return ""
}

func (d document) scopes(group, field string) []string {
	for _, r := range d.lookup(group, field) {
		if s := scopesFromResult(r); len(s) > 0 {
			return s
		}
	}
	return nil
}

func scopesFromResult(r gjson.Result) []string {
	switch {
	case !r.Exists():
		return nil
	case r.IsArray():
		var raw []string
		for _, item := range r.Array() {
			raw = append(raw, item.String())
		}
		return cleanScopes(raw)
	case r.Type == gjson.String:
		return SplitScopes(r.Str)
	}
	return nil
}
