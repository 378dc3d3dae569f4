package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errUnexpectedEnvelope = errors.New("unexpected response envelope")

var envelopeKeys = []string{"data", "results", "items"}

// decodeList accepts a bare array or an object wrapping the array under
// data, results or items. One level of nesting is allowed, as in
// {"data": {"items": [...]}}. Non-object elements are skipped.
func decodeList(body []byte) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return unwrap(v, 2)
}

func unwrap(v any, depth int) ([]map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return []map[string]any{}, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, nil
	case map[string]any:
		if depth == 0 {
			break
		}
		for _, k := range envelopeKeys {
			if inner, ok := t[k]; ok {
				return unwrap(inner, depth-1)
			}
		}
	}
	return nil, errUnexpectedEnvelope
}

// decodeObject decodes an object response. An empty body yields nil.
func decodeObject(body []byte) (map[string]any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if data, ok := m["data"].(map[string]any); ok {
		return data, nil
	}
	return m, nil
}

// errorMessage extracts a readable message from an error body.
func errorMessage(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err == nil {
		for _, k := range []string{"message", "detail", "error"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
		if inner, ok := m["error"].(map[string]any); ok {
			if s, ok := inner["message"].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
