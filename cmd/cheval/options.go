package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildOptions merges a JSON object with key=value pairs into one JSON
// document. Values that parse as JSON (numbers, booleans, arrays) keep
// their type; anything else is a string.
func buildOptions(base string, pairs []string) (json.RawMessage, error) {
	fields := make(map[string]any)
	if strings.TrimSpace(base) != "" {
		if err := json.Unmarshal([]byte(base), &fields); err != nil {
			return nil, fmt.Errorf("--options: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: expected key=value", pair)
		}
		fields[key] = parseValue(value)
	}
	return json.Marshal(fields)
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case float64, bool, []any:
			return v
		}
	}
	return s
}
