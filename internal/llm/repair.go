package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotObject = errors.New("response is not a JSON object")

// StripCodeFences removes a surrounding ``` / ```json fence, if any.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string ("json", "JSON", ...) up to the first newline
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseResponse turns a raw model answer into a JSON object. When the first
// parse fails and the text has more '{' than '}', the missing closing braces
// are appended and parsing is retried once. repaired reports whether that
// second attempt was the one that succeeded.
func ParseResponse(raw string) (obj map[string]any, repaired bool, err error) {
	text := StripCodeFences(raw)
	if text == "" {
		return nil, false, errors.New("empty response")
	}

	obj, err = decodeObject(text)
	if err == nil {
		return obj, false, nil
	}

	deficit := strings.Count(text, "{") - strings.Count(text, "}")
	if deficit <= 0 {
		return nil, false, err
	}
	fixed := text + strings.Repeat("}", deficit)
	obj, rerr := decodeObject(fixed)
	if rerr != nil {
		return nil, false, fmt.Errorf("repair failed: %w (original: %v)", rerr, err)
	}
	return obj, true, nil
}

func decodeObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}
