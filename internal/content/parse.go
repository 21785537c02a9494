// Package content builds prompts for the text provider and coerces its
// loosely shaped replies into fixed records.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse marks a reply that is not valid JSON of the expected shape.
var ErrParse = errors.New("content: generated response could not be parsed")

// StripFences removes markdown code fence markers around a JSON reply.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// DecodeObject parses a fenced or bare JSON object.
func DecodeObject[T any](raw string) (T, error) {
	var out T
	clean := StripFences(raw)
	if clean == "" {
		return out, fmt.Errorf("%w: empty response", ErrParse)
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return out, nil
}

// DecodeList parses a JSON array. Models in JSON mode sometimes wrap the
// array in an object; the first array-valued field in document order is
// used then.
func DecodeList[T any](raw string) ([]T, error) {
	clean := StripFences(raw)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var list []T
	if err := json.Unmarshal([]byte(clean), &list); err == nil {
		return list, nil
	}

	dec := json.NewDecoder(strings.NewReader(clean))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected array or object", ErrParse)
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if !strings.HasPrefix(strings.TrimSpace(string(v)), "[") {
			continue
		}
		if err := json.Unmarshal(v, &list); err == nil {
			return list, nil
		}
	}
	return nil, fmt.Errorf("%w: no array found", ErrParse)
}
