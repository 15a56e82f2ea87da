package analysis

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// ExtractJSONObject returns the first balanced {...} span in text, tolerating
// surrounding prose and markdown fencing around the object.
func ExtractJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}

// DecodeResult extracts and parses the model response into a Result. The
// returned result is not yet schema-validated.
func DecodeResult(text string) (*Result, error) {
	span, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := sonic.UnmarshalString(span, &result); err != nil {
		return nil, fmt.Errorf("parse response JSON: %w", err)
	}
	return &result, nil
}
