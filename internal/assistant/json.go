package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeModelJSON parses a model reply into dst. Models wrap JSON in fenced
// code blocks or chat around it, so this strips fences, tries a direct parse,
// and falls back to the first balanced {...} span.
func decodeModelJSON(raw string, dst any) error {
	cleaned := stripFences(raw)

	if err := json.Unmarshal([]byte(cleaned), dst); err == nil {
		return nil
	}

	span, ok := firstJSONObject(cleaned)
	if !ok {
		return fmt.Errorf("no JSON object in model response")
	}
	if err := json.Unmarshal([]byte(span), dst); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced {...} span in s, skipping over
// braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
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
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
