package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence with an optional language
// tag, capturing the tag and the fenced content.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// ExtractJSON pulls a JSON object out of a model response that may wrap
// it in prose or markdown fences. Fenced blocks are preferred; a bare
// object found by bracket matching is the fallback.
func ExtractJSON(response string) (string, error) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if strings.HasPrefix(content, "{") && json.Valid([]byte(content)) {
			return content, nil
		}
	}

	if obj := bareObject(response); obj != "" {
		return obj, nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// bareObject finds the first brace-balanced object in s, respecting
// string literals and escapes. Returns "" when none validates.
func bareObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	s = s[start:]

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := s[:i+1]
				if json.Valid([]byte(candidate)) {
					return candidate
				}
				return ""
			}
		}
	}
	return ""
}
