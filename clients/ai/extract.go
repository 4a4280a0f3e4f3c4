package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON убирает markdown-блоки и возвращает кандидата на JSON-объект:
// весь текст, если это валидный объект, иначе первый сбалансированный {...}
func ExtractJSON(s string) string {
	s = stripFences(strings.TrimSpace(s))

	if strings.HasPrefix(s, "{") && json.Valid([]byte(s)) {
		return s
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return s
	}
	if end := matchingBrace(s, start); end != -1 {
		return s[start : end+1]
	}
	// Незакрытый объект: отдаём от первой до последней скобки, пусть парсер скажет, что не так
	if end := strings.LastIndex(s, "}"); end > start {
		return s[start : end+1]
	}
	return s[start:]
}

// ParseObject извлекает и разбирает JSON-объект верхнего уровня
func ParseObject(s string) (map[string]any, error) {
	candidate := ExtractJSON(s)

	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, fmt.Errorf("%w: %v (JSON: %.200s)", ErrInvalidJSON, err, candidate)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidJSON)
	}
	return out, nil
}

func stripFences(s string) string {
	// Убираем markdown блоки ```json ... ```
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+7:]
	} else if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
	} else {
		return s
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// matchingBrace индекс закрывающей скобки для s[start] == '{' с учётом строк
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
