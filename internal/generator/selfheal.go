package generator

import (
	"context"
	"fmt"
	"strings"

	"liftplan/clients/ai"
)

const selfHealMaxTokens = 1000

const selfHealSystemPrompt = `You fix exercise names in a training plan. Some names are not in the allowed list.
For every invalid name pick the closest allowed exercise (same movement and muscle group).
Respond with ONE JSON object: {"mapping": {"<invalid name>": "<allowed name copied exactly>"}}
Use ONLY names from the allowed list. No text outside the JSON object.`

// SelfHealer одноразовая замена выдуманных названий через LLM
type SelfHealer struct {
	llm     LLM
	catalog *Catalog
}

// NewSelfHealer создаёт SelfHealer
func NewSelfHealer(llm LLM, catalog *Catalog) *SelfHealer {
	return &SelfHealer{llm: llm, catalog: catalog}
}

// Heal запрашивает у LLM соответствия для названий из ошибок "not available" и переписывает план.
// Без таких ошибок ничего не делает и LLM не вызывает. Возвращает число заменённых упражнений.
func (h *SelfHealer) Heal(ctx context.Context, plan map[string]any, validationErrors []string, base ai.Request) (int, error) {
	bad := UnavailableNames(validationErrors)
	if len(bad) == 0 {
		return 0, nil
	}

	req := base
	req.Messages = []ai.Message{
		{Role: "system", Content: selfHealSystemPrompt},
		{Role: "user", Content: h.buildPrompt(bad)},
	}
	req.MaxTokens = selfHealMaxTokens
	req.RequiredKeys = nil

	comp, err := h.llm.GenerateJSON(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("self-heal: %w", err)
	}

	mapping := parseMapping(comp.Data)
	if len(mapping) == 0 {
		return 0, fmt.Errorf("self-heal: LLM returned no replacements")
	}
	return ApplyMapping(plan, mapping), nil
}

func (h *SelfHealer) buildPrompt(bad []string) string {
	var sb strings.Builder
	sb.WriteString("## INVALID NAMES\n\n")
	for _, n := range bad {
		sb.WriteString("- " + n + "\n")
	}
	sb.WriteString(fmt.Sprintf("\n## ALLOWED EXERCISES (%d)\n\n", h.catalog.Len()))
	for _, n := range h.catalog.Names {
		sb.WriteString("- " + n + "\n")
	}
	sb.WriteString("\nReturn ONLY the JSON object with the mapping.")
	return sb.String()
}

// parseMapping принимает {"mapping": {...}} или плоский объект
func parseMapping(data map[string]any) map[string]string {
	src := data
	if nested, ok := data["mapping"].(map[string]any); ok {
		src = nested
	}
	out := make(map[string]string, len(src))
	for bad, good := range src {
		if s, ok := good.(string); ok && strings.TrimSpace(s) != "" {
			out[bad] = strings.TrimSpace(s)
		}
	}
	return out
}

// ApplyMapping заменяет exercise_name во всех сессиях плана
func ApplyMapping(plan map[string]any, mapping map[string]string) int {
	trimmed := make(map[string]string, len(mapping))
	for bad, good := range mapping {
		trimmed[strings.TrimSpace(bad)] = good
	}

	replaced := 0
	sessions, _ := plan["sessions"].([]any)
	for _, rawSession := range sessions {
		session, ok := rawSession.(map[string]any)
		if !ok {
			continue
		}
		exercises, _ := session["exercises"].([]any)
		for _, rawEx := range exercises {
			ex, ok := rawEx.(map[string]any)
			if !ok {
				continue
			}
			name, _ := ex["exercise_name"].(string)
			if good, ok := trimmed[strings.TrimSpace(name)]; ok {
				ex["exercise_name"] = good
				replaced++
			}
		}
	}
	return replaced
}
