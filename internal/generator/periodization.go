package generator

import (
	"encoding/json"
	"strings"

	"liftplan/internal/training"
)

const maxDurationWeeks = 52

// AttachPeriodization дополняет план макроциклом. Явные параметры запуска важнее полей от LLM,
// поля от LLM важнее значений по умолчанию. Сводка добавляется к description.
func AttachPeriodization(plan map[string]any, profile training.TargetProfile, scheme training.Scheme) training.Periodization {
	if !profile.Valid() {
		profile = training.TargetProfile(stringField(plan, "target_profile"))
	}
	if !scheme.Valid() {
		scheme = training.Scheme(stringField(plan, "periodization"))
	}
	duration := intField(plan, "duration_weeks")
	if duration > maxDurationWeeks {
		duration = 0
	}
	deloads := intList(plan, "deload_weeks", duration)

	p := training.Synthesize(profile, scheme, duration, deloads)

	plan["target_profile"] = string(p.TargetProfile)
	plan["periodization"] = string(p.Scheme)
	plan["duration_weeks"] = p.DurationWeeks
	plan["deload_weeks"] = p.DeloadWeeks
	if _, ok := plan["macrocycle"]; !ok {
		plan["macrocycle"] = map[string]any{"weeks": toAny(p.Weeks)}
	}
	if _, ok := plan["microcycle_template"]; !ok {
		plan["microcycle_template"] = toAny(p.MicrocycleTemplate)
	}
	if _, ok := plan["progression_strategy"]; !ok {
		plan["progression_strategy"] = toAny(p.ProgressionStrategy)
	}

	desc := strings.TrimSpace(stringField(plan, "description"))
	if desc != "" {
		desc += "\n\n"
	}
	plan["description"] = desc + p.Summary()
	return p
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// intList недели разгрузки из ответа LLM; значения вне 1..duration отбрасываются.
// nil означает "не задано".
func intList(m map[string]any, key string, duration int) []int {
	raw, ok := m[key].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	if duration <= 0 {
		duration = training.DefaultDurationWeeks
	}
	var out []int
	for _, r := range raw {
		f, ok := r.(float64)
		if !ok {
			continue
		}
		w := int(f)
		if w >= 1 && w <= duration {
			out = append(out, w)
		}
	}
	return out
}

// toAny приводит структуру к виду, в котором её вернул бы json.Unmarshal
func toAny(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
