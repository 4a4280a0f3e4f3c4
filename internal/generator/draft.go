package generator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PlanDraft типизированное представление проверенного плана
type PlanDraft struct {
	PlanName    string         `json:"plan_name"`
	Description string         `json:"description"`
	Sessions    []SessionDraft `json:"sessions"`
}

// SessionDraft один тренировочный день
type SessionDraft struct {
	DayName   string          `json:"day_name"`
	Name      string          `json:"name"`
	Focus     string          `json:"focus"`
	Exercises []ExerciseDraft `json:"exercises"`
}

// Day название дня; k - индекс сессии с нуля
func (s SessionDraft) Day(k int) string {
	if d := strings.TrimSpace(s.DayName); d != "" {
		return d
	}
	if d := strings.TrimSpace(s.Name); d != "" {
		return d
	}
	return fmt.Sprintf("Day %d", k+1)
}

// ExerciseDraft упражнение в дне
type ExerciseDraft struct {
	ExerciseName  string   `json:"exercise_name"`
	Order         flexInt  `json:"order"`
	Sets          flexInt  `json:"sets"`
	Reps          flexReps `json:"reps"`
	RestSeconds   flexInt  `json:"rest_seconds"`
	SupersetGroup *flexInt `json:"superset_group,omitempty"`
	Notes         string   `json:"notes"`
}

const DefaultRestSeconds = 90

// DecodeDraft переводит map из LLM в PlanDraft
func DecodeDraft(plan map[string]any) (*PlanDraft, error) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации плана: %w", err)
	}
	var d PlanDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("ошибка разбора плана: %w", err)
	}
	return &d, nil
}

// flexInt число или строка с числом ("4", "4.0")
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// "3-4" и подобное: берём первое число
		if n, err := strconv.Atoi(leadingDigits(s)); err == nil {
			*f = flexInt(n)
			return nil
		}
		return fmt.Errorf("не число: %s", s)
	}
	*f = flexInt(int(v))
	return nil
}

// flexReps повторения числом (8) или строкой ("8-10", "30s")
type flexReps string

func (r *flexReps) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = flexReps(strings.TrimSpace(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("некорректные повторения: %s", b)
	}
	*r = flexReps(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
