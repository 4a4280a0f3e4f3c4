package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftplan/internal/training"
)

func TestAttachPeriodization_Defaults(t *testing.T) {
	plan := parsePlan(t, `{"plan_name": "x", "description": "Solid base.", "sessions": []}`)

	p := AttachPeriodization(plan, "", "")
	assert.Equal(t, training.ProfileHypertrophy, p.TargetProfile)
	assert.Equal(t, training.SchemeLinear, p.Scheme)
	assert.Equal(t, []int{4, 8, 12}, p.DeloadWeeks)
	assert.Equal(t, 12, plan["duration_weeks"])
	assert.Equal(t, "hypertrophy", plan["target_profile"])

	macro, ok := plan["macrocycle"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, macro["weeks"], 12)
	assert.Contains(t, plan, "microcycle_template")
	assert.Contains(t, plan, "progression_strategy")

	desc := plan["description"].(string)
	assert.Contains(t, desc, "Solid base.\n\nMacrocycle: 12 weeks, hypertrophy, linear periodization")
}

func TestAttachPeriodization_LLMFieldsAndOverrides(t *testing.T) {
	raw := `{"plan_name": "x", "sessions": [], "target_profile": "strength", "periodization": "undulating",
		"duration_weeks": 8, "deload_weeks": [4, 8, 20], "macrocycle": {"weeks": "custom"}}`

	p := AttachPeriodization(parsePlan(t, raw), "", "")
	assert.Equal(t, training.ProfileStrength, p.TargetProfile)
	assert.Equal(t, training.SchemeUndulating, p.Scheme)
	assert.Equal(t, 8, p.DurationWeeks)
	assert.Equal(t, []int{4, 8}, p.DeloadWeeks)

	plan := parsePlan(t, raw)
	p = AttachPeriodization(plan, training.ProfileDefinition, training.SchemeBlock)
	assert.Equal(t, training.ProfileDefinition, p.TargetProfile)
	assert.Equal(t, training.SchemeBlock, p.Scheme)
	assert.Equal(t, map[string]any{"weeks": "custom"}, plan["macrocycle"], "LLM macrocycle is kept")
}

func TestAttachPeriodization_ShortCycleWithoutDeloads(t *testing.T) {
	plan := parsePlan(t, `{"plan_name": "x", "description": "Short block.", "sessions": [], "duration_weeks": 8}`)

	p := AttachPeriodization(plan, "", "")
	assert.Equal(t, []int{4, 8}, p.DeloadWeeks)
	assert.Contains(t, plan["description"], "Deload weeks: 4, 8\n")
	assert.NotContains(t, plan["description"], "Deload weeks: 4, 8, 12")
}

func TestAttachPeriodization_UnreasonableDuration(t *testing.T) {
	plan := parsePlan(t, `{"plan_name": "x", "sessions": [], "duration_weeks": 400}`)
	p := AttachPeriodization(plan, "", "")
	assert.Equal(t, training.DefaultDurationWeeks, p.DurationWeeks)
}
