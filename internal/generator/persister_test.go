package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) *PlanDraft {
	t.Helper()
	d, err := DecodeDraft(parsePlan(t, raw))
	require.NoError(t, err)
	return d
}

func TestPersist_BatchedResolution(t *testing.T) {
	catalog := newFakeCatalog()
	plans := &fakePlans{}
	p := NewPersister(catalog, plans, nil)
	p.newID = func() string { return "group-1" }

	draft := decode(t, `{"plan_name": "Upper Lower Strength", "description": "Four weeks of work.", "sessions": [
		{"day_name": "Upper", "exercises": [
			{"order": 1, "exercise_name": "Bench Press", "sets": 4, "reps": "5", "rest_seconds": 180},
			{"order": 2, "exercise_name": " barbell row ", "sets": "4", "reps": 8},
			{"order": 3, "exercise_name": "Cable Crossover Deluxe", "sets": 3, "reps": "12", "notes": "slow eccentric"}]},
		{"day_name": "Lower", "exercises": [
			{"order": 1, "exercise_name": "BACK SQUAT", "sets": 5, "reps": "5", "rest_seconds": 180},
			{"exercise_name": "Plank", "sets": 3, "reps": "45s", "notes": "  "}]}]}`)

	res, err := p.Persist(context.Background(), 1, draft, "Four weeks of work.", "Macrocycle: 12 weeks", NewCatalog(testExercises()))
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.exactCalls)
	assert.Equal(t, 1, catalog.ciCalls)
	assert.Equal(t, []int64{100, 101}, res.PlanIDs)
	assert.Equal(t, []string{"Cable Crossover Deluxe"}, res.Skipped)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "1 exercise(s) could not be matched")

	require.Len(t, plans.plans, 2)
	assert.Equal(t, "Upper Lower Strength - Upper", plans.plans[0].Name)
	assert.Equal(t, "group-1", *plans.plans[1].GroupID)
	assert.Equal(t, 1, plans.plans[1].GroupPosition)
	assert.Equal(t, "Four weeks of work.\nTraining day 2: Lower\n\nMacrocycle: 12 weeks", plans.plans[1].Description)

	require.Len(t, plans.exercises, 4)
	row := plans.exercises[1]
	assert.Equal(t, int64(100), row.PlanID)
	assert.Equal(t, "8", row.TargetReps)
	assert.Equal(t, 4, row.TargetSets)
	assert.Equal(t, DefaultRestSeconds, row.RestSeconds)

	plank := plans.exercises[3]
	assert.Equal(t, 2, plank.Order, "missing order falls back to position")
	assert.Equal(t, "45s", plank.TargetReps)
	assert.Nil(t, plank.Note)
}

func TestPersist_ExactMatchSkipsFuzzyLookup(t *testing.T) {
	catalog := newFakeCatalog()
	p := NewPersister(catalog, &fakePlans{}, nil)

	draft := decode(t, `{"plan_name": "Full Body Basics Plan", "sessions": [
		{"day_name": "A", "exercises": [{"order": 1, "exercise_name": "Back Squat", "sets": 3, "reps": "5"}]}]}`)
	res, err := p.Persist(context.Background(), 1, draft, "", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.exactCalls)
	assert.Zero(t, catalog.ciCalls)
	assert.Empty(t, res.GroupID, "single session has no group")
	assert.Empty(t, res.Warnings)
}

func TestPersist_OutsideAllowedCatalogIsSkipped(t *testing.T) {
	catalog := newFakeCatalog()
	plans := &fakePlans{}
	p := NewPersister(catalog, plans, nil)

	draft := decode(t, `{"plan_name": "Leg Day Conditioning", "sessions": [
		{"day_name": "Legs", "exercises": [
			{"order": 1, "exercise_name": "Sled Push", "sets": 3, "reps": "20m"},
			{"order": 2, "exercise_name": "Leg Press", "sets": 3, "reps": "12"}]}]}`)
	allowed := NewCatalog(testExercises()[:40])

	res, err := p.Persist(context.Background(), 1, draft, "", "", allowed)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sled Push"}, res.Skipped)
	require.Len(t, plans.exercises, 1)
}

func TestPersist_FailedSaveReturnsNoIDs(t *testing.T) {
	plans := &fakePlans{failOn: 2}
	p := NewPersister(newFakeCatalog(), plans, nil)

	draft := decode(t, `{"plan_name": "Upper Lower Strength", "sessions": [
		{"day_name": "Upper", "exercises": [{"order": 1, "exercise_name": "Bench Press", "sets": 4, "reps": "5"}]},
		{"day_name": "Lower", "exercises": [{"order": 1, "exercise_name": "Back Squat", "sets": 5, "reps": "5"}]}]}`)

	res, err := p.Persist(context.Background(), 1, draft, "", "", nil)
	require.Error(t, err)
	assert.Empty(t, res.PlanIDs)
	assert.Empty(t, res.GroupID)
	assert.Empty(t, plans.plans)
}
