package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"liftplan/internal/models"
	"liftplan/internal/training"
)

func TestCoverageWarnings(t *testing.T) {
	catalog := NewCatalog(testExercises())
	draft := &PlanDraft{Sessions: []SessionDraft{
		{Exercises: []ExerciseDraft{{ExerciseName: "Bench Press"}, {ExerciseName: "Face Pull"}}},
		{Exercises: []ExerciseDraft{{ExerciseName: "Back Squat"}}},
	}}

	weaknesses := []training.Weakness{
		{Kind: training.WeaknessUndertrained, Subject: "rear delts", MuscleGroup: models.MuscleRearDelts},
		{Kind: training.WeaknessUndertrained, Subject: "hamstrings", MuscleGroup: models.MuscleHamstrings},
		{Kind: training.WeaknessUndertrained, Subject: "hamstrings", MuscleGroup: models.MuscleHamstrings},
		{Kind: training.WeaknessUndertrained, Subject: "calves", MuscleGroup: models.MuscleCalves},
		{Kind: training.WeaknessStale, Subject: "Hip Thrust", MuscleGroup: models.MuscleGlutes},
		{Kind: training.WeaknessNoData, Subject: training.NoDataWeakness},
	}

	assert.Equal(t, []string{
		"weakness 'hamstrings' is not targeted by any exercise in the plan",
		"weakness 'calves' is not targeted by any exercise in the plan",
	}, CoverageWarnings(weaknesses, draft, catalog))
}
