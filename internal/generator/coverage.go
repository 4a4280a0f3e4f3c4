package generator

import (
	"fmt"

	"liftplan/internal/models"
	"liftplan/internal/training"
)

// CoverageWarnings одно предупреждение на каждую недотренированную группу мышц,
// которую не задействует ни одно упражнение плана
func CoverageWarnings(weaknesses []training.Weakness, draft *PlanDraft, catalog *Catalog) []string {
	targeted := map[models.MuscleGroup]bool{}
	for _, s := range draft.Sessions {
		for _, ex := range s.Exercises {
			if e, ok := catalog.Lookup(ex.ExerciseName); ok {
				targeted[e.MuscleGroup] = true
			}
		}
	}

	var warnings []string
	reported := map[models.MuscleGroup]bool{}
	for _, w := range weaknesses {
		if w.Kind != training.WeaknessUndertrained || w.MuscleGroup == "" {
			continue
		}
		if targeted[w.MuscleGroup] || reported[w.MuscleGroup] {
			continue
		}
		reported[w.MuscleGroup] = true
		warnings = append(warnings, fmt.Sprintf("weakness '%s' is not targeted by any exercise in the plan", w.MuscleGroup.Label()))
	}
	return warnings
}
