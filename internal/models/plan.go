package models

import "time"

// Plan один тренировочный день сгенерированного плана
type Plan struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	GroupID       *string   `json:"group_id,omitempty"`
	GroupName     *string   `json:"group_name,omitempty"`
	GroupPosition int       `json:"group_position"`
	CreatedAt     time.Time `json:"created_at"`
}

// PlanExercise упражнение внутри дня плана
type PlanExercise struct {
	PlanID        int64   `json:"plan_id"`
	ExerciseID    int64   `json:"exercise_id"`
	TrainingDay   string  `json:"training_day"`
	Order         int     `json:"order"`
	TargetSets    int     `json:"target_sets"`
	TargetReps    string  `json:"target_reps"`
	RestSeconds   int     `json:"rest_seconds"`
	SupersetGroup *int    `json:"superset_group,omitempty"`
	Note          *string `json:"note,omitempty"`
}

// PlanDay день плана вместе с упражнениями; PlanID упражнений заполняется при сохранении
type PlanDay struct {
	Plan      Plan
	Exercises []PlanExercise
}
