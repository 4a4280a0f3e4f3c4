package models

import "time"

// SetRecord один подход из истории тренировок вместе с упражнением
type SetRecord struct {
	SessionID   int64     `json:"session_id"`
	SessionDate time.Time `json:"session_date"`
	Exercise    Exercise  `json:"exercise"`
	Weight      float64   `json:"weight"`
	Reps        *int      `json:"reps,omitempty"`
	RPE         *float64  `json:"rpe,omitempty"`
	IsWarmup    bool      `json:"is_warmup"`
	IsDeload    bool      `json:"is_deload"`
}

// BodyWeight запись веса тела
type BodyWeight struct {
	UserID   int64     `json:"user_id"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}
