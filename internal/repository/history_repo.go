package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"liftplan/internal/models"
)

// HistoryRepository журнал тренировок и веса тела
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository создаёт репозиторий истории
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListNonWarmupSetsInWindow возвращает рабочие подходы пользователя за последние days дней
// в хронологическом порядке
func (r *HistoryRepository) ListNonWarmupSetsInWindow(ctx context.Context, userID int64, days int) ([]models.SetRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+`,
		       ts.id, ts.session_date, COALESCE(ts.is_deload, false),
		       s.weight, s.reps, s.rpe
		FROM public.sets s
		JOIN public.training_sessions ts ON ts.id = s.session_id
		JOIN public.exercises e ON e.id = s.exercise_id
		WHERE ts.user_id = $1
		  AND NOT COALESCE(s.is_warmup, false)
		  AND ts.session_date >= CURRENT_DATE - $2::int
		ORDER BY ts.session_date, s.id`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	var sets []models.SetRecord
	for rows.Next() {
		var (
			s      models.SetRecord
			weight sql.NullFloat64
			reps   sql.NullInt64
			rpe    sql.NullFloat64
		)
		s.Exercise, err = scanExercise(rows, &s.SessionID, &s.SessionDate, &s.IsDeload, &weight, &reps, &rpe)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения подхода: %w", err)
		}
		s.Weight = weight.Float64
		if reps.Valid {
			n := int(reps.Int64)
			s.Reps = &n
		}
		s.RPE = nullFloat(rpe)
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// LatestBodyweight возвращает последний записанный вес тела, nil если записей нет
func (r *HistoryRepository) LatestBodyweight(ctx context.Context, userID int64) (*float64, error) {
	var kg float64
	err := r.db.QueryRowContext(ctx, `
		SELECT weight_kg FROM public.body_weights
		WHERE user_id = $1
		ORDER BY recorded_on DESC, id DESC
		LIMIT 1`, userID).Scan(&kg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения веса тела: %w", err)
	}
	return &kg, nil
}
