package repository

import (
	"context"
	"database/sql"
	"fmt"

	"liftplan/internal/models"
)

// PlanRepository работает с тренировочными планами
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository создаёт репозиторий планов
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// execer общий интерфейс *sql.DB и *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SavePlanGroup сохраняет все дни плана в одной транзакции и возвращает id в порядке дней.
// При любой ошибке транзакция откатывается и в базе не остаётся ни одного дня.
func (r *PlanRepository) SavePlanGroup(ctx context.Context, days []models.PlanDay) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	ids := make([]int64, 0, len(days))
	for k := range days {
		day := &days[k]
		id, err := insertPlan(ctx, tx, &day.Plan)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("ошибка сохранения дня %d: %w", k+1, err)
		}
		for i := range day.Exercises {
			day.Exercises[i].PlanID = id
			if err := insertPlanExercise(ctx, tx, &day.Exercises[i]); err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("ошибка сохранения дня %d: %w", k+1, err)
			}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return ids, nil
}

// insertPlan создаёт план (один тренировочный день) и возвращает его id
func insertPlan(ctx context.Context, q execer, plan *models.Plan) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO public.plans
		(user_id, name, description, group_id, group_name, group_position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		plan.UserID, plan.Name, plan.Description, plan.GroupID, plan.GroupName, plan.GroupPosition,
	).Scan(&id, &plan.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания плана: %w", err)
	}
	plan.ID = id
	return id, nil
}

func insertPlanExercise(ctx context.Context, q execer, pe *models.PlanExercise) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO public.plan_exercises
		(plan_id, exercise_id, training_day, position, target_sets, target_reps,
		 rest_seconds, superset_group, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pe.PlanID, pe.ExerciseID, pe.TrainingDay, pe.Order, pe.TargetSets, pe.TargetReps,
		pe.RestSeconds, pe.SupersetGroup, pe.Note,
	)
	if err != nil {
		return fmt.Errorf("ошибка добавления упражнения в план: %w", err)
	}
	return nil
}
