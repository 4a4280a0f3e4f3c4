package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"liftplan/internal/models"
)

// exerciseColumns колонки упражнения вместе с агрегированным списком оборудования
const exerciseColumns = `
	e.id, e.name, e.muscle_group, e.weight_type, e.movement_pattern,
	COALESCE((SELECT array_agg(ee.equipment ORDER BY ee.equipment)
	          FROM public.exercise_equipment ee WHERE ee.exercise_id = e.id), '{}'),
	e.bodyweight_factor, e.ref_1rm_beginner, e.ref_1rm_intermediate,
	e.ref_1rm_advanced, e.ref_1rm_elite, e.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner, extra ...any) (models.Exercise, error) {
	var (
		e         models.Exercise
		equipment []string
		factor    sql.NullFloat64
		refs      [4]sql.NullFloat64
	)
	dest := []any{
		&e.ID, &e.Name, &e.MuscleGroup, &e.WeightType, &e.MovementPattern,
		pq.Array(&equipment), &factor, &refs[0], &refs[1], &refs[2], &refs[3], &e.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return e, err
	}

	for _, eq := range equipment {
		e.RequiredEquipment = append(e.RequiredEquipment, models.Equipment(eq))
	}
	e.BodyweightFactor = nullFloat(factor)
	e.Reference1RM = models.Reference1RM{
		Beginner:     nullFloat(refs[0]),
		Intermediate: nullFloat(refs[1]),
		Advanced:     nullFloat(refs[2]),
		Elite:        nullFloat(refs[3]),
	}
	return e, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// ExerciseRepository каталог упражнений и оборудование пользователей
type ExerciseRepository struct {
	db *sql.DB
}

// NewExerciseRepository создаёт репозиторий упражнений
func NewExerciseRepository(db *sql.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// UserEquipment возвращает инвентарь пользователя; models.ErrUserNotFound, если пользователя нет
func (r *ExerciseRepository) UserEquipment(ctx context.Context, userID int64) (models.EquipmentSet, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM public.users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки пользователя: %w", err)
	}
	if !exists {
		return nil, models.ErrUserNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT equipment FROM public.user_equipment WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оборудования: %w", err)
	}
	defer rows.Close()

	set := make(models.EquipmentSet)
	for rows.Next() {
		var eq string
		if err := rows.Scan(&eq); err != nil {
			return nil, err
		}
		set[models.Equipment(eq)] = true
	}
	return set, rows.Err()
}

// ListAvailableExercises возвращает упражнения, отсортированные по названию, для которых
// в inventory есть всё нужное оборудование (или оно не требуется)
func (r *ExerciseRepository) ListAvailableExercises(ctx context.Context, inventory models.EquipmentSet) ([]models.Exercise, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM public.exercises e
		ORDER BY e.name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каталога: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения упражнения: %w", err)
		}
		if e.AvailableWith(inventory) {
			exercises = append(exercises, e)
		}
	}
	return exercises, rows.Err()
}

// ResolveExercisesByName ищет упражнения по точному названию одним запросом
func (r *ExerciseRepository) ResolveExercisesByName(ctx context.Context, names []string) (map[string]models.Exercise, error) {
	result := make(map[string]models.Exercise)
	if len(names) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM public.exercises e
		WHERE e.name = ANY($1)`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска упражнений: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения упражнения: %w", err)
		}
		result[e.Name] = e
	}
	return result, rows.Err()
}

// ResolveExercisesCaseInsensitive ищет упражнения без учёта регистра и крайних пробелов.
// Ключ результата - models.NormalizeName(название).
func (r *ExerciseRepository) ResolveExercisesCaseInsensitive(ctx context.Context, names []string) (map[string]models.Exercise, error) {
	result := make(map[string]models.Exercise)
	if len(names) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		k := models.NormalizeName(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM public.exercises e
		WHERE lower(trim(e.name)) = ANY($1)
		ORDER BY e.id`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска упражнений: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения упражнения: %w", err)
		}
		key := models.NormalizeName(e.Name)
		if _, dup := result[key]; !dup {
			result[key] = e
		}
	}
	return result, rows.Err()
}
