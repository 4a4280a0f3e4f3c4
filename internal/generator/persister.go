package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"liftplan/internal/logger"
	"liftplan/internal/models"
)

// Persister раскладывает план по дням: одна запись плана на день, общий group_id
type Persister struct {
	catalog CatalogReader
	plans   PlanWriter
	log     *logger.Logger
	newID   func() string
}

// NewPersister создаёт Persister
func NewPersister(catalog CatalogReader, plans PlanWriter, log *logger.Logger) *Persister {
	if log == nil {
		log = logger.Nop()
	}
	return &Persister{catalog: catalog, plans: plans, log: log, newID: uuid.NewString}
}

// PersistResult созданные планы и предупреждения
type PersistResult struct {
	PlanIDs  []int64
	GroupID  string
	Skipped  []string
	Warnings []string
}

// Persist сохраняет план. description - текст плана без сводки, summary - сводка макроцикла.
// allowed - каталог на момент генерации: упражнения вне его не пишутся.
// Все дни пишутся одной транзакцией: при ошибке PlanIDs пуст.
func (p *Persister) Persist(ctx context.Context, userID int64, draft *PlanDraft, description, summary string, allowed *Catalog) (*PersistResult, error) {
	res := &PersistResult{PlanIDs: []int64{}}

	resolved, err := p.resolveNames(ctx, draft)
	if err != nil {
		return res, err
	}

	var groupID, groupName *string
	if len(draft.Sessions) > 1 {
		id := p.newID()
		name := draft.PlanName
		groupID, groupName = &id, &name
	}

	days := make([]models.PlanDay, 0, len(draft.Sessions))
	for k, session := range draft.Sessions {
		day := session.Day(k)
		pd := models.PlanDay{Plan: models.Plan{
			UserID:        userID,
			Name:          fmt.Sprintf("%s - %s", draft.PlanName, day),
			Description:   sessionDescription(description, k, day, summary),
			GroupID:       groupID,
			GroupName:     groupName,
			GroupPosition: k,
		}}

		for i, ex := range session.Exercises {
			e, ok := resolved[ex.ExerciseName]
			if !ok || !allowedExercise(allowed, e) {
				res.Skipped = append(res.Skipped, ex.ExerciseName)
				continue
			}
			pd.Exercises = append(pd.Exercises, planExercise(ex, e, day, i))
		}
		days = append(days, pd)
	}

	if len(res.Skipped) > 0 {
		msg := fmt.Sprintf("%d exercise(s) could not be matched to the catalog and were skipped: %s",
			len(res.Skipped), strings.Join(res.Skipped, ", "))
		res.Warnings = append(res.Warnings, msg)
		p.log.Warn("упражнения не найдены в каталоге", "user_id", userID, "skipped", res.Skipped)
	}

	ids, err := p.plans.SavePlanGroup(ctx, days)
	if err != nil {
		return res, fmt.Errorf("ошибка сохранения плана: %w", err)
	}
	res.PlanIDs = ids
	if groupID != nil {
		res.GroupID = *groupID
	}
	return res, nil
}

func planExercise(ex ExerciseDraft, e models.Exercise, day string, i int) models.PlanExercise {
	pe := models.PlanExercise{
		ExerciseID:  e.ID,
		TrainingDay: day,
		Order:       int(ex.Order),
		TargetSets:  int(ex.Sets),
		TargetReps:  string(ex.Reps),
		RestSeconds: int(ex.RestSeconds),
	}
	if pe.Order <= 0 {
		pe.Order = i + 1
	}
	if pe.RestSeconds <= 0 {
		pe.RestSeconds = DefaultRestSeconds
	}
	if ex.SupersetGroup != nil {
		g := int(*ex.SupersetGroup)
		pe.SupersetGroup = &g
	}
	if note := strings.TrimSpace(ex.Notes); note != "" {
		pe.Note = &note
	}
	return pe
}

// resolveNames не больше двух чтений каталога: точное совпадение для всех названий
// и поиск без учёта регистра для оставшихся
func (p *Persister) resolveNames(ctx context.Context, draft *PlanDraft) (map[string]models.Exercise, error) {
	var names []string
	seen := map[string]bool{}
	for _, s := range draft.Sessions {
		for _, ex := range s.Exercises {
			if ex.ExerciseName == "" || seen[ex.ExerciseName] {
				continue
			}
			seen[ex.ExerciseName] = true
			names = append(names, ex.ExerciseName)
		}
	}

	resolved, err := p.catalog.ResolveExercisesByName(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска упражнений: %w", err)
	}

	var missing []string
	for _, n := range names {
		if _, ok := resolved[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	fuzzy, err := p.catalog.ResolveExercisesCaseInsensitive(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска упражнений: %w", err)
	}
	for _, n := range missing {
		if e, ok := fuzzy[models.NormalizeName(n)]; ok {
			resolved[n] = e
		}
	}
	return resolved, nil
}

func allowedExercise(allowed *Catalog, e models.Exercise) bool {
	if allowed == nil {
		return true
	}
	_, ok := allowed.Lookup(e.Name)
	return ok
}

func sessionDescription(description string, k int, day, summary string) string {
	var sb strings.Builder
	if d := strings.TrimSpace(description); d != "" {
		sb.WriteString(d + "\n")
	}
	sb.WriteString(fmt.Sprintf("Training day %d: %s", k+1, day))
	if summary != "" {
		sb.WriteString("\n\n" + summary)
	}
	return sb.String()
}
