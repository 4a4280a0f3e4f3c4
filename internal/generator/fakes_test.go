package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"liftplan/clients/ai"
	"liftplan/internal/models"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

var catalogGroups = []struct {
	group models.MuscleGroup
	names []string
}{
	{models.MuscleChest, []string{"Bench Press", "Incline Dumbbell Press", "Dumbbell Fly", "Cable Crossover", "Dips", "Push-up"}},
	{models.MuscleShoulders, []string{"Overhead Press", "Dumbbell Lateral Raise", "Arnold Press", "Cable Lateral Raise"}},
	{models.MuscleTriceps, []string{"Triceps Pushdown", "Skull Crusher", "Overhead Triceps Extension", "Close-Grip Bench Press"}},
	{models.MuscleBack, []string{"Barbell Row", "Seated Cable Row", "One-Arm Dumbbell Row", "T-Bar Row"}},
	{models.MuscleLats, []string{"Pull-up", "Lat Pulldown", "Chin-up", "Straight-Arm Pulldown"}},
	{models.MuscleRearDelts, []string{"Face Pull", "Reverse Dumbbell Fly"}},
	{models.MuscleBiceps, []string{"Barbell Curl", "Hammer Curl", "Incline Dumbbell Curl", "Cable Curl"}},
	{models.MuscleQuads, []string{"Back Squat", "Front Squat", "Leg Press", "Bulgarian Split Squat", "Leg Extension"}},
	{models.MuscleHamstrings, []string{"Romanian Deadlift", "Lying Leg Curl"}},
	{models.MuscleGlutes, []string{"Hip Thrust"}},
	{models.MuscleCalves, []string{"Standing Calf Raise"}},
	{models.MuscleAbs, []string{"Hanging Leg Raise", "Cable Crunch", "Plank"}},
}

// testExercises 40 упражнений; "Sled Push" требует оборудования, которого нет у пользователя
func testExercises() []models.Exercise {
	var out []models.Exercise
	id := int64(1)
	for _, g := range catalogGroups {
		for _, n := range g.names {
			out = append(out, models.Exercise{ID: id, Name: n, MuscleGroup: g.group, WeightType: models.WeightTotal})
			id++
		}
	}
	out = append(out, models.Exercise{
		ID: id, Name: "Sled Push", MuscleGroup: models.MuscleQuads,
		RequiredEquipment: []models.Equipment{"sled"},
	})
	return out
}

type fakeCatalog struct {
	exercises      []models.Exercise
	equipment      map[int64]models.EquipmentSet
	equipmentCalls int
	exactCalls     int
	ciCalls        int
	err            error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		exercises: testExercises(),
		equipment: map[int64]models.EquipmentSet{
			1: models.NewEquipmentSet(models.EquipmentBarbell, models.EquipmentDumbbells, models.EquipmentCable),
		},
	}
}

func (f *fakeCatalog) UserEquipment(_ context.Context, userID int64) (models.EquipmentSet, error) {
	f.equipmentCalls++
	if f.err != nil {
		return nil, f.err
	}
	set, ok := f.equipment[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return set, nil
}

func (f *fakeCatalog) ListAvailableExercises(_ context.Context, inv models.EquipmentSet) ([]models.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Exercise
	for _, e := range f.exercises {
		if e.AvailableWith(inv) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ResolveExercisesByName(_ context.Context, names []string) (map[string]models.Exercise, error) {
	f.exactCalls++
	out := map[string]models.Exercise{}
	for _, n := range names {
		for _, e := range f.exercises {
			if e.Name == n {
				out[n] = e
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) ResolveExercisesCaseInsensitive(_ context.Context, names []string) (map[string]models.Exercise, error) {
	f.ciCalls++
	out := map[string]models.Exercise{}
	for _, n := range names {
		for _, e := range f.exercises {
			if models.NormalizeName(e.Name) == models.NormalizeName(n) {
				out[models.NormalizeName(n)] = e
			}
		}
	}
	return out, nil
}

type fakeHistory struct {
	sets []models.SetRecord
	bw   *float64
}

func (f *fakeHistory) ListNonWarmupSetsInWindow(context.Context, int64, int) ([]models.SetRecord, error) {
	return f.sets, nil
}

func (f *fakeHistory) LatestBodyweight(context.Context, int64) (*float64, error) {
	return f.bw, nil
}

// busyHistory 20 тренировок за 30 дней, ноги почти не тренируются
func busyHistory() *fakeHistory {
	ex := map[string]models.Exercise{}
	for _, e := range testExercises() {
		ex[e.Name] = e
	}
	reps, rpe := 8, 8.0
	var sets []models.SetRecord
	for i := 0; i < 20; i++ {
		date := testNow.AddDate(0, 0, -i*3/2)
		names := []string{"Bench Press", "Barbell Row", "Overhead Press", "Lat Pulldown"}
		if i%5 == 0 {
			names = append(names, "Back Squat")
		}
		for _, n := range names {
			for k := 0; k < 3; k++ {
				sets = append(sets, models.SetRecord{
					SessionID: int64(i + 1), SessionDate: date, Exercise: ex[n],
					Weight: 60, Reps: &reps, RPE: &rpe,
				})
			}
		}
	}
	return &fakeHistory{sets: sets}
}

type fakePlans struct {
	plans     []models.Plan
	exercises []models.PlanExercise
	failOn    int // номер дня, на котором сохранение падает (с 1); ничего не сохраняется
}

func (f *fakePlans) SavePlanGroup(_ context.Context, days []models.PlanDay) ([]int64, error) {
	if f.failOn > 0 && f.failOn <= len(days) {
		return nil, fmt.Errorf("ошибка сохранения дня %d: %w", f.failOn, errors.New("connection reset"))
	}
	ids := make([]int64, 0, len(days))
	for _, d := range days {
		d.Plan.ID = int64(100 + len(f.plans))
		f.plans = append(f.plans, d.Plan)
		for _, pe := range d.Exercises {
			pe.PlanID = d.Plan.ID
			f.exercises = append(f.exercises, pe)
		}
		ids = append(ids, d.Plan.ID)
	}
	return ids, nil
}

type fakeAudit struct {
	entries []models.LLMAuditEntry
	err     error
}

func (f *fakeAudit) RecordLLMCall(_ context.Context, e *models.LLMAuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

// scriptedBackend отвечает заранее заданными ответами по очереди
type scriptedBackend struct {
	provider ai.Provider
	replies  []any // string - содержимое ответа, error - ошибка транспорта
	requests []ai.BackendRequest
}

func (b *scriptedBackend) Provider() ai.Provider { return b.provider }
func (b *scriptedBackend) Model() string         { return string(b.provider) + "-model" }

func (b *scriptedBackend) Chat(_ context.Context, req ai.BackendRequest) (*ai.BackendResponse, error) {
	b.requests = append(b.requests, req)
	i := len(b.requests) - 1
	if i >= len(b.replies) {
		return nil, fmt.Errorf("unexpected call %d", i+1)
	}
	switch r := b.replies[i].(type) {
	case error:
		return nil, r
	case string:
		return &ai.BackendResponse{Content: r, PromptTokens: 2000, CompletionTokens: 900}, nil
	}
	panic("bad reply")
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func session(day string, names ...string) map[string]any {
	var exercises []any
	for i, n := range names {
		exercises = append(exercises, map[string]any{
			"order": i + 1, "exercise_name": n, "sets": 3, "reps": "8-10", "rest_seconds": 90,
		})
	}
	return map[string]any{"day_name": day, "exercises": exercises}
}

func planJSON(t *testing.T, name string, sessions ...map[string]any) string {
	t.Helper()
	var s []any
	for _, x := range sessions {
		s = append(s, x)
	}
	return toJSON(t, map[string]any{
		"plan_name":   name,
		"description": "Three-day split focused on balanced hypertrophy.",
		"sessions":    s,
	})
}

func threeSplit(t *testing.T, name string, invented ...string) string {
	t.Helper()
	day1 := []string{"Bench Press", "Incline Dumbbell Press", "Overhead Press", "Dumbbell Lateral Raise", "Triceps Pushdown", "Skull Crusher"}
	day2 := []string{"Barbell Row", "Lat Pulldown", "Seated Cable Row", "Face Pull", "Barbell Curl", "Hammer Curl"}
	day3 := []string{"Back Squat", "Romanian Deadlift", "Leg Press", "Lying Leg Curl", "Standing Calf Raise"}
	days := [][]string{day1, day2, day3}
	for i, bad := range invented {
		days[i][len(days[i])-1] = bad
	}
	return planJSON(t, name,
		session("Push", days[0]...), session("Pull", days[1]...), session("Legs", days[2]...))
}

type harness struct {
	catalog *fakeCatalog
	history *fakeHistory
	plans   *fakePlans
	audit   *fakeAudit
	local   *scriptedBackend
	remote  *scriptedBackend
	gen     *Generator
}

func newHarness(history *fakeHistory, localReplies, remoteReplies []any) *harness {
	h := &harness{
		catalog: newFakeCatalog(),
		history: history,
		plans:   &fakePlans{},
		audit:   &fakeAudit{},
		local:   &scriptedBackend{provider: ai.ProviderOllama, replies: localReplies},
		remote:  &scriptedBackend{provider: ai.ProviderOpenRouter, replies: remoteReplies},
	}
	client := ai.NewClient(h.local, h.remote, ai.ClientConfig{LocalEnabled: true}, nil)
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return testNow }
	h.gen = New(Deps{
		Catalog: h.catalog,
		History: h.history,
		Plans:   h.plans,
		Audit:   h.audit,
		LLM:     client,
	}, cfg)
	return h
}
