package training

import (
	"context"
	"fmt"
	"sort"
	"time"

	"liftplan/internal/models"
)

const (
	// DefaultWindowDays analysis window when the caller passes 0
	DefaultWindowDays = 30
	// UndertrainedShare groups below this share of the cross-group mean are weak
	UndertrainedShare = 0.60
	// StaleAfter exercises not trained for this long are stale
	StaleAfter = 14 * 24 * time.Hour
	// MaxWeaknesses carried into the prompt
	MaxWeaknesses = 5

	PushPullBalancedMin = 0.85
	PushPullBalancedMax = 1.15

	// NoDataWeakness sentinel for an empty history
	NoDataWeakness = "no training data"
)

// HistoryReader is the read side of training history
type HistoryReader interface {
	ListNonWarmupSetsInWindow(ctx context.Context, userID int64, days int) ([]models.SetRecord, error)
	LatestBodyweight(ctx context.Context, userID int64) (*float64, error)
}

// MuscleGroupStats aggregated volume of one muscle group
type MuscleGroupStats struct {
	MuscleGroup   models.MuscleGroup `json:"muscle_group"`
	EffectiveReps float64            `json:"effective_reps"`
	AvgRPE        float64            `json:"avg_rpe"`
	Sets          int                `json:"sets"`
	LastTrained   time.Time          `json:"last_trained"`

	rpeSum float64
}

// ProgressPoint one observation of an exercise
type ProgressPoint struct {
	Date   time.Time `json:"date"`
	OneRM  float64   `json:"one_rm"`
	Weight float64   `json:"weight"`
	Reps   int       `json:"reps"`
	RPE    float64   `json:"rpe"`
}

// ExerciseProgress time-ordered 1RM history of one exercise
type ExerciseProgress struct {
	Exercise    string             `json:"exercise"`
	MuscleGroup models.MuscleGroup `json:"muscle_group"`
	Points      []ProgressPoint    `json:"points"`
	Trend       float64            `json:"trend"`
	LastTrained time.Time          `json:"last_trained"`
}

// PushPullBalance ratio of push to pull effective reps
type PushPullBalance struct {
	PushReps float64 `json:"push_reps"`
	PullReps float64 `json:"pull_reps"`
	Ratio    float64 `json:"ratio"`
	Balanced bool    `json:"balanced"`
	Status   string  `json:"status"` // balanced, push_heavy, pull_heavy, no_data
}

// WeaknessKind category of a detected weakness
type WeaknessKind string

const (
	WeaknessUndertrained WeaknessKind = "undertrained"
	WeaknessStale        WeaknessKind = "stale"
	WeaknessNoData       WeaknessKind = "no_data"
)

// Weakness one finding of the weakness heuristic
type Weakness struct {
	Kind        WeaknessKind       `json:"kind"`
	Subject     string             `json:"subject"`
	MuscleGroup models.MuscleGroup `json:"muscle_group,omitempty"`
	Detail      string             `json:"detail"`
}

func (w Weakness) String() string {
	switch w.Kind {
	case WeaknessNoData:
		return NoDataWeakness
	case WeaknessUndertrained:
		return fmt.Sprintf("%s undertrained (%s)", w.Subject, w.Detail)
	default:
		return fmt.Sprintf("%s not trained recently (%s)", w.Subject, w.Detail)
	}
}

// Analysis metrics bundle produced from the training history
type Analysis struct {
	UserID          int64              `json:"user_id"`
	WindowDays      int                `json:"window_days"`
	BodyweightKg    float64            `json:"bodyweight_kg"`
	Sessions        int                `json:"sessions"`
	Sets            int                `json:"sets"`
	SessionsPerWeek float64            `json:"sessions_per_week"`
	MuscleGroups    []MuscleGroupStats `json:"muscle_groups"` // sorted by effective reps desc
	Exercises       []ExerciseProgress `json:"exercises"`
	PushPull        PushPullBalance    `json:"push_pull"`
	Weaknesses      []Weakness         `json:"weaknesses"`
}

// HasData reports whether any set was analyzed
func (a *Analysis) HasData() bool {
	return a.Sets > 0
}

// TopMuscleGroups first n groups by volume
func (a *Analysis) TopMuscleGroups(n int) []MuscleGroupStats {
	if n > len(a.MuscleGroups) {
		n = len(a.MuscleGroups)
	}
	return a.MuscleGroups[:n]
}

// Analyzer turns raw set history into an Analysis
type Analyzer struct {
	history HistoryReader
	now     func() time.Time
}

// NewAnalyzer creates an analyzer reading from history
func NewAnalyzer(history HistoryReader) *Analyzer {
	return &Analyzer{history: history, now: time.Now}
}

// WithClock overrides the clock, used by tests
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze reads the window and computes the metrics bundle
func (a *Analyzer) Analyze(ctx context.Context, userID int64, windowDays int) (*Analysis, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	sets, err := a.history.ListNonWarmupSetsInWindow(ctx, userID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("read training history: %w", err)
	}
	bw, err := a.history.LatestBodyweight(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read bodyweight: %w", err)
	}
	bodyweight := DefaultBodyweightKg
	if bw != nil && *bw > 0 {
		bodyweight = *bw
	}

	return Compute(userID, windowDays, bodyweight, sets, a.now()), nil
}

// Compute is the pure part of Analyze
func Compute(userID int64, windowDays int, bodyweight float64, sets []models.SetRecord, now time.Time) *Analysis {
	res := &Analysis{
		UserID:       userID,
		WindowDays:   windowDays,
		BodyweightKg: bodyweight,
	}

	groups := map[models.MuscleGroup]*MuscleGroupStats{}
	exercises := map[string]*ExerciseProgress{}
	sessions := map[string]bool{}

	ordered := make([]models.SetRecord, len(sets))
	copy(ordered, sets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SessionDate.Before(ordered[j].SessionDate)
	})

	for _, s := range ordered {
		if s.IsWarmup || s.IsDeload || s.Reps == nil || *s.Reps <= 0 {
			continue
		}
		reps := *s.Reps
		rpe := FallbackRPE
		if s.RPE != nil && *s.RPE > 0 {
			rpe = *s.RPE
		}

		res.Sets++
		sessions[sessionKey(s)] = true

		mg := s.Exercise.MuscleGroup
		st, ok := groups[mg]
		if !ok {
			st = &MuscleGroupStats{MuscleGroup: mg}
			groups[mg] = st
		}
		st.EffectiveReps += EffectiveReps(reps, s.RPE)
		st.rpeSum += rpe
		st.Sets++
		if s.SessionDate.After(st.LastTrained) {
			st.LastTrained = s.SessionDate
		}

		effective, oneRM := EstimateOneRM(s.Exercise, s.Weight, reps, bodyweight)
		ep, ok := exercises[s.Exercise.Name]
		if !ok {
			ep = &ExerciseProgress{Exercise: s.Exercise.Name, MuscleGroup: mg}
			exercises[s.Exercise.Name] = ep
		}
		ep.Points = append(ep.Points, ProgressPoint{
			Date:   s.SessionDate,
			OneRM:  oneRM,
			Weight: effective,
			Reps:   reps,
			RPE:    rpe,
		})
		if s.SessionDate.After(ep.LastTrained) {
			ep.LastTrained = s.SessionDate
		}
	}

	if res.Sets == 0 {
		res.MuscleGroups = []MuscleGroupStats{}
		res.Exercises = []ExerciseProgress{}
		res.PushPull = PushPullBalance{Status: "no_data"}
		res.Weaknesses = []Weakness{{Kind: WeaknessNoData, Subject: NoDataWeakness}}
		return res
	}

	res.Sessions = len(sessions)
	res.SessionsPerWeek = round1(float64(res.Sessions) / (float64(windowDays) / 7))

	for _, st := range groups {
		st.AvgRPE = round2(st.rpeSum / float64(st.Sets))
		st.EffectiveReps = round2(st.EffectiveReps)
		res.MuscleGroups = append(res.MuscleGroups, *st)
	}
	sort.Slice(res.MuscleGroups, func(i, j int) bool {
		if res.MuscleGroups[i].EffectiveReps != res.MuscleGroups[j].EffectiveReps {
			return res.MuscleGroups[i].EffectiveReps > res.MuscleGroups[j].EffectiveReps
		}
		return res.MuscleGroups[i].MuscleGroup < res.MuscleGroups[j].MuscleGroup
	})

	for _, ep := range exercises {
		first, last := ep.Points[0], ep.Points[len(ep.Points)-1]
		ep.Trend = round2(last.OneRM - first.OneRM)
		res.Exercises = append(res.Exercises, *ep)
	}
	sort.Slice(res.Exercises, func(i, j int) bool {
		return res.Exercises[i].Exercise < res.Exercises[j].Exercise
	})

	res.PushPull = pushPull(res.MuscleGroups)
	res.Weaknesses = weaknesses(res.MuscleGroups, res.Exercises, now)
	return res
}

func sessionKey(s models.SetRecord) string {
	if s.SessionID != 0 {
		return fmt.Sprintf("id:%d", s.SessionID)
	}
	return s.SessionDate.Format("2006-01-02")
}

func pushPull(groups []MuscleGroupStats) PushPullBalance {
	var b PushPullBalance
	for _, g := range groups {
		switch {
		case models.PushMuscleGroups[g.MuscleGroup]:
			b.PushReps += g.EffectiveReps
		case models.PullMuscleGroups[g.MuscleGroup]:
			b.PullReps += g.EffectiveReps
		}
	}
	b.PushReps = round2(b.PushReps)
	b.PullReps = round2(b.PullReps)

	switch {
	case b.PushReps == 0 && b.PullReps == 0:
		b.Status = "no_data"
		return b
	case b.PullReps == 0:
		b.Status = "push_heavy"
		return b
	}

	b.Ratio = round2(b.PushReps / b.PullReps)
	switch {
	case b.Ratio < PushPullBalancedMin:
		b.Status = "pull_heavy"
	case b.Ratio > PushPullBalancedMax:
		b.Status = "push_heavy"
	default:
		b.Status = "balanced"
		b.Balanced = true
	}
	return b
}

func weaknesses(groups []MuscleGroupStats, exercises []ExerciseProgress, now time.Time) []Weakness {
	var out []Weakness

	var total float64
	for _, g := range groups {
		total += g.EffectiveReps
	}
	mean := total / float64(len(groups))

	// weakest groups first
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if mean > 0 && g.EffectiveReps < UndertrainedShare*mean {
			out = append(out, Weakness{
				Kind:        WeaknessUndertrained,
				Subject:     g.MuscleGroup.Label(),
				MuscleGroup: g.MuscleGroup,
				Detail:      fmt.Sprintf("%.0f effective reps, %.0f%% of mean", g.EffectiveReps, g.EffectiveReps/mean*100),
			})
		}
	}

	stale := make([]ExerciseProgress, 0)
	for _, ex := range exercises {
		if now.Sub(ex.LastTrained) > StaleAfter {
			stale = append(stale, ex)
		}
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].LastTrained.Before(stale[j].LastTrained)
	})
	for _, ex := range stale {
		days := int(now.Sub(ex.LastTrained).Hours() / 24)
		out = append(out, Weakness{
			Kind:        WeaknessStale,
			Subject:     ex.Exercise,
			MuscleGroup: ex.MuscleGroup,
			Detail:      fmt.Sprintf("last trained %d days ago", days),
		})
	}

	if len(out) > MaxWeaknesses {
		out = out[:MaxWeaknesses]
	}
	if out == nil {
		out = []Weakness{}
	}
	return out
}
