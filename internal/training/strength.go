package training

import (
	"math"
	"strings"

	"liftplan/internal/models"
)

const (
	// DefaultBodyweightKg used when the user never logged body weight
	DefaultBodyweightKg = 80.0
	// DefaultBodyweightFactor share of body weight moved when the catalog has no factor
	// and no keyword below matches
	DefaultBodyweightFactor = 0.65
	// FallbackRPE used for sets logged without RPE
	FallbackRPE = 7.0
)

// bodyweightFactors share of body weight moved by common bodyweight exercises.
// Matched by substring of the lower-cased exercise name; first match wins.
var bodyweightFactors = []struct {
	keyword string
	factor  float64
}{
	{"dip", 0.70},
	{"pull-up", 0.70},
	{"pullup", 0.70},
	{"chin-up", 0.70},
	{"klimmzug", 0.70},
	{"push-up", 0.64},
	{"liegestütz", 0.64},
	{"inverted row", 0.60},
	{"pistol", 0.70},
	{"lunge", 0.60},
	{"hanging leg raise", 0.35},
	{"sit-up", 0.35},
	{"crunch", 0.30},
	{"plank", 0.00},
	{"hold", 0.00},
}

// BodyweightFactor returns the exercise-specific bodyweight factor.
// Catalog value wins over the keyword table.
func BodyweightFactor(ex models.Exercise) float64 {
	if ex.BodyweightFactor != nil {
		return *ex.BodyweightFactor
	}
	name := strings.ToLower(ex.Name)
	for _, bf := range bodyweightFactors {
		if strings.Contains(name, bf.keyword) {
			return bf.factor
		}
	}
	return DefaultBodyweightFactor
}

// EffectiveWeight resolves the entered weight by the exercise weight type.
// TIME exercises carry no weight, 0 is returned.
func EffectiveWeight(ex models.Exercise, entered, bodyweight float64) float64 {
	switch ex.WeightType {
	case models.WeightPerSide:
		return round2(entered * 2)
	case models.WeightBodyweight:
		return round2(bodyweight*BodyweightFactor(ex) + entered)
	case models.WeightTime:
		return 0
	default:
		return round2(entered)
	}
}

// Epley formula: 1RM = weight * (1 + reps/30)
func Epley(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return round2(weight * (1 + float64(reps)/30))
}

// EstimateOneRM returns effective weight and estimated 1RM for one set.
// For TIME exercises the hold duration (reps as seconds) is the 1RM surrogate.
func EstimateOneRM(ex models.Exercise, entered float64, reps int, bodyweight float64) (effective, oneRM float64) {
	if ex.WeightType == models.WeightTime {
		return 0, float64(reps)
	}
	effective = EffectiveWeight(ex, entered, bodyweight)
	return effective, Epley(effective, reps)
}

// EffectiveReps scales reps by RPE/10; a missing RPE falls back to FallbackRPE
func EffectiveReps(reps int, rpe *float64) float64 {
	r := FallbackRPE
	if rpe != nil && *rpe > 0 {
		r = *rpe
	}
	return float64(reps) * r / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
