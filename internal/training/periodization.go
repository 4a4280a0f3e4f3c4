package training

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TargetProfile training goal of the macrocycle
type TargetProfile string

const (
	ProfileStrength    TargetProfile = "strength"
	ProfileHypertrophy TargetProfile = "hypertrophy"
	ProfileDefinition  TargetProfile = "definition"
)

// Valid reports whether p is a known profile
func (p TargetProfile) Valid() bool {
	switch p {
	case ProfileStrength, ProfileHypertrophy, ProfileDefinition:
		return true
	}
	return false
}

// Label capitalized profile name
func (p TargetProfile) Label() string {
	switch p {
	case ProfileStrength:
		return "Strength"
	case ProfileDefinition:
		return "Definition"
	default:
		return "Hypertrophy"
	}
}

// Scheme periodization model
type Scheme string

const (
	SchemeLinear     Scheme = "linear"
	SchemeUndulating Scheme = "undulating"
	SchemeBlock      Scheme = "block"
)

// Valid reports whether s is a known scheme
func (s Scheme) Valid() bool {
	switch s {
	case SchemeLinear, SchemeUndulating, SchemeBlock:
		return true
	}
	return false
}

const (
	DefaultDurationWeeks = 12
	WeeksPerBlock        = 4
	DeloadVolume         = 0.8
	MaxTargetRPE         = 9.0
	MinTargetRPE         = 6.5
)

// DefaultDeloadWeeks every fourth week of a 12-week cycle
var DefaultDeloadWeeks = []int{4, 8, 12}

// baseRPE starting intensity per profile
var baseRPE = map[TargetProfile]float64{
	ProfileStrength:    8.0,
	ProfileHypertrophy: 7.5,
	ProfileDefinition:  7.0,
}

var (
	undulatingShift = []float64{0, 0.3, -0.1}
	blockShift      = []float64{-0.2, 0.1, 0.25}
)

// MacroWeek one week of the macrocycle
type MacroWeek struct {
	Week               int     `json:"week"`
	Block              int     `json:"block"`
	PositionInBlock    int     `json:"position_in_block"`
	IsDeload           bool    `json:"is_deload"`
	VolumeMultiplier   float64 `json:"volume_multiplier"`
	IntensityTargetRPE float64 `json:"intensity_target_rpe"`
}

// MicrocycleTemplate rep and RPE ranges for a regular week
type MicrocycleTemplate struct {
	RepMin int     `json:"rep_min"`
	RepMax int     `json:"rep_max"`
	RPEMin float64 `json:"rpe_min"`
	RPEMax float64 `json:"rpe_max"`
}

func (m MicrocycleTemplate) String() string {
	return fmt.Sprintf("%d-%d reps @ RPE %s-%s", m.RepMin, m.RepMax, fmtNum(m.RPEMin), fmtNum(m.RPEMax))
}

var microcycles = map[TargetProfile]MicrocycleTemplate{
	ProfileStrength:    {RepMin: 3, RepMax: 6, RPEMin: 7.5, RPEMax: 9},
	ProfileHypertrophy: {RepMin: 6, RepMax: 12, RPEMin: 7, RPEMax: 8.5},
	ProfileDefinition:  {RepMin: 10, RepMax: 15, RPEMin: 6.5, RPEMax: 8},
}

// MicrocycleFor rep and RPE ranges of a profile
func MicrocycleFor(p TargetProfile) MicrocycleTemplate {
	if !p.Valid() {
		p = ProfileHypertrophy
	}
	return microcycles[p]
}

// ProgressionStrategy coaching rules; rendered, never evaluated
type ProgressionStrategy struct {
	AddSet      string `json:"add_set"`
	AddWeight   string `json:"add_weight"`
	DeloadReset string `json:"deload_reset"`
}

// Periodization full macrocycle attached to a generated plan
type Periodization struct {
	TargetProfile       TargetProfile       `json:"target_profile"`
	Scheme              Scheme              `json:"periodization"`
	DurationWeeks       int                 `json:"duration_weeks"`
	DeloadWeeks         []int               `json:"deload_weeks"`
	Weeks               []MacroWeek         `json:"weeks"`
	MicrocycleTemplate  MicrocycleTemplate  `json:"microcycle_template"`
	ProgressionStrategy ProgressionStrategy `json:"progression_strategy"`
}

// Synthesize builds the macrocycle. Zero duration or nil deload weeks fall back to the 12-week defaults.
func Synthesize(profile TargetProfile, scheme Scheme, durationWeeks int, deloadWeeks []int) Periodization {
	if !profile.Valid() {
		profile = ProfileHypertrophy
	}
	if !scheme.Valid() {
		scheme = SchemeLinear
	}
	if durationWeeks <= 0 {
		durationWeeks = DefaultDurationWeeks
	}
	if deloadWeeks == nil {
		deloadWeeks = []int{}
		for _, w := range DefaultDeloadWeeks {
			if w <= durationWeeks {
				deloadWeeks = append(deloadWeeks, w)
			}
		}
	}

	deload := make(map[int]bool, len(deloadWeeks))
	for _, w := range deloadWeeks {
		deload[w] = true
	}

	base := baseRPE[profile]
	p := Periodization{
		TargetProfile:       profile,
		Scheme:              scheme,
		DurationWeeks:       durationWeeks,
		DeloadWeeks:         deloadWeeks,
		Weeks:               make([]MacroWeek, 0, durationWeeks),
		MicrocycleTemplate:  microcycles[profile],
		ProgressionStrategy: progressionFor(profile),
	}

	for w := 1; w <= durationWeeks; w++ {
		block := (w + WeeksPerBlock - 1) / WeeksPerBlock
		pos := (w-1)%WeeksPerBlock + 1
		mw := MacroWeek{Week: w, Block: block, PositionInBlock: pos, IsDeload: deload[w]}

		if mw.IsDeload {
			mw.VolumeMultiplier = DeloadVolume
			mw.IntensityTargetRPE = math.Max(base-1.0, MinTargetRPE)
		} else {
			mw.VolumeMultiplier = round2(1.0 + 0.05*float64(block-1) + 0.02*float64(pos-1))
			mw.IntensityTargetRPE = weekRPE(scheme, base, block, pos)
		}
		mw.IntensityTargetRPE = round2(mw.IntensityTargetRPE)
		p.Weeks = append(p.Weeks, mw)
	}
	return p
}

func weekRPE(scheme Scheme, base float64, block, pos int) float64 {
	switch scheme {
	case SchemeUndulating:
		rpe := base + undulatingShift[(pos-1)%len(undulatingShift)]
		return math.Min(math.Max(rpe, MinTargetRPE), MaxTargetRPE)
	case SchemeBlock:
		i := block - 1
		if i >= len(blockShift) {
			i = len(blockShift) - 1
		}
		return math.Min(base+blockShift[i], MaxTargetRPE)
	default:
		rpe := base + 0.2*float64(pos-1) + 0.1*float64(block-1)
		return math.Min(rpe, MaxTargetRPE)
	}
}

func progressionFor(profile TargetProfile) ProgressionStrategy {
	m := microcycles[profile]
	return ProgressionStrategy{
		AddSet: fmt.Sprintf("Add one set to an exercise when all sets reached %d reps at or below RPE %s for two sessions in a row.",
			m.RepMax, fmtNum(m.RPEMin)),
		AddWeight: fmt.Sprintf("Add the smallest available increment (2.5 kg barbell, 1-2 kg dumbbells) once the top of the %d-%d rep range is reached at RPE %s or lower; drop back to %d reps.",
			m.RepMin, m.RepMax, fmtNum(m.RPEMax), m.RepMin),
		DeloadReset: "After a deload week return to the pre-deload set count and start weights at about 95% of the last working weight.",
	}
}

// Summary human-readable rendering appended to the plan description
func (p Periodization) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Macrocycle: %d weeks, %s, %s periodization\n", p.DurationWeeks, p.TargetProfile, p.Scheme))
	deloads := make([]string, len(p.DeloadWeeks))
	for i, w := range p.DeloadWeeks {
		deloads[i] = strconv.Itoa(w)
	}
	sb.WriteString("Deload weeks: " + strings.Join(deloads, ", ") + "\n")

	for _, w := range p.Weeks {
		sb.WriteString(fmt.Sprintf("Week %d (block %d): volume x%.2f, target RPE %s", w.Week, w.Block, w.VolumeMultiplier, fmtNum(w.IntensityTargetRPE)))
		if w.IsDeload {
			sb.WriteString(" - deload")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Microcycle: " + p.MicrocycleTemplate.String() + "\n")
	sb.WriteString("Progression:\n")
	sb.WriteString("- " + p.ProgressionStrategy.AddSet + "\n")
	sb.WriteString("- " + p.ProgressionStrategy.AddWeight + "\n")
	sb.WriteString("- " + p.ProgressionStrategy.DeloadReset)

	return sb.String()
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}
