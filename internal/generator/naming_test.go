package generator

import (
	"testing"

	"liftplan/internal/training"
)

func TestNeedsNameFallback(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"Plan A", true},
		{"Short one", true},
		{"Training Plan", true},
		{"  training plan ", true},
		{"3-split", true},
		{"Push Pull Legs", true},
		{"Upper Lower Split", true},
		{"Hypertrophy Block Autumn", false},
		{"Posterior Chain Focus 3-Split", false},
	}
	for _, tt := range tests {
		if got := NeedsNameFallback(tt.name); got != tt.want {
			t.Errorf("NeedsNameFallback(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFallbackPlanName(t *testing.T) {
	tests := []struct {
		name       string
		profile    training.TargetProfile
		planType   string
		weaknesses []training.Weakness
		want       string
	}{
		{
			name:     "first weakness",
			profile:  training.ProfileStrength,
			planType: "3er-split",
			weaknesses: []training.Weakness{
				{Kind: training.WeaknessUndertrained, Subject: "rear delts"},
				{Kind: training.WeaknessStale, Subject: "Back Squat"},
			},
			want: "Strength-3ER-SPLIT – Focus rear delts (19.10.2026)",
		},
		{
			name:       "no data",
			profile:    training.ProfileDefinition,
			planType:   "ppl",
			weaknesses: []training.Weakness{{Kind: training.WeaknessNoData, Subject: training.NoDataWeakness}},
			want:       "Definition-PPL – Focus Fundamentals (19.10.2026)",
		},
		{
			name:     "no weaknesses",
			profile:  training.ProfileHypertrophy,
			planType: "upper-lower",
			want:     "Hypertrophy-UPPER-LOWER – Focus Balance (19.10.2026)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackPlanName(tt.profile, tt.planType, tt.weaknesses, testNow)
			if got != tt.want {
				t.Errorf("FallbackPlanName() = %q, want %q", got, tt.want)
			}
			if NeedsNameFallback(got) {
				t.Errorf("fallback name %q would be replaced again", got)
			}
		})
	}
}
