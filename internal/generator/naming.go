package generator

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"liftplan/internal/training"
)

const minPlanNameLen = 10

// genericPlanNames названия, которые LLM выдаёт по умолчанию
var genericPlanNames = map[string]bool{
	"training plan":     true,
	"trainingsplan":     true,
	"workout plan":      true,
	"workout":           true,
	"my training plan":  true,
	"my workout plan":   true,
	"new training plan": true,
	"gym plan":          true,
	"full body":         true,
	"full body plan":    true,
	"full-body plan":    true,
	"ganzkoerper":       true,
	"ganzkörper":        true,
	"2-split":           true,
	"2er-split":         true,
	"3-split":           true,
	"3er-split":         true,
	"4-split":           true,
	"4er-split":         true,
	"upper lower":       true,
	"upper/lower":       true,
	"upper-lower":       true,
	"upper lower split": true,
	"push pull legs":    true,
	"push/pull/legs":    true,
	"push-pull-legs":    true,
	"ppl":               true,
	"ppl split":         true,
	"hypertrophy plan":  true,
	"strength plan":     true,
}

// NeedsNameFallback пустое, короче 10 символов или шаблонное название
func NeedsNameFallback(name string) bool {
	n := strings.TrimSpace(name)
	if utf8.RuneCountInString(n) < minPlanNameLen {
		return true
	}
	return genericPlanNames[strings.ToLower(n)]
}

// FallbackPlanName "{Profile}-{PLANTYPE} – Focus {первая слабость} (DD.MM.YYYY)"
func FallbackPlanName(profile training.TargetProfile, planType string, weaknesses []training.Weakness, now time.Time) string {
	focus := "Balance"
	if len(weaknesses) > 0 && weaknesses[0].Kind != training.WeaknessNoData {
		focus = weaknesses[0].Subject
	} else if len(weaknesses) > 0 {
		focus = "Fundamentals"
	}
	return fmt.Sprintf("%s-%s – Focus %s (%s)",
		profile.Label(), strings.ToUpper(planType), focus, now.Format("02.01.2006"))
}
