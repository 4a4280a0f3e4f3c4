package ai

// DefaultMaxTokens для неизвестного типа плана
const DefaultMaxTokens = 3000

// planTypeTokens лимит ответа по типу плана: больше дней - больше JSON
var planTypeTokens = map[string]int{
	"ganzkoerper":    2000,
	"2er-split":      2500,
	"upper-lower":    2800,
	"3er-split":      3500,
	"4er-split":      4000,
	"ppl":            4500,
	"push-pull-legs": 4500,
}

// MaxTokensForPlanType лимит токенов для типа плана, всегда в [2000, 5000]
func MaxTokensForPlanType(planType string) int {
	if n, ok := planTypeTokens[planType]; ok {
		return clampTokens(n)
	}
	return DefaultMaxTokens
}
