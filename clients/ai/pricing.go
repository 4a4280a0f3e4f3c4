package ai

import "math"

// Rate цена в евро за миллион токенов
type Rate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Pricing тарифы по моделям
type Pricing map[string]Rate

// DefaultPricing тарифы OpenRouter, пересчитанные в EUR
var DefaultPricing = Pricing{
	"openai/gpt-4o-mini":                       {InputPerMillion: 0.14, OutputPerMillion: 0.55},
	"openai/gpt-4.1-mini":                      {InputPerMillion: 0.37, OutputPerMillion: 1.47},
	"google/gemini-2.5-flash-lite":             {InputPerMillion: 0.09, OutputPerMillion: 0.37},
	"google/gemini-2.5-flash":                  {InputPerMillion: 0.28, OutputPerMillion: 2.30},
	"meta-llama/llama-3.3-70b-instruct":        {InputPerMillion: 0.12, OutputPerMillion: 0.28},
	"mistralai/mistral-small-3.2-24b-instruct": {InputPerMillion: 0.05, OutputPerMillion: 0.18},
}

// fallbackRate для неизвестных моделей берём заведомо не заниженную оценку
var fallbackRate = Rate{InputPerMillion: 0.50, OutputPerMillion: 1.50}

// RateFor тариф первой известной модели из списка, иначе fallbackRate.
// OpenRouter может вернуть уточнённый id (с датой), поэтому вызывающий передаёт
// и модель из ответа, и запрошенную.
func (p Pricing) RateFor(candidates ...string) Rate {
	for _, m := range candidates {
		if r, ok := p[m]; ok {
			return r
		}
	}
	return fallbackRate
}

// Cost стоимость вызова в евро, округлённая до 6 знаков
func (p Pricing) Cost(u Usage, candidates ...string) float64 {
	r := p.RateFor(candidates...)
	cost := float64(u.PromptTokens)/1e6*r.InputPerMillion + float64(u.CompletionTokens)/1e6*r.OutputPerMillion
	return math.Round(cost*1e6) / 1e6
}
