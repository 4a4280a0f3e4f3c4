package ai

// Provider тип AI провайдера
type Provider string

const (
	ProviderOllama     Provider = "ollama"
	ProviderOpenRouter Provider = "openrouter"
)

// Модели по умолчанию
const (
	DefaultOllamaModel     = "gemma2:9b-instruct-q4_K_M"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"
)

// GetProviderName возвращает название провайдера
func GetProviderName(p Provider) string {
	switch p {
	case ProviderOllama:
		return "Ollama (локальный)"
	case ProviderOpenRouter:
		return "OpenRouter"
	default:
		return string(p)
	}
}
