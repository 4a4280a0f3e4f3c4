package models

import "time"

// LLMEndpoint категория вызова LLM для аудита
type LLMEndpoint string

const (
	EndpointPlanGenerate LLMEndpoint = "plan_generate"
	EndpointPlanOptimize LLMEndpoint = "plan_optimize"
	EndpointLiveGuidance LLMEndpoint = "live_guidance"
	EndpointOther        LLMEndpoint = "other"
)

// LLMAuditEntry неизменяемая запись об одном вызове LLM
type LLMAuditEntry struct {
	ID           int64       `json:"id"`
	UserID       *int64      `json:"user_id,omitempty"`
	Endpoint     LLMEndpoint `json:"endpoint"`
	Model        string      `json:"model"`
	TokensIn     int         `json:"tokens_in"`
	TokensOut    int         `json:"tokens_out"`
	CostEUR      float64     `json:"cost_eur"`
	Success      bool        `json:"success"`
	IsRetry      bool        `json:"is_retry"`
	ErrorMessage string      `json:"error_message"`
	CreatedAt    time.Time   `json:"created_at"`
}
