package generator

import (
	"context"

	"liftplan/clients/ai"
	"liftplan/internal/logger"
	"liftplan/internal/models"
)

// auditLogger пишет строку аудита на каждый вызов LLM одного запуска генерации.
// Ошибки записи логируются и не влияют на результат.
type auditLogger struct {
	ctx    context.Context
	writer AuditWriter
	log    *logger.Logger
	userID int64

	calls   int
	costEUR float64
}

func newAuditLogger(ctx context.Context, writer AuditWriter, log *logger.Logger, userID int64) *auditLogger {
	return &auditLogger{ctx: ctx, writer: writer, log: log, userID: userID}
}

// record подходит как ai.Request.OnCall
func (a *auditLogger) record(rec ai.CallRecord) {
	a.calls++
	a.costEUR += rec.CostEUR

	if a.writer == nil {
		return
	}

	userID := a.userID
	entry := &models.LLMAuditEntry{
		UserID:    &userID,
		Endpoint:  models.EndpointPlanGenerate,
		Model:     rec.Model,
		TokensIn:  rec.Usage.PromptTokens,
		TokensOut: rec.Usage.CompletionTokens,
		CostEUR:   rec.CostEUR,
		Success:   rec.Success,
		IsRetry:   a.calls > 1,
	}
	if rec.Err != nil {
		entry.ErrorMessage = rec.Err.Error()
	}

	// отменённый контекст генерации не должен терять строку аудита
	ctx := context.WithoutCancel(a.ctx)
	if err := a.writer.RecordLLMCall(ctx, entry); err != nil {
		a.log.Warn("не удалось записать аудит LLM", "user_id", a.userID, "model", rec.Model, "error", err)
	}
}
