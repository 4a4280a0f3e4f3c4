package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"liftplan/internal/models"
)

// AuditRepository журнал вызовов LLM (только вставка)
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository создаёт репозиторий аудита
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordLLMCall записывает одну строку аудита
func (r *AuditRepository) RecordLLMCall(ctx context.Context, entry *models.LLMAuditEntry) error {
	cost := math.Round(entry.CostEUR*1e6) / 1e6
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO public.llm_usage
		(user_id, endpoint, model, tokens_in, tokens_out, cost_eur, success, is_retry, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		entry.UserID, string(entry.Endpoint), entry.Model, entry.TokensIn, entry.TokensOut,
		cost, entry.Success, entry.IsRetry, entry.ErrorMessage,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи аудита LLM: %w", err)
	}
	return nil
}
