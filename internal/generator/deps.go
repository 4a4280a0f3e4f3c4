package generator

import (
	"context"
	"time"

	"liftplan/clients/ai"
	"liftplan/internal/logger"
	"liftplan/internal/models"
	"liftplan/internal/training"
)

// CatalogReader каталог упражнений и инвентарь пользователя
type CatalogReader interface {
	UserEquipment(ctx context.Context, userID int64) (models.EquipmentSet, error)
	ListAvailableExercises(ctx context.Context, inventory models.EquipmentSet) ([]models.Exercise, error)
	ResolveExercisesByName(ctx context.Context, names []string) (map[string]models.Exercise, error)
	ResolveExercisesCaseInsensitive(ctx context.Context, names []string) (map[string]models.Exercise, error)
}

// PlanWriter запись планов. SavePlanGroup атомарна: либо сохранены все дни, либо ни одного.
type PlanWriter interface {
	SavePlanGroup(ctx context.Context, days []models.PlanDay) ([]int64, error)
}

// AuditWriter журнал вызовов LLM
type AuditWriter interface {
	RecordLLMCall(ctx context.Context, entry *models.LLMAuditEntry) error
}

// LLM клиент, возвращающий разобранный JSON-объект (ai.Client)
type LLM interface {
	GenerateJSON(ctx context.Context, req ai.Request) (*ai.Completion, error)
}

// Deps внешние зависимости пайплайна
type Deps struct {
	Catalog CatalogReader
	History training.HistoryReader
	Plans   PlanWriter
	Audit   AuditWriter // может быть nil
	LLM     LLM
	Log     *logger.Logger
}

// Config явная конфигурация пайплайна; окружение пайплайн не читает
type Config struct {
	MinCatalogSize int
	// DuplicatesIgnoreVariant считать "Bench Press (barbell)" и "Bench Press (dumbbell)" одним упражнением
	DuplicatesIgnoreVariant bool
	// FallbackEnabled глобальный выключатель перехода на OpenRouter
	FallbackEnabled bool
	Now             func() time.Time
}

// DefaultConfig конфигурация по умолчанию
func DefaultConfig() Config {
	return Config{
		MinCatalogSize:  DefaultMinCatalogSize,
		FallbackEnabled: true,
		Now:             time.Now,
	}
}

// ProgressFunc получает процент выполнения и сообщение
type ProgressFunc func(percent int, message string)

// Options параметры одного запуска генерации
type Options struct {
	UserID         int64
	PlanType       string
	WindowDays     int     // 0 - 30 дней
	SetsPerSession int     // 0 - 18
	Temperature    float64 // <= 0 - 0.3
	Periodization  training.Scheme
	TargetProfile  training.TargetProfile
	UseRemote      bool
	NoFallback     bool
	NoSave         bool
	Progress       ProgressFunc
}

const (
	DefaultSetsPerSession = 18
	DefaultTemperature    = 0.3
	DefaultMinCatalogSize = 15
)

func (o Options) withDefaults() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = training.DefaultWindowDays
	}
	if o.SetsPerSession <= 0 {
		o.SetsPerSession = DefaultSetsPerSession
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	return o
}

// Result итог генерации; доменные ошибки - в Errors, а не в error
type Result struct {
	Success       bool                    `json:"success"`
	PlanIDs       []int64                 `json:"plan_ids"`
	PlanData      map[string]any          `json:"plan_data,omitempty"`
	AnalysisData  *training.Analysis      `json:"analysis_data,omitempty"`
	Periodization *training.Periodization `json:"periodization,omitempty"`
	Errors        []string                `json:"errors"`
	Warnings      []string                `json:"warnings"`
	LLMCalls      int                     `json:"llm_calls"`
	CostEUR       float64                 `json:"cost_eur"`
}

func newResult() *Result {
	return &Result{PlanIDs: []int64{}, Errors: []string{}, Warnings: []string{}}
}

func (r *Result) fail(msg string) *Result {
	r.Success = false
	r.Errors = append(r.Errors, msg)
	return r
}
