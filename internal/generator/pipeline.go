package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"liftplan/clients/ai"
	"liftplan/internal/logger"
	"liftplan/internal/training"
)

// requiredPlanKeys минимальная схема ответа LLM
var requiredPlanKeys = []string{"plan_name", "sessions"}

// Generator пайплайн генерации плана: анализ истории, каталог, промпт, LLM,
// проверка, самолечение, периодизация, сохранение
type Generator struct {
	deps      Deps
	cfg       Config
	log       *logger.Logger
	analyzer  *training.Analyzer
	persister *Persister
}

// New создаёт пайплайн
func New(deps Deps, cfg Config) *Generator {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Generator{
		deps:      deps,
		cfg:       cfg,
		log:       deps.Log,
		analyzer:  training.NewAnalyzer(deps.History).WithClock(cfg.Now),
		persister: NewPersister(deps.Catalog, deps.Plans, deps.Log),
	}
}

// Generate выполняет один запуск генерации. Все доменные исходы (ошибки входа, LLM, проверки)
// возвращаются в Result; error - только сбой чтения истории/каталога или записи плана.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := newResult()
	log := g.log.With("user_id", opts.UserID, "plan_type", opts.PlanType)
	progress := &progressReporter{fn: opts.Progress}
	step := func(percent int, message string) {
		log.Info(message, "progress", percent)
		progress.report(percent, message)
	}

	step(ProgressAnalyze, "Analyzing training history")
	analysis, err := g.analyzer.Analyze(ctx, opts.UserID, opts.WindowDays)
	if err != nil {
		return res, err
	}
	res.AnalysisData = analysis

	catalog, warnings, err := ResolveCatalog(ctx, g.deps.Catalog, opts.UserID, g.cfg.MinCatalogSize)
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		log.Warn("генерация невозможна", "reason", inputErr.Msg)
		return res.fail(inputErr.Msg), nil
	}
	if err != nil {
		return res, err
	}
	for _, w := range warnings {
		log.Warn(w, "catalog_size", catalog.Len())
	}
	res.Warnings = append(res.Warnings, warnings...)

	step(ProgressPrompt, "Building prompt")
	if !ValidPlanType(opts.PlanType) {
		log.Warn("неизвестный тип плана, используем общую инструкцию")
	}
	audit := newAuditLogger(ctx, g.deps.Audit, log, opts.UserID)
	defer func() {
		res.LLMCalls = audit.calls
		res.CostEUR = math.Round(audit.costEUR*1e6) / 1e6
	}()

	req := ai.Request{
		Messages:         BuildMessages(opts.PlanType, opts.SetsPerSession, analysis, catalog, opts.TargetProfile),
		MaxTokens:        ai.MaxTokensForPlanType(opts.PlanType),
		Temperature:      opts.Temperature,
		UseRemote:        opts.UseRemote,
		FallbackToRemote: g.cfg.FallbackEnabled && !opts.NoFallback,
		RequiredKeys:     requiredPlanKeys,
		OnCall:           audit.record,
	}

	step(ProgressLLM, "Generating plan")
	comp, err := g.deps.LLM.GenerateJSON(ctx, req)
	if err != nil {
		return res.fail(fmt.Sprintf("LLM generation failed: %v", err)), nil
	}
	plan := comp.Data
	res.PlanData = plan

	step(ProgressValidate, "Validating plan")
	validator := NewValidator(catalog, g.cfg.DuplicatesIgnoreVariant)
	valid, verrs := validator.Validate(plan)
	if !valid {
		if !OnlyNameErrors(verrs) {
			log.Warn("план отклонён", "errors", verrs)
			res.Errors = append(res.Errors, verrs...)
			return res, nil
		}

		step(ProgressSelfHeal, "Replacing unavailable exercises")
		healReq := req
		if comp.Provider == ai.ProviderOpenRouter {
			// локальная модель уже не справилась в этом запуске
			healReq.UseRemote = true
		}
		replaced, healErr := NewSelfHealer(g.deps.LLM, catalog).Heal(ctx, plan, verrs, healReq)
		if healErr != nil {
			log.Warn("самолечение не удалось", "error", healErr)
		}
		valid, verrs = validator.Validate(plan)
		if !valid {
			log.Warn("план отклонён после самолечения", "replaced", replaced, "errors", verrs)
			res.Errors = append(res.Errors, verrs...)
			if healErr != nil {
				res.Errors = append(res.Errors, healErr.Error())
			}
			return res, nil
		}
		log.Info("названия упражнений исправлены", "replaced", replaced)
	}

	description := stringField(plan, "description")
	period := AttachPeriodization(plan, opts.TargetProfile, opts.Periodization)
	res.Periodization = &period

	if name := stringField(plan, "plan_name"); NeedsNameFallback(name) {
		fallback := FallbackPlanName(period.TargetProfile, opts.PlanType, analysis.Weaknesses, g.cfg.Now())
		log.Info("название плана заменено", "from", name, "to", fallback)
		plan["plan_name"] = fallback
	}

	draft, err := DecodeDraft(plan)
	if err != nil {
		return res.fail(fmt.Sprintf("plan could not be decoded: %v", err)), nil
	}
	res.Warnings = append(res.Warnings, CoverageWarnings(analysis.Weaknesses, draft, catalog)...)

	if opts.NoSave {
		res.Success = true
		return res, nil
	}

	step(ProgressPersist, "Saving plan")
	saved, err := g.persister.Persist(ctx, opts.UserID, draft, description, period.Summary(), catalog)
	res.PlanIDs = saved.PlanIDs
	res.Warnings = append(res.Warnings, saved.Warnings...)
	if err != nil {
		return res, err
	}

	res.Success = true
	log.Info("план сохранён", "plan_ids", res.PlanIDs, "group_id", saved.GroupID,
		"llm_calls", audit.calls, "cost_eur", audit.costEUR)
	return res, nil
}
