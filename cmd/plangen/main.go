package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"liftplan/clients/ai"
	"liftplan/internal/config"
	"liftplan/internal/database"
	"liftplan/internal/generator"
	"liftplan/internal/logger"
	"liftplan/internal/repository"
	"liftplan/internal/scheduler"
	"liftplan/internal/training"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка конфигурации: %v\n", err)
		return 1
	}

	// Флаги
	userID := flag.Int64("user-id", cfg.DefaultUserID, "ID пользователя")
	planType := flag.String("plan-type", "", "Тип плана: "+strings.Join(generator.PlanTypeNames(), ", "))
	windowDays := flag.Int("window-days", training.DefaultWindowDays, "Окно анализа истории (дни)")
	setsPerSession := flag.Int("sets-per-session", generator.DefaultSetsPerSession, "Бюджет рабочих подходов на тренировку")
	temperature := flag.Float64("temperature", generator.DefaultTemperature, "Температура LLM")
	periodization := flag.String("periodization", "", "Периодизация: linear, undulating, block")
	targetProfile := flag.String("target-profile", "", "Цель: strength, hypertrophy, definition")
	useRemote := flag.Bool("use-remote", false, "Сразу использовать OpenRouter")
	noFallback := flag.Bool("no-fallback", false, "Не переходить на OpenRouter при ошибке локальной модели")
	noSave := flag.Bool("no-save", false, "Не сохранять план в базу")
	output := flag.String("output", "", "Файл результата (.json, .yaml, .yml)")
	migrate := flag.Bool("migrate", false, "Создать таблицы и выйти (если не задан --plan-type)")
	schedule := flag.String("schedule", cfg.Schedule, "Расписание cron для регулярной генерации, например \"0 0 6 * * MON\"")
	userIDs := flag.String("user-ids", "", "Пользователи для --schedule через запятую")
	storeKey := flag.Bool("store-api-key", false, "Прочитать ключ OpenRouter из stdin и сохранить в хранилище ключей")
	flag.Parse()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка логгера: %v\n", err)
		return 1
	}
	defer log.Sync()

	if *storeKey {
		return storeAPIKey()
	}

	opts := generator.Options{
		UserID:         *userID,
		PlanType:       *planType,
		WindowDays:     *windowDays,
		SetsPerSession: *setsPerSession,
		Temperature:    *temperature,
		Periodization:  training.Scheme(*periodization),
		TargetProfile:  training.TargetProfile(*targetProfile),
		UseRemote:      *useRemote,
		NoFallback:     *noFallback,
		NoSave:         *noSave,
	}
	needPlan := !*migrate || *planType != ""
	if needPlan {
		if err := validateOptions(opts); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			flag.Usage()
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Error("ошибка подключения к БД", "error", err)
		return 1
	}
	defer db.Close()

	if *migrate {
		if err := repository.Migrate(ctx, db.DB); err != nil {
			log.Error("ошибка миграции", "error", err)
			return 1
		}
		fmt.Println("✅ Схема базы данных обновлена")
		if !needPlan {
			return 0
		}
	}

	gen := newGenerator(cfg, repository.New(db.DB), log)

	if *schedule != "" {
		users := cfg.ScheduleUsers
		if *userIDs != "" {
			if users, err = config.ParseUserIDs(*userIDs); err != nil {
				fmt.Fprintf(os.Stderr, "❌ --user-ids: %v\n", err)
				return 1
			}
		}
		return runScheduled(ctx, gen, *schedule, users, opts, log)
	}

	if opts.UserID <= 0 {
		fmt.Fprintln(os.Stderr, "❌ Не указан --user-id (или DEFAULT_USER_ID)")
		return 1
	}

	opts.Progress = func(percent int, message string) {
		fmt.Printf("[%3d%%] %s\n", percent, message)
	}
	res, err := gen.Generate(ctx, opts)
	if err != nil {
		log.Error("ошибка генерации", "error", err)
		if res == nil {
			return 1
		}
	}

	printSummary(res)
	if *output != "" {
		if err := writeResult(*output, res); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Ошибка записи файла: %v\n", err)
			return 1
		}
		fmt.Printf("✅ Результат сохранён в %s\n", *output)
	}

	if err != nil || !res.Success {
		return 1
	}
	return 0
}

func newGenerator(cfg *config.Config, repos *repository.Repository, log *logger.Logger) *generator.Generator {
	var local, remote ai.Backend
	if cfg.LocalLLMEnabled {
		local = ai.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel)
	}
	if cfg.OpenRouterAPIKey != "" {
		remote = ai.NewOpenRouterClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	} else {
		log.Warn("OPENROUTER_API_KEY не задан, OpenRouter недоступен")
	}

	client := ai.NewClient(local, remote, ai.ClientConfig{
		LocalEnabled: cfg.LocalLLMEnabled,
		Timeout:      cfg.LLMTimeout,
	}, log)

	return generator.New(generator.Deps{
		Catalog: repos.Exercise,
		History: repos.History,
		Plans:   repos.Plan,
		Audit:   repos.Audit,
		LLM:     client,
		Log:     log,
	}, generator.Config{
		MinCatalogSize:          cfg.MinCatalogSize,
		DuplicatesIgnoreVariant: cfg.DuplicatesIgnoreVariant,
		FallbackEnabled:         cfg.FallbackEnabled,
	})
}

func validateOptions(opts generator.Options) error {
	if !generator.ValidPlanType(opts.PlanType) {
		return fmt.Errorf("--plan-type должен быть одним из: %s", strings.Join(generator.PlanTypeNames(), ", "))
	}
	if opts.Periodization != "" && !opts.Periodization.Valid() {
		return fmt.Errorf("--periodization: linear, undulating или block")
	}
	if opts.TargetProfile != "" && !opts.TargetProfile.Valid() {
		return fmt.Errorf("--target-profile: strength, hypertrophy или definition")
	}
	if opts.WindowDays <= 0 || opts.SetsPerSession <= 0 {
		return fmt.Errorf("--window-days и --sets-per-session должны быть положительными")
	}
	if opts.Temperature < 0 || opts.Temperature > 2 {
		return fmt.Errorf("--temperature должна быть в диапазоне 0..2")
	}
	return nil
}

func runScheduled(ctx context.Context, gen *generator.Generator, spec string, users []int64, opts generator.Options, log *logger.Logger) int {
	s := scheduler.New(gen, users, opts, log)
	if err := s.Start(ctx, spec); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	fmt.Printf("⏰ Генерация по расписанию %q для %d пользователей. Ctrl+C для выхода\n", spec, len(users))
	<-ctx.Done()
	s.Stop()
	return 0
}

func storeAPIKey() int {
	fmt.Print("Ключ OpenRouter: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		fmt.Fprintln(os.Stderr, "❌ Ключ не введён")
		return 1
	}
	if err := config.StoreAPIKey(config.DefaultSecretStore(), scanner.Text()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка сохранения ключа: %v\n", err)
		return 1
	}
	fmt.Println("✅ Ключ сохранён")
	return 0
}
