package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron"

	"liftplan/internal/generator"
	"liftplan/internal/logger"
)

// Runner один запуск генерации (generator.Generator)
type Runner interface {
	Generate(ctx context.Context, opts generator.Options) (*generator.Result, error)
}

// Scheduler по расписанию cron генерирует планы для списка пользователей.
// Каждый запуск независим и создаёт новую группу планов.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     *logger.Logger
	users   []int64
	options generator.Options

	mu      sync.Mutex
	running bool
}

// New создаёт планировщик; base - общие параметры генерации, UserID подставляется для каждого пользователя
func New(runner Runner, users []int64, base generator.Options, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		log:     log,
		users:   users,
		options: base,
	}
}

// Start регистрирует задачу (формат robfig/cron: "0 0 6 * * MON" или "@weekly") и запускает cron
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if len(s.users) == 0 {
		return fmt.Errorf("не задан ни один пользователь для расписания")
	}
	if err := s.cron.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("некорректное расписание %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("планировщик запущен", "schedule", spec, "users", s.users)
	return nil
}

// Stop останавливает cron
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce генерирует план для каждого пользователя по очереди. Если предыдущий тик
// ещё не закончился, тик пропускается.
func (s *Scheduler) RunOnce(ctx context.Context) (succeeded, failed int) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("предыдущий запуск ещё выполняется, пропускаем")
		return 0, 0
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for _, userID := range s.users {
		if ctx.Err() != nil {
			return succeeded, failed
		}
		opts := s.options
		opts.UserID = userID

		res, err := s.runner.Generate(ctx, opts)
		switch {
		case err != nil:
			failed++
			s.log.Error("ошибка генерации по расписанию", "user_id", userID, "error", err)
		case !res.Success:
			failed++
			s.log.Warn("план не создан", "user_id", userID, "errors", res.Errors)
		default:
			succeeded++
			s.log.Info("план создан по расписанию", "user_id", userID, "plan_ids", res.PlanIDs)
		}
	}
	return succeeded, failed
}
