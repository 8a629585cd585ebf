package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Gantry/internal/domain"
)

// Submitter — приём триггерных событий. Реализуется orchestrator.Service.
type Submitter interface {
	Submit(ctx context.Context, workflow string, event domain.TriggerEvent) (*domain.Run, error)
}

// Scheduler — планировщик schedule-триггеров.
//
// Состояние (nextDue) держится в памяти: при рестарте сервиса
// расписание пересчитывается от текущего момента, пропущенные тики
// не доигрываются.
type Scheduler struct {
	workflows []*domain.Workflow
	submitter Submitter
	logger    *slog.Logger

	// nextDue — следующее время срабатывания по имени workflow (UTC).
	nextDue map[string]time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Workflows []*domain.Workflow
	Submitter Submitter
	Logger    *slog.Logger
}

// New создаёт новый Scheduler. Workflows без schedule-триггера
// игнорируются; невалидные cron-выражения логируются и пропускаются
// (валидация декларации отлавливает их раньше).
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		submitter: cfg.Submitter,
		logger:    logger,
		nextDue:   make(map[string]time.Time),
	}

	now := time.Now()
	for _, wf := range cfg.Workflows {
		if wf.Triggers.Schedule == nil {
			continue
		}
		next, err := NextDue(wf.Triggers.Schedule, now)
		if err != nil {
			logger.Error("invalid schedule, workflow skipped",
				"workflow", wf.Name,
				"cron", wf.Triggers.Schedule.Cron,
				"error", err,
			)
			continue
		}
		s.workflows = append(s.workflows, wf)
		s.nextDue[wf.Name] = next
		logger.Info("workflow scheduled",
			"workflow", wf.Name,
			"cron", wf.Triggers.Schedule.Cron,
			"next_due", next,
		)
	}

	return s
}

// Scheduled возвращает количество workflows под управлением планировщика.
func (s *Scheduler) Scheduled() int {
	return len(s.workflows)
}

// Tick выполняет один тик планировщика: отправляет в выполнение все
// workflows, чьё время наступило, и сдвигает их nextDue.
//
// Ошибки одного workflow не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	for _, wf := range s.workflows {
		due := s.nextDue[wf.Name]
		if now.Before(due) {
			continue
		}

		s.fire(ctx, wf, due)

		next, err := NextDue(wf.Triggers.Schedule, now)
		if err != nil {
			// NextDue уже проходил в New; сюда не попадаем.
			s.logger.Error("failed to advance schedule", "workflow", wf.Name, "error", err)
			continue
		}
		s.nextDue[wf.Name] = next
	}
}

// fire отправляет один due workflow в выполнение.
func (s *Scheduler) fire(ctx context.Context, wf *domain.Workflow, due time.Time) {
	event := domain.TriggerEvent{
		Kind:       domain.TriggerSchedule,
		OccurredAt: due,
	}

	run, err := s.submitter.Submit(ctx, wf.Name, event)
	if err != nil {
		s.logger.Error("failed to submit scheduled run",
			"workflow", wf.Name,
			"error", err,
		)
		return
	}

	s.logger.Info("scheduled run submitted",
		"workflow", wf.Name,
		"run_id", run.ID,
		"due", due,
	)
}
