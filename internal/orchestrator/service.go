package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
	"github.com/shaiso/Gantry/internal/engine"
)

// RunStore — персистенс runs. Реализуется repo.RunRepo.
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	Update(ctx context.Context, run *domain.Run) error
	SaveOutcome(ctx context.Context, run *domain.Run, outcome *domain.RunOutcome) error
}

// EventPublisher — публикация событий завершения. Реализуется mq.Publisher.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, outcome *domain.RunOutcome) error
	PublishJobCompleted(ctx context.Context, runID uuid.UUID, result *domain.JobResult) error
}

// Service — долгоживущий сервис выполнения runs.
//
// Service принимает триггерные события (API, scheduler), создаёт run,
// разворачивает матрицу и выполняет jobs через Orchestrator. Каждый
// run выполняется в отдельной горутине; между runs нет разделяемого
// состояния.
//
// Store и publisher опциональны: без них runs выполняются, но не
// персистятся и не публикуются (режим standalone CLI).
type Service struct {
	workflows    map[string]*domain.Workflow
	orchestrator *Orchestrator
	store        RunStore
	publisher    EventPublisher
	logger       *slog.Logger

	// Lifecycle
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex

	// runCtx — контекст активных runs; отменяется при Stop.
	runCtx context.Context
}

// ServiceConfig — конфигурация Service.
type ServiceConfig struct {
	// Workflows — известные сервису workflows по имени.
	Workflows map[string]*domain.Workflow

	// Orchestrator — движок выполнения одного run.
	Orchestrator *Orchestrator

	// Store — персистенс runs (опционально).
	Store RunStore

	// Publisher — публикация событий завершения (опционально).
	Publisher EventPublisher

	// Logger
	Logger *slog.Logger
}

// NewService создаёт новый Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workflows := cfg.Workflows
	if workflows == nil {
		workflows = make(map[string]*domain.Workflow)
	}

	return &Service{
		workflows:    workflows,
		orchestrator: cfg.Orchestrator,
		store:        cfg.Store,
		publisher:    cfg.Publisher,
		logger:       logger,
	}
}

// Start запускает Service.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.runCtx = runCtx
	s.cancelFunc = cancel

	s.logger.Info("starting run service", "workflows", len(s.workflows))
	return nil
}

// Stop останавливает Service: новые submissions отклоняются, активные
// runs отменяются и дожидаются терминального состояния.
func (s *Service) Stop() {
	s.stoppedMu.Lock()
	s.stopped = true
	s.stoppedMu.Unlock()

	s.logger.Info("stopping run service...")

	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	// Ждём завершения горутин
	s.wg.Wait()

	s.logger.Info("run service stopped")
}

// IsStopped проверяет, остановлен ли Service.
func (s *Service) IsStopped() bool {
	s.stoppedMu.RLock()
	defer s.stoppedMu.RUnlock()
	return s.stopped
}

// Workflow возвращает workflow по имени.
func (s *Service) Workflow(name string) (*domain.Workflow, bool) {
	wf, ok := s.workflows[name]
	return wf, ok
}

// Workflows возвращает имена всех известных workflows.
func (s *Service) Workflows() []*domain.Workflow {
	list := make([]*domain.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		list = append(list, wf)
	}
	return list
}

// Submit принимает триггерное событие и запускает run асинхронно.
//
// Проверяет, что workflow существует и декларирует триггер данного
// вида (для pull_request — что ветка подпадает под фильтр). Возвращает
// созданный run в статусе PENDING; выполнение идёт в фоне.
func (s *Service) Submit(ctx context.Context, workflowName string, event domain.TriggerEvent) (*domain.Run, error) {
	if s.IsStopped() {
		return nil, ErrServiceStopped
	}

	wf, ok := s.workflows[workflowName]
	if !ok {
		return nil, ErrWorkflowNotFound
	}

	if !triggerDeclared(wf, event) {
		return nil, ErrTriggerNotDeclared
	}

	run := domain.NewRun(wf.Name, event)

	if s.store != nil {
		if err := s.store.Create(ctx, run); err != nil {
			return nil, err
		}
	}

	s.logger.Info("run submitted",
		"run_id", run.ID,
		"workflow", wf.Name,
		"trigger", event.Kind,
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.executeRun(s.runCtx, run, wf)
	}()

	return run, nil
}

// executeRun выполняет один run от разворачивания матрицы до
// сохранения outcome.
func (s *Service) executeRun(ctx context.Context, run *domain.Run, wf *domain.Workflow) {
	logger := s.logger.With("run_id", run.ID, "workflow", wf.Name)

	specs, err := engine.Expand(&wf.Matrix, wf.Steps)
	if err != nil {
		// Декларация провалидирована при загрузке; сюда попадаем
		// только при рассинхронизации конфигурации.
		logger.Error("matrix expansion failed", "error", err)
		s.finishErrored(run, err)
		return
	}

	run.MarkRunning()
	if s.store != nil {
		if err := s.store.Update(ctx, run); err != nil {
			logger.Error("failed to mark run running", "error", err)
		}
	}

	outcome, err := s.orchestrator.Run(ctx, run.ID, wf.Name, specs, wf.Policy)
	if err != nil {
		logger.Error("run failed", "error", err)
		s.finishErrored(run, err)
		return
	}

	run.MarkFinished(outcome)

	if s.store != nil {
		// Outcome отменённого при shutdown run тоже должен долететь
		// до БД — отдельный контекст.
		if err := s.store.SaveOutcome(context.Background(), run, outcome); err != nil {
			logger.Error("failed to save outcome", "error", err)
		}
	}

	s.publishOutcome(run.ID, outcome)

	logger.Info("run finished",
		"status", run.Status,
		"all_passed", run.AllPassed,
		"jobs", len(outcome.Jobs),
	)
}

// finishErrored переводит run в FAILED без outcome.
func (s *Service) finishErrored(run *domain.Run, cause error) {
	now := nowPtr()
	run.Status = domain.RunStatusFailed
	run.Reason = cause.Error()
	run.FinishedAt = now
	if s.store != nil {
		if err := s.store.Update(context.Background(), run); err != nil {
			s.logger.Error("failed to persist errored run", "run_id", run.ID, "error", err)
		}
	}
}

// publishOutcome публикует события завершения run и его jobs.
// Ошибки публикации логируются и не влияют на результат run.
func (s *Service) publishOutcome(runID uuid.UUID, outcome *domain.RunOutcome) {
	if s.publisher == nil {
		return
	}

	// Публикация после Stop всё ещё должна уйти — отдельный контекст.
	ctx := context.Background()

	for i := range outcome.Jobs {
		if err := s.publisher.PublishJobCompleted(ctx, runID, &outcome.Jobs[i]); err != nil {
			s.logger.Warn("failed to publish job.completed",
				"run_id", runID,
				"job_key", outcome.Jobs[i].JobKey,
				"error", err,
			)
		}
	}

	if err := s.publisher.PublishRunCompleted(ctx, outcome); err != nil {
		s.logger.Warn("failed to publish run.completed", "run_id", runID, "error", err)
	}
}

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

// triggerDeclared проверяет, что событие подпадает под декларацию
// триггеров workflow.
func triggerDeclared(wf *domain.Workflow, event domain.TriggerEvent) bool {
	switch event.Kind {
	case domain.TriggerPullRequest:
		return wf.Triggers.PullRequest != nil && wf.Triggers.PullRequest.Matches(event.Branch)
	case domain.TriggerSchedule:
		return wf.Triggers.Schedule != nil
	case domain.TriggerDispatch:
		return wf.Triggers.Dispatch
	default:
		return false
	}
}
