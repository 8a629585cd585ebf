package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
	"github.com/shaiso/Gantry/internal/report"
	"github.com/shaiso/Gantry/internal/telemetry"
)

// JobRunner выполняет один job до терминального статуса.
//
// Реализация: executor.Executor. Контракт: никогда не возвращает
// nil, любой исход выражен статусом результата, отмена контекста
// даёт CANCELLED с соблюдением гарантии teardown.
type JobRunner interface {
	Execute(ctx context.Context, spec *domain.JobSpec) *domain.JobResult
}

// Orchestrator планирует выполнение jobs одного run.
type Orchestrator struct {
	runner  JobRunner
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Runner — исполнитель jobs.
	Runner JobRunner

	// Metrics — метрики Prometheus (опционально).
	Metrics *telemetry.Metrics

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		runner:  cfg.Runner,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// completion — уведомление о завершении одного job.
type completion struct {
	index  int
	result *domain.JobResult
}

// Run выполняет все jobs и возвращает агрегированный результат.
//
// Планирование:
//   - Одновременно выполняется не больше policy.MaxParallel jobs
//     (0 — без ограничения); по освобождению слота стартует следующий
//     pending job в порядке разворачивания матрицы.
//   - failFast=false (политика по умолчанию): каждый job доходит до
//     терминального статуса независимо от исходов соседей.
//   - failFast=true: первый FAILED/ERRORED прерывает run — контекст
//     выполняющихся jobs отменяется, pending переводятся в CANCELLED,
//     новые jobs не стартуют. Уже терминальные результаты сохраняются.
//   - Внешняя отмена ctx действует как fail-fast для всех jobs.
//
// Завершившиеся jobs сообщают результат через ограниченный канал;
// цикл планирования — единственный потребитель, так что изменяемое
// состояние run не разделяется между горутинами.
//
// Ошибка возвращается только на пустом списке jobs; исход любого
// реального выполнения, включая прерванное, выражен в RunOutcome.
func (o *Orchestrator) Run(ctx context.Context, runID uuid.UUID, workflow string, specs []domain.JobSpec, policy domain.Policy) (*domain.RunOutcome, error) {
	if len(specs) == 0 {
		return nil, ErrNoJobs
	}

	maxParallel := policy.MaxParallel
	if maxParallel <= 0 {
		maxParallel = len(specs)
	}

	logger := o.logger.With("run_id", runID, "workflow", workflow)
	logger.Info("run started",
		"jobs", len(specs),
		"max_parallel", maxParallel,
		"fail_fast", policy.FailFast,
	)

	runCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	state := newRunState(specs)
	done := make(chan completion, len(specs))

	start := func() {
		for state.runningCount() < maxParallel {
			index, ok := state.nextPending()
			if !ok {
				return
			}
			state.markRunning(index)
			o.observeStarted()

			go func(index int, spec domain.JobSpec) {
				done <- completion{index: index, result: o.runner.Execute(runCtx, &spec)}
			}(index, specs[index])
		}
	}

	start()

	// Внешняя отмена обрабатывается один раз; после abort канал
	// обнуляется, чтобы select не срабатывал повторно.
	external := ctx.Done()

	for !state.isComplete() {
		select {
		case c := <-done:
			state.record(c.index, c.result)
			o.observeFinished(c.result)

			logger.Debug("job terminal",
				"job", c.result.JobKey,
				"status", c.result.Status,
			)

			if policy.FailFast && !state.isAborted() && isFailure(c.result.Status) {
				reason := fmt.Sprintf("fail-fast: job %s %s", c.result.JobKey, c.result.Status)
				logger.Warn("aborting run", "reason", reason)
				o.cancelPending(state, reason)
				cancelJobs()
				continue
			}

			start()

		case <-external:
			external = nil
			reason := "run cancelled"
			if err := context.Cause(ctx); err != nil && err != context.Canceled {
				reason = fmt.Sprintf("run cancelled: %v", err)
			}
			logger.Warn("aborting run", "reason", reason)
			o.cancelPending(state, reason)
			cancelJobs()
		}
	}

	outcome := report.Aggregate(runID, workflow, state.resultList(), state.abortReason())
	o.observeOutcome(outcome)

	logger.Info("run finished",
		"all_passed", outcome.AllPassed,
		"reason", outcome.Reason,
	)

	return outcome, nil
}

// cancelPending переводит незапущенные jobs в CANCELLED.
// Синтетические результаты учитываются и в метриках: каждый job
// матрицы отражён в отчёте ровно одним терминальным статусом.
func (o *Orchestrator) cancelPending(state *runState, reason string) {
	before := state.Stats().CancelledJobs
	state.abort(reason)
	after := state.Stats().CancelledJobs

	if o.metrics != nil {
		for i := before; i < after; i++ {
			o.metrics.JobsTotal.WithLabelValues(string(domain.JobStatusCancelled)).Inc()
		}
	}
}

// isFailure — статусы, запускающие fail-fast.
func isFailure(s domain.JobStatus) bool {
	return s == domain.JobStatusFailed || s == domain.JobStatusErrored
}

func (o *Orchestrator) observeStarted() {
	if o.metrics == nil {
		return
	}
	o.metrics.JobsRunning.Inc()
}

func (o *Orchestrator) observeFinished(result *domain.JobResult) {
	if o.metrics == nil {
		return
	}
	o.metrics.JobsRunning.Dec()
	o.metrics.JobsTotal.WithLabelValues(string(result.Status)).Inc()
	o.metrics.JobDuration.Observe(result.Duration.Seconds())
}

func (o *Orchestrator) observeOutcome(outcome *domain.RunOutcome) {
	if o.metrics == nil {
		return
	}
	o.metrics.RunsTotal.WithLabelValues(string(outcome.Status())).Inc()
}
