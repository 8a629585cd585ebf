package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Gantry/internal/domain"
)

// Executor выполняет jobs через внешних коллабораторов.
//
// Executor не имеет собственного состояния между jobs и безопасен для
// конкурентного вызова Execute из нескольких горутин: всё изменяемое
// состояние живёт в рамках одного вызова.
type Executor struct {
	env       Environment
	installer DependencyInstaller
	runner    TestRunner

	logDir string
	logger *slog.Logger
}

// Config — конфигурация Executor.
type Config struct {
	// Environment — провайдер исполняемых окружений.
	Environment Environment

	// Installer — установщик зависимостей.
	Installer DependencyInstaller

	// Runner — исполнитель тестов.
	Runner TestRunner

	// LogDir — каталог для сохранения логов jobs.
	// Пустой — логи не сохраняются, LogRef в результатах пуст.
	LogDir string

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Executor.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		env:       cfg.Environment,
		installer: cfg.Installer,
		runner:    cfg.Runner,
		logDir:    cfg.LogDir,
		logger:    logger,
	}
}

// Execute прогоняет job через его шаги и возвращает терминальный результат.
//
// Execute никогда не возвращает ошибку наружу: любой исход job,
// включая инфраструктурные ошибки и отмену, выражается статусом
// в JobResult. Ошибки одного job не касаются соседних.
//
// Захваченное окружение освобождается ровно один раз на любом пути
// выхода — при успехе, ошибке любого шага, таймауте и отмене.
func (e *Executor) Execute(ctx context.Context, spec *domain.JobSpec) *domain.JobResult {
	start := time.Now()
	log := newJobLog(spec.Key)

	result := &domain.JobResult{
		JobKey:    spec.Key,
		Index:     spec.Index,
		Axes:      spec.Axes,
		StartedAt: &start,
	}

	logger := e.logger.With("job", spec.Key)
	logger.Info("job started")
	log.Printf("job started")

	var env *EnvContext
	var releaseOnce sync.Once

	release := func() {
		releaseOnce.Do(func() {
			if env == nil {
				return
			}
			if err := e.env.Release(env); err != nil {
				logger.Warn("environment release failed", "error", err)
				log.Printf("environment release failed: %v", err)
				return
			}
			log.Printf("environment released")
		})
	}
	defer release()

	status, failedStep, execErr := e.runSteps(ctx, spec, log, &env)

	// Teardown до фиксации длительности: освобождение окружения —
	// часть жизненного цикла job.
	release()

	result.Status = status
	result.Duration = time.Since(start)
	if execErr != nil {
		result.Error = execErr.Error()
		result.FailedStep = failedStep
	}

	ref, err := log.flush(e.logDir)
	if err != nil {
		logger.Warn("failed to persist job log", "error", err)
	}
	result.LogRef = ref

	logger.Info("job finished",
		"status", result.Status,
		"duration", result.Duration,
	)

	return result
}

// runSteps выполняет шаги строго по порядку.
//
// Возвращает терминальный статус, имя неуспешного шага и ошибку.
// Отмена проверяется между шагами (кооперативно): начатый шаг
// дорабатывает или прерывается своим контекстом.
func (e *Executor) runSteps(ctx context.Context, spec *domain.JobSpec, log *jobLog, env **EnvContext) (domain.JobStatus, string, error) {
	for i := range spec.Steps {
		step := &spec.Steps[i]
		name := step.DisplayName()

		if ctx.Err() != nil {
			log.Printf("step %s skipped: job cancelled", name)
			return domain.JobStatusCancelled, name, ErrJobCancelled
		}

		log.Printf("step %s started", name)

		stepCtx, cancel := context.WithTimeout(ctx, step.Timeout())
		status, err := e.runStep(stepCtx, spec, step, log, env)
		timedOut := errors.Is(stepCtx.Err(), context.DeadlineExceeded)
		cancel()

		if err != nil {
			status, err = e.classify(ctx, timedOut, status, name, err)
			log.Printf("step %s failed: %v", name, err)
			return status, name, err
		}

		log.Printf("step %s finished", name)
	}

	log.Printf("job succeeded")
	return domain.JobStatusSucceeded, "", nil
}

// runStep выполняет один шаг через соответствующего коллаборатора.
func (e *Executor) runStep(ctx context.Context, spec *domain.JobSpec, step *domain.StepDef, log *jobLog, env **EnvContext) (domain.JobStatus, error) {
	switch step.Kind {
	case domain.StepKindProvision:
		acquired, err := e.env.Acquire(ctx, spec.Axes)
		// Сохраняем даже частично захваченное окружение: release
		// обязан быть безопасен и для него.
		*env = acquired
		if err != nil {
			return domain.JobStatusErrored, fmt.Errorf("%w: %v", ErrProvision, err)
		}
		log.Printf("environment acquired: %s", acquired.ID)
		return domain.JobStatusRunning, nil

	case domain.StepKindInstall:
		if err := e.installer.Install(ctx, *env, step.Packages); err != nil {
			return domain.JobStatusErrored, fmt.Errorf("%w: %v", ErrInstall, err)
		}
		return domain.JobStatusRunning, nil

	case domain.StepKindRunTests:
		report, err := e.runner.Run(ctx, *env)
		if err != nil {
			return domain.JobStatusErrored, fmt.Errorf("%w: %v", ErrRunner, err)
		}
		log.Printf("tests finished: %d passed, %d failed", report.Passed, report.Failed)
		if !report.AllPassed() {
			return domain.JobStatusFailed, fmt.Errorf("%w: %d of %d tests failed",
				ErrTestsFailed, report.Failed, report.Passed+report.Failed)
		}
		return domain.JobStatusRunning, nil

	default:
		// Неизвестные типы отсеивает валидация; сюда они не доходят.
		return domain.JobStatusErrored, fmt.Errorf("unexpected step kind %q", step.Kind)
	}
}

// classify уточняет статус неуспешного шага.
//
// Отмена родительского контекста (fail-fast или внешняя) — CANCELLED.
// Таймаут шага при живом родительском контексте — ERRORED: превышение
// жёсткой верхней границы трактуется так же, как инфраструктурная
// ошибка шага.
func (e *Executor) classify(ctx context.Context, timedOut bool, status domain.JobStatus, step string, err error) (domain.JobStatus, error) {
	if ctx.Err() != nil {
		return domain.JobStatusCancelled, fmt.Errorf("%w: step %s interrupted", ErrJobCancelled, step)
	}

	if timedOut || errors.Is(err, context.DeadlineExceeded) {
		return domain.JobStatusErrored, fmt.Errorf("%w: step %s", ErrStepTimeout, step)
	}

	return status, err
}
