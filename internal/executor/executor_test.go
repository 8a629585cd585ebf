package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Gantry/internal/domain"
)

// --- Fakes ---

// fakeEnv — фейковый провайдер окружений со счётчиками вызовов.
type fakeEnv struct {
	mu         sync.Mutex
	acquired   int
	released   int
	acquireErr error
	releaseErr error
	// partial — возвращать из Acquire окружение вместе с ошибкой.
	partial bool
	// acquireDelay — имитация долгого provision.
	acquireDelay time.Duration
}

func (f *fakeEnv) Acquire(ctx context.Context, axes []domain.AxisValue) (*EnvContext, error) {
	if f.acquireDelay > 0 {
		select {
		case <-time.After(f.acquireDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired++

	env := &EnvContext{ID: fmt.Sprintf("env-%d", f.acquired), Axes: axes}
	if f.acquireErr != nil {
		if f.partial {
			return env, f.acquireErr
		}
		return nil, f.acquireErr
	}
	return env, nil
}

func (f *fakeEnv) Release(env *EnvContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return f.releaseErr
}

func (f *fakeEnv) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// fakeInstaller — фейковый установщик зависимостей.
type fakeInstaller struct {
	mu       sync.Mutex
	installs int
	err      error
	delay    time.Duration
}

func (f *fakeInstaller) Install(ctx context.Context, env *EnvContext, packages []string) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs++
	return f.err
}

// fakeRunner — фейковый исполнитель тестов.
type fakeRunner struct {
	mu     sync.Mutex
	runs   int
	report *TestReport
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, env *EnvContext) (*TestReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func testSpec() *domain.JobSpec {
	axes := []domain.AxisValue{
		{Name: "os", Value: "linux"},
		{Name: "python-version", Value: "3.8"},
	}
	return &domain.JobSpec{
		Key:   domain.AxisKey(axes),
		Index: 0,
		Axes:  axes,
		Steps: []domain.StepDef{
			{Kind: domain.StepKindProvision},
			{Kind: domain.StepKindInstall, Packages: []string{"numpy"}},
			{Kind: domain.StepKindRunTests},
		},
	}
}

func newTestExecutor(env *fakeEnv, inst *fakeInstaller, runner *fakeRunner) *Executor {
	return New(Config{
		Environment: env,
		Installer:   inst,
		Runner:      runner,
	})
}

// --- Execute Tests ---

func TestExecute_Success(t *testing.T) {
	env := &fakeEnv{}
	inst := &fakeInstaller{}
	runner := &fakeRunner{report: &TestReport{Passed: 12}}

	result := newTestExecutor(env, inst, runner).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", result.Status)
	}
	if result.Error != "" {
		t.Errorf("unexpected error: %s", result.Error)
	}
	if result.FailedStep != "" {
		t.Errorf("unexpected failed step: %s", result.FailedStep)
	}
	if env.releaseCount() != 1 {
		t.Errorf("environment should be released exactly once, got %d", env.releaseCount())
	}
	if inst.installs != 1 || runner.runs != 1 {
		t.Errorf("expected 1 install and 1 run, got %d/%d", inst.installs, runner.runs)
	}
}

func TestExecute_TestsFailed(t *testing.T) {
	env := &fakeEnv{}
	runner := &fakeRunner{report: &TestReport{Passed: 10, Failed: 2}}

	result := newTestExecutor(env, &fakeInstaller{}, runner).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusFailed {
		t.Errorf("expected FAILED, got %s", result.Status)
	}
	if result.FailedStep != "run-tests" {
		t.Errorf("expected failed step run-tests, got %q", result.FailedStep)
	}
	if env.releaseCount() != 1 {
		t.Errorf("environment should be released exactly once, got %d", env.releaseCount())
	}
}

func TestExecute_ProvisionError(t *testing.T) {
	env := &fakeEnv{acquireErr: errors.New("no capacity")}
	inst := &fakeInstaller{}

	result := newTestExecutor(env, inst, &fakeRunner{}).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusErrored {
		t.Errorf("expected ERRORED, got %s", result.Status)
	}
	if result.FailedStep != "provision" {
		t.Errorf("expected failed step provision, got %q", result.FailedStep)
	}
	if inst.installs != 0 {
		t.Error("install should not run after provision failure")
	}
}

func TestExecute_PartialProvisionReleased(t *testing.T) {
	// Acquire вернул окружение вместе с ошибкой — окружение всё равно
	// должно быть освобождено.
	env := &fakeEnv{acquireErr: errors.New("boot timed out"), partial: true}

	result := newTestExecutor(env, &fakeInstaller{}, &fakeRunner{}).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusErrored {
		t.Errorf("expected ERRORED, got %s", result.Status)
	}
	if env.releaseCount() != 1 {
		t.Errorf("partially acquired environment should be released, got %d releases", env.releaseCount())
	}
}

func TestExecute_InstallError(t *testing.T) {
	env := &fakeEnv{}
	inst := &fakeInstaller{err: errors.New("pip exploded")}
	runner := &fakeRunner{}

	result := newTestExecutor(env, inst, runner).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusErrored {
		t.Errorf("expected ERRORED, got %s", result.Status)
	}
	if result.FailedStep != "install-dependencies" {
		t.Errorf("expected failed step install-dependencies, got %q", result.FailedStep)
	}
	if runner.runs != 0 {
		t.Error("tests should not run after install failure")
	}
	if env.releaseCount() != 1 {
		t.Errorf("environment should be released exactly once, got %d", env.releaseCount())
	}
}

func TestExecute_RunnerError(t *testing.T) {
	env := &fakeEnv{}
	runner := &fakeRunner{err: errors.New("pytest segfault")}

	result := newTestExecutor(env, &fakeInstaller{}, runner).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusErrored {
		t.Errorf("runner crash should be ERRORED, got %s", result.Status)
	}
}

func TestExecute_StepTimeout(t *testing.T) {
	env := &fakeEnv{}
	// Задержка install больше таймаута шага — шаг падает по дедлайну.
	inst := &fakeInstaller{delay: 1200 * time.Millisecond}

	spec := testSpec()
	spec.Steps[1].TimeoutSec = 1

	result := newTestExecutor(env, inst, &fakeRunner{}).Execute(context.Background(), spec)

	if result.Status != domain.JobStatusErrored {
		t.Errorf("step timeout should be ERRORED, got %s", result.Status)
	}
	if !strings.Contains(result.Error, ErrStepTimeout.Error()) {
		t.Errorf("expected step timeout error, got %q", result.Error)
	}
	if env.releaseCount() != 1 {
		t.Errorf("environment should be released exactly once, got %d", env.releaseCount())
	}
}

func TestExecute_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := &fakeEnv{}
	result := newTestExecutor(env, &fakeInstaller{}, &fakeRunner{}).Execute(ctx, testSpec())

	if result.Status != domain.JobStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", result.Status)
	}
	if env.acquired != 0 {
		t.Error("no environment should be acquired for a cancelled job")
	}
}

func TestExecute_CancelledMidStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	env := &fakeEnv{}
	inst := &fakeInstaller{delay: 2 * time.Second}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result := newTestExecutor(env, inst, &fakeRunner{}).Execute(ctx, testSpec())

	if result.Status != domain.JobStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", result.Status)
	}
	if env.releaseCount() != 1 {
		t.Errorf("environment should be released exactly once, got %d", env.releaseCount())
	}
}

func TestExecute_ReleaseErrorDoesNotChangeStatus(t *testing.T) {
	env := &fakeEnv{releaseErr: errors.New("release failed")}
	runner := &fakeRunner{report: &TestReport{Passed: 3}}

	result := newTestExecutor(env, &fakeInstaller{}, runner).Execute(context.Background(), testSpec())

	if result.Status != domain.JobStatusSucceeded {
		t.Errorf("release failure should not change job status, got %s", result.Status)
	}
}

func TestExecute_NeverReturnsNil(t *testing.T) {
	result := newTestExecutor(&fakeEnv{}, &fakeInstaller{}, &fakeRunner{report: &TestReport{}}).
		Execute(context.Background(), testSpec())
	if result == nil {
		t.Fatal("Execute must never return nil")
	}
	if result.StartedAt == nil {
		t.Error("StartedAt should be set")
	}
	if result.Duration <= 0 {
		t.Error("Duration should be positive")
	}
}
