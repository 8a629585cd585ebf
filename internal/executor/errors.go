package executor

import "errors"

// Ошибки выполнения job.
var (
	// ErrProvision — провижининг окружения завершился ошибкой.
	ErrProvision = errors.New("environment provisioning failed")

	// ErrInstall — установка зависимостей завершилась ошибкой.
	ErrInstall = errors.New("dependency installation failed")

	// ErrRunner — test runner упал или не смог выполнить тесты.
	ErrRunner = errors.New("test runner failed")

	// ErrTestsFailed — тесты выполнились, но есть упавшие.
	ErrTestsFailed = errors.New("tests failed")

	// ErrStepTimeout — шаг превысил свой таймаут.
	ErrStepTimeout = errors.New("step timeout exceeded")

	// ErrJobCancelled — job остановлен до завершения.
	ErrJobCancelled = errors.New("job cancelled")
)
