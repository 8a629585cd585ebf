package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrNoJobs — пустой список jobs (матрица не развёрнута).
	ErrNoJobs = errors.New("no jobs to run")

	// ErrServiceStopped — сервис остановлен и не принимает новые runs.
	ErrServiceStopped = errors.New("run service stopped")

	// ErrWorkflowNotFound — workflow с таким именем не загружен.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTriggerNotDeclared — событие не входит в триггеры workflow.
	ErrTriggerNotDeclared = errors.New("trigger not declared by workflow")
)
