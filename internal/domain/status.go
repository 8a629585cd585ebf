package domain

// JobStatus — статус выполнения одного job (ячейки матрицы).
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED    (тесты выполнились, но есть упавшие)
//	                  ↘ ERRORED   (инфраструктурная ошибка или таймаут шага)
//	          (или) → CANCELLED  (fail-fast либо внешняя отмена)
type JobStatus string

const (
	// JobStatusPending — job создан экспандером, но ещё не запущен.
	JobStatusPending JobStatus = "PENDING"

	// JobStatusRunning — job выполняется executor'ом.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusSucceeded — все шаги job завершились успешно.
	JobStatusSucceeded JobStatus = "SUCCEEDED"

	// JobStatusFailed — шаг run-tests выполнился, но тесты упали.
	JobStatusFailed JobStatus = "FAILED"

	// JobStatusErrored — любой шаг завершился инфраструктурной ошибкой:
	// провижининг, установка зависимостей, падение самого test runner'а,
	// превышение таймаута шага.
	JobStatusErrored JobStatus = "ERRORED"

	// JobStatusCancelled — job остановлен до завершения: политикой
	// fail-fast либо внешней отменой run.
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный (job завершён).
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusErrored, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// RunStatus — статус выполнения run (всей матрицы по одному триггеру).
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	          (или) → CANCELLED
type RunStatus string

const (
	// RunStatusPending — run создан, но оркестратор ещё не начал выполнение.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все jobs завершились со статусом SUCCEEDED.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — хотя бы один job не SUCCEEDED.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusCancelled — run отменён до завершения всех jobs.
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}
