package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — экземпляр выполнения workflow по одному триггеру.
//
// Run создаётся когда:
// - Приходит pull request в защищённую ветку
// - Scheduler срабатывает по расписанию
// - Пользователь запускает workflow вручную (CLI/API)
//
// Каждый run разворачивает матрицу заново и выполняет свой набор jobs.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Workflow — имя workflow.
	Workflow string `json:"workflow"`

	// Trigger — событие, породившее run.
	Trigger TriggerEvent `json:"trigger"`

	// Status — текущий статус run.
	Status RunStatus `json:"status"`

	// AllPassed — агрегированный вердикт. Валиден только в
	// терминальном статусе.
	AllPassed bool `json:"all_passed"`

	// Reason — причина досрочного прерывания.
	Reason string `json:"reason,omitempty"`

	// StartedAt — время начала выполнения (статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`
}

// NewRun создаёт run в статусе PENDING.
func NewRun(workflow string, trigger TriggerEvent) *Run {
	return &Run{
		ID:        uuid.New(),
		Workflow:  workflow,
		Trigger:   trigger,
		Status:    RunStatusPending,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkFinished переводит run в терминальный статус согласно outcome.
func (r *Run) MarkFinished(outcome *RunOutcome) {
	now := time.Now()
	r.Status = outcome.Status()
	r.AllPassed = outcome.AllPassed
	r.Reason = outcome.Reason
	r.FinishedAt = &now
}
