package domain

import "time"

// TriggerKind — вид события, запустившего run.
type TriggerKind string

const (
	// TriggerPullRequest — pull request в защищённую ветку.
	TriggerPullRequest TriggerKind = "pull_request"

	// TriggerSchedule — запуск по расписанию.
	TriggerSchedule TriggerKind = "schedule"

	// TriggerDispatch — ручной запуск (CLI или API).
	TriggerDispatch TriggerKind = "dispatch"
)

// TriggerEvent — дескриптор события-триггера.
//
// Событие — единственный неизменяемый вход одного вызова оркестратора:
// каждый run строится как независимый экземпляр без памяти между runs.
type TriggerEvent struct {
	// Kind — вид триггера.
	Kind TriggerKind `json:"kind"`

	// Branch — целевая ветка (для pull_request).
	Branch string `json:"branch,omitempty"`

	// Commit — SHA коммита, если известен.
	Commit string `json:"commit,omitempty"`

	// OccurredAt — время события.
	OccurredAt time.Time `json:"occurred_at"`
}
