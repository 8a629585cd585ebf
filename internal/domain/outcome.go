package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunOutcome — агрегированный результат одного run.
//
// Создаётся агрегатором один раз после того, как все jobs достигли
// терминального статуса (или run прерван по fail-fast), и после
// этого не мутируется.
type RunOutcome struct {
	// RunID — идентификатор run.
	RunID uuid.UUID `json:"run_id"`

	// Workflow — имя workflow.
	Workflow string `json:"workflow"`

	// AllPassed — true тогда и только тогда, когда каждый job
	// завершился со статусом SUCCEEDED.
	AllPassed bool `json:"all_passed"`

	// Reason — причина досрочного прерывания run (fail-fast, внешняя
	// отмена). Пустая, если run дошёл до конца.
	Reason string `json:"reason,omitempty"`

	// Jobs — результаты всех jobs в порядке разворачивания матрицы.
	// Порядок завершения (зависящий от конкурентности) сюда не
	// протекает: отчёт воспроизводим и поддаётся diff'у.
	Jobs []JobResult `json:"jobs"`

	// FinishedAt — время завершения run.
	FinishedAt time.Time `json:"finished_at"`
}

// Status возвращает статус run, соответствующий outcome.
func (o *RunOutcome) Status() RunStatus {
	if o.AllPassed {
		return RunStatusSucceeded
	}
	for i := range o.Jobs {
		if o.Jobs[i].Status == JobStatusCancelled {
			continue
		}
		if !o.Jobs[i].Passed() {
			return RunStatusFailed
		}
	}
	// Неуспех только из-за отмен.
	return RunStatusCancelled
}

// CountByStatus возвращает количество jobs в каждом статусе.
func (o *RunOutcome) CountByStatus() map[JobStatus]int {
	counts := make(map[JobStatus]int)
	for i := range o.Jobs {
		counts[o.Jobs[i].Status]++
	}
	return counts
}
