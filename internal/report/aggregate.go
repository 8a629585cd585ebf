package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
)

// Aggregate сворачивает терминальные результаты jobs в RunOutcome.
//
// AllPassed истинно тогда и только тогда, когда каждый job завершился
// SUCCEEDED; любой FAILED, ERRORED или CANCELLED делает его ложным.
//
// Результаты упорядочиваются по индексу разворачивания матрицы
// независимо от того, в каком порядке jobs реально завершились:
// отчёт детерминирован и поддаётся diff'у между запусками.
//
// Функция чистая: входные результаты не мутируются, outcome после
// создания не меняется.
func Aggregate(runID uuid.UUID, workflow string, results []*domain.JobResult, reason string) *domain.RunOutcome {
	jobs := make([]domain.JobResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		jobs = append(jobs, *r)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].Index < jobs[j].Index
	})

	allPassed := true
	for i := range jobs {
		if !jobs[i].Passed() {
			allPassed = false
			break
		}
	}

	return &domain.RunOutcome{
		RunID:      runID,
		Workflow:   workflow,
		AllPassed:  allPassed,
		Reason:     reason,
		Jobs:       jobs,
		FinishedAt: time.Now(),
	}
}
