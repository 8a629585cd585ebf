package orchestrator

import (
	"sync"

	"github.com/shaiso/Gantry/internal/domain"
)

// runState — состояние выполнения одного run в памяти.
//
// Создаётся на время Run и отслеживает статус каждого job. Статусы
// переводит только планирующий цикл; мьютекс нужен лишь для внешнего
// чтения статистики (Stats) во время выполнения.
type runState struct {
	mu sync.RWMutex

	// specs — jobs в порядке разворачивания матрицы.
	specs []domain.JobSpec

	// statuses — текущий статус каждого job (по индексу spec).
	statuses []domain.JobStatus

	// results — терминальные результаты (по индексу spec).
	results []*domain.JobResult

	// nextIndex — следующий незапущенный job.
	nextIndex int

	// running — количество выполняющихся jobs.
	running int

	// terminal — количество jobs в терминальном статусе.
	terminal int

	// aborted — run прерван (fail-fast или внешняя отмена).
	aborted bool

	// reason — причина прерывания.
	reason string
}

func newRunState(specs []domain.JobSpec) *runState {
	statuses := make([]domain.JobStatus, len(specs))
	for i := range statuses {
		statuses[i] = domain.JobStatusPending
	}
	return &runState{
		specs:    specs,
		statuses: statuses,
		results:  make([]*domain.JobResult, len(specs)),
	}
}

// nextPending возвращает индекс следующего незапущенного job и true,
// либо -1 и false, если запускать больше нечего.
func (s *runState) nextPending() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aborted || s.nextIndex >= len(s.specs) {
		return -1, false
	}
	return s.nextIndex, true
}

// markRunning переводит job в RUNNING и занимает слот.
func (s *runState) markRunning(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[index] = domain.JobStatusRunning
	s.nextIndex = index + 1
	s.running++
}

// record фиксирует терминальный результат job и освобождает слот.
func (s *runState) record(index int, result *domain.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[index] = result.Status
	s.results[index] = result
	s.running--
	s.terminal++
}

// abort помечает run прерванным и переводит все ещё не запущенные
// jobs в CANCELLED с синтетическим результатом. Выполняющиеся jobs
// не трогаются: они завершатся сами через отмену контекста.
func (s *runState) abort(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.aborted {
		return
	}
	s.aborted = true
	s.reason = reason

	for i := s.nextIndex; i < len(s.specs); i++ {
		if s.statuses[i] != domain.JobStatusPending {
			continue
		}
		s.statuses[i] = domain.JobStatusCancelled
		s.results[i] = &domain.JobResult{
			JobKey: s.specs[i].Key,
			Index:  i,
			Axes:   s.specs[i].Axes,
			Status: domain.JobStatusCancelled,
			Error:  reason,
		}
		s.terminal++
	}
	s.nextIndex = len(s.specs)
}

// isAborted проверяет, прерван ли run.
func (s *runState) isAborted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aborted
}

// abortReason возвращает причину прерывания.
func (s *runState) abortReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

// runningCount возвращает количество выполняющихся jobs.
func (s *runState) runningCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// isComplete проверяет, все ли jobs терминальны.
func (s *runState) isComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminal == len(s.specs)
}

// resultList возвращает результаты в порядке разворачивания.
func (s *runState) resultList() []*domain.JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.JobResult, len(s.results))
	copy(out, s.results)
	return out
}

// RunStats — статистика выполнения run.
type RunStats struct {
	TotalJobs     int
	PendingJobs   int
	RunningJobs   int
	SucceededJobs int
	FailedJobs    int
	ErroredJobs   int
	CancelledJobs int
}

// Stats возвращает срез статистики выполнения.
func (s *runState) Stats() RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := RunStats{TotalJobs: len(s.specs)}
	for _, st := range s.statuses {
		switch st {
		case domain.JobStatusPending:
			stats.PendingJobs++
		case domain.JobStatusRunning:
			stats.RunningJobs++
		case domain.JobStatusSucceeded:
			stats.SucceededJobs++
		case domain.JobStatusFailed:
			stats.FailedJobs++
		case domain.JobStatusErrored:
			stats.ErroredJobs++
		case domain.JobStatusCancelled:
			stats.CancelledJobs++
		}
	}
	return stats
}
