package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shaiso/Gantry/internal/domain"
)

// Exit-коды процесса по классу неуспеха.
//
// Ноль тогда и только тогда, когда all_passed; конкретное ненулевое
// значение различает класс проблемы для оператора.
const (
	// ExitOK — все jobs SUCCEEDED.
	ExitOK = 0

	// ExitTestsFailed — есть jobs со статусом FAILED.
	ExitTestsFailed = 1

	// ExitInfraError — есть jobs со статусом ERRORED.
	ExitInfraError = 2

	// ExitConfigError — невалидная декларация, run не стартовал.
	ExitConfigError = 3

	// ExitCancelled — неуспех только из-за отменённых jobs.
	ExitCancelled = 4
)

// ExitCode вычисляет exit-код процесса по outcome.
//
// Приоритет классов: инфраструктурные ошибки заметнее тестовых
// падений, отмена — слабейший класс.
func ExitCode(outcome *domain.RunOutcome) int {
	if outcome.AllPassed {
		return ExitOK
	}

	counts := outcome.CountByStatus()
	switch {
	case counts[domain.JobStatusErrored] > 0:
		return ExitInfraError
	case counts[domain.JobStatusFailed] > 0:
		return ExitTestsFailed
	default:
		return ExitCancelled
	}
}

// JobRecord — одна строка машиночитаемого отчёта.
type JobRecord struct {
	Job        string            `json:"job"`
	Axes       map[string]string `json:"axes"`
	Status     domain.JobStatus  `json:"status"`
	DurationMs int64             `json:"duration_ms"`
	LogRef     string            `json:"log_ref,omitempty"`
	FailedStep string            `json:"failed_step,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Document — машиночитаемый отчёт по run.
type Document struct {
	RunID     string      `json:"run_id"`
	Workflow  string      `json:"workflow"`
	AllPassed bool        `json:"all_passed"`
	Reason    string      `json:"reason,omitempty"`
	Jobs      []JobRecord `json:"jobs"`
}

// Build строит машиночитаемый документ из outcome.
// Порядок jobs — порядок разворачивания матрицы из outcome.
func Build(outcome *domain.RunOutcome) *Document {
	doc := &Document{
		RunID:     outcome.RunID.String(),
		Workflow:  outcome.Workflow,
		AllPassed: outcome.AllPassed,
		Reason:    outcome.Reason,
		Jobs:      make([]JobRecord, len(outcome.Jobs)),
	}

	for i := range outcome.Jobs {
		job := &outcome.Jobs[i]

		axes := make(map[string]string, len(job.Axes))
		for _, a := range job.Axes {
			axes[a.Name] = a.Value
		}

		doc.Jobs[i] = JobRecord{
			Job:        job.JobKey,
			Axes:       axes,
			Status:     job.Status,
			DurationMs: job.Duration.Milliseconds(),
			LogRef:     job.LogRef,
			FailedStep: job.FailedStep,
			Error:      job.Error,
		}
	}

	return doc
}

// Write сериализует отчёт в JSON с отступами.
func Write(w io.Writer, outcome *domain.RunOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(outcome)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile сохраняет отчёт в файл.
func WriteFile(path string, outcome *domain.RunOutcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	return Write(f, outcome)
}
