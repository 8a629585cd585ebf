package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Gantry/internal/domain"
)

// RunRepo — репозиторий для работы с runs и результатами их jobs.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create создаёт новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, workflow, trigger_kind, branch, commit_sha, status,
		                  all_passed, reason, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Workflow,
		string(run.Trigger.Kind),
		nullString(run.Trigger.Branch),
		nullString(run.Trigger.Commit),
		run.Status,
		run.AllPassed,
		nullString(run.Reason),
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Update обновляет изменяемые поля run.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE runs
		SET status = $2, all_passed = $3, reason = $4, started_at = $5, finished_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.AllPassed,
		nullString(run.Reason),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, workflow, trigger_kind, branch, commit_sha, status,
		       all_passed, reason, started_at, finished_at, created_at
		FROM runs
		WHERE id = $1
	`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список runs с фильтрацией, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	query := `
		SELECT id, workflow, trigger_kind, branch, commit_sha, status,
		       all_passed, reason, started_at, finished_at, created_at
		FROM runs
		WHERE ($1::text IS NULL OR workflow = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.Workflow),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// SaveOutcome сохраняет финальное состояние run и результаты всех его
// jobs одной транзакцией.
func (r *RunRepo) SaveOutcome(ctx context.Context, run *domain.Run, outcome *domain.RunOutcome) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE runs
		SET status = $2, all_passed = $3, reason = $4, started_at = $5, finished_at = $6
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, query,
		run.ID,
		run.Status,
		run.AllPassed,
		nullString(run.Reason),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	insert := `
		INSERT INTO job_results (run_id, job_key, job_index, axes, status,
		                         failed_step, error, log_ref, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i := range outcome.Jobs {
		job := &outcome.Jobs[i]
		axesJSON, err := json.Marshal(job.Axes)
		if err != nil {
			return fmt.Errorf("marshal axes: %w", err)
		}
		_, err = tx.Exec(ctx, insert,
			run.ID,
			job.JobKey,
			job.Index,
			axesJSON,
			job.Status,
			nullString(job.FailedStep),
			nullString(job.Error),
			nullString(job.LogRef),
			job.StartedAt,
			job.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert job result %s: %w", job.JobKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetOutcome восстанавливает RunOutcome завершённого run из БД.
// Возвращает ErrNotFound, если run не существует или ещё не завершён.
func (r *RunRepo) GetOutcome(ctx context.Context, id uuid.UUID) (*domain.RunOutcome, error) {
	run, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !run.IsFinished() || run.FinishedAt == nil {
		return nil, ErrNotFound
	}

	jobs, err := r.ListJobResults(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.RunOutcome{
		RunID:      run.ID,
		Workflow:   run.Workflow,
		AllPassed:  run.AllPassed,
		Reason:     run.Reason,
		Jobs:       jobs,
		FinishedAt: *run.FinishedAt,
	}, nil
}

// ListJobResults возвращает результаты jobs одного run в порядке
// разворачивания матрицы.
func (r *RunRepo) ListJobResults(ctx context.Context, runID uuid.UUID) ([]domain.JobResult, error) {
	query := `
		SELECT job_key, job_index, axes, status, failed_step, error,
		       log_ref, started_at, duration_ms
		FROM job_results
		WHERE run_id = $1
		ORDER BY job_index ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list job results: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobResult
	for rows.Next() {
		var job domain.JobResult
		var axesJSON []byte
		var failedStep, jobError, logRef *string
		var durationMs int64

		err := rows.Scan(
			&job.JobKey,
			&job.Index,
			&axesJSON,
			&job.Status,
			&failedStep,
			&jobError,
			&logRef,
			&job.StartedAt,
			&durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan job result: %w", err)
		}

		if axesJSON != nil {
			if err := json.Unmarshal(axesJSON, &job.Axes); err != nil {
				return nil, fmt.Errorf("unmarshal axes: %w", err)
			}
		}
		if failedStep != nil {
			job.FailedStep = *failedStep
		}
		if jobError != nil {
			job.Error = *jobError
		}
		if logRef != nil {
			job.LogRef = *logRef
		}
		job.Duration = time.Duration(durationMs) * time.Millisecond

		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// --- Helpers ---

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	Workflow string
	Status   domain.RunStatus
	Limit    int
	Offset   int
}

// scanRun сканирует одну строку в Run.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var kind string
	var branch, commit, reason *string

	err := row.Scan(
		&run.ID,
		&run.Workflow,
		&kind,
		&branch,
		&commit,
		&run.Status,
		&run.AllPassed,
		&reason,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.Trigger.Kind = domain.TriggerKind(kind)
	if branch != nil {
		run.Trigger.Branch = *branch
	}
	if commit != nil {
		run.Trigger.Commit = *commit
	}
	if reason != nil {
		run.Reason = *reason
	}

	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
