package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
	"github.com/shaiso/Gantry/internal/repo"
)

// CreateRun запускает run для workflow.
// POST /api/v1/workflows/{name}/runs
//
// Выполнение асинхронное: ответ 202 содержит run в статусе PENDING,
// прогресс отслеживается через GET /runs/{id}.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "invalid request body")
		return
	}

	kind := domain.TriggerDispatch
	switch req.Trigger {
	case "", string(domain.TriggerDispatch):
	case string(domain.TriggerPullRequest):
		kind = domain.TriggerPullRequest
		if req.Branch == "" {
			BadRequest(w, "pull_request trigger requires branch")
			return
		}
	default:
		BadRequest(w, "unknown trigger kind")
		return
	}

	event := domain.TriggerEvent{
		Kind:       kind,
		Branch:     req.Branch,
		Commit:     req.Commit,
		OccurredAt: time.Now(),
	}

	run, err := h.service.Submit(r.Context(), name, event)
	if HandleSubmitError(w, h.logger, err) {
		return
	}

	Accepted(w, RunFromDomain(*run))
}

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?workflow=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{
		Workflow: r.URL.Query().Get("workflow"),
		Status:   domain.RunStatus(r.URL.Query().Get("status")),
		Limit:    parseIntParam(r, "limit", 50),
		Offset:   parseIntParam(r, "offset", 0),
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// ListRunJobs возвращает результаты jobs одного run в порядке
// разворачивания матрицы.
// GET /api/v1/runs/{id}/jobs
func (h *Handler) ListRunJobs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что run существует
	if _, err := h.runRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	jobs, err := h.runRepo.ListJobResults(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]JobResultResponse, len(jobs))
	for i, j := range jobs {
		result[i] = JobResultFromDomain(j)
	}

	List(w, result, len(result))
}

// GetRunOutcome возвращает агрегированный outcome завершённого run.
// GET /api/v1/runs/{id}/outcome
func (h *Handler) GetRunOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	outcome, err := h.runRepo.GetOutcome(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found or not finished") {
		return
	}

	Success(w, OutcomeFromDomain(outcome))
}

// parseIntParam парсит числовой query параметр с дефолтным значением.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
