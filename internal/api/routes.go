package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Workflows
	mux.Handle("GET /api/v1/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
	mux.Handle("GET /api/v1/workflows/{name}", chain(http.HandlerFunc(h.GetWorkflow)))
	mux.Handle("POST /api/v1/workflows/{name}/runs", chain(http.HandlerFunc(h.CreateRun)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("GET /api/v1/runs/{id}/jobs", chain(http.HandlerFunc(h.ListRunJobs)))
	mux.Handle("GET /api/v1/runs/{id}/outcome", chain(http.HandlerFunc(h.GetRunOutcome)))
}
