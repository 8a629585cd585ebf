package api

import (
	"net/http"
	"sort"
)

// ListWorkflows возвращает все известные workflows.
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows := h.service.Workflows()

	// Map не упорядочен — сортируем по имени для стабильного ответа.
	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].Name < workflows[j].Name
	})

	result := make([]WorkflowResponse, len(workflows))
	for i, wf := range workflows {
		result[i] = WorkflowFromDomain(wf)
	}

	List(w, result, len(result))
}

// GetWorkflow возвращает workflow по имени.
// GET /api/v1/workflows/{name}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	wf, ok := h.service.Workflow(name)
	if !ok {
		NotFound(w, "workflow not found")
		return
	}

	Success(w, WorkflowFromDomain(wf))
}
