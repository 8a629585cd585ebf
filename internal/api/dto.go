package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
)

// Workflow DTOs

// AxisResponse — одна ось матрицы.
type AxisResponse struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// StepResponse — один шаг workflow.
type StepResponse struct {
	Name       string `json:"name,omitempty"`
	Kind       string `json:"kind"`
	TimeoutSec int    `json:"timeout_sec,omitempty"`
}

// TriggersResponse — декларация триггеров workflow.
type TriggersResponse struct {
	PullRequestBranches []string `json:"pull_request_branches,omitempty"`
	ScheduleCron        string   `json:"schedule_cron,omitempty"`
	Dispatch            bool     `json:"dispatch"`
}

// WorkflowResponse — ответ с workflow.
type WorkflowResponse struct {
	Name     string           `json:"name"`
	Triggers TriggersResponse `json:"triggers"`
	Matrix   []AxisResponse   `json:"matrix"`
	JobCount int              `json:"job_count"`
	Steps    []StepResponse   `json:"steps"`
	Policy   PolicyResponse   `json:"policy"`
}

// PolicyResponse — политика выполнения workflow.
type PolicyResponse struct {
	MaxParallel int  `json:"max_parallel"`
	FailFast    bool `json:"fail_fast"`
}

// WorkflowFromDomain конвертирует domain.Workflow в WorkflowResponse.
func WorkflowFromDomain(wf *domain.Workflow) WorkflowResponse {
	resp := WorkflowResponse{
		Name:     wf.Name,
		JobCount: wf.Matrix.Size(),
		Policy: PolicyResponse{
			MaxParallel: wf.Policy.MaxParallel,
			FailFast:    wf.Policy.FailFast,
		},
	}

	if wf.Triggers.PullRequest != nil {
		resp.Triggers.PullRequestBranches = wf.Triggers.PullRequest.Branches
	}
	if wf.Triggers.Schedule != nil {
		resp.Triggers.ScheduleCron = wf.Triggers.Schedule.Cron
	}
	resp.Triggers.Dispatch = wf.Triggers.Dispatch

	for _, dim := range wf.Matrix.Dimensions {
		resp.Matrix = append(resp.Matrix, AxisResponse{
			Name:   dim.Name,
			Values: dim.Values,
		})
	}

	for _, step := range wf.Steps {
		resp.Steps = append(resp.Steps, StepResponse{
			Name:       step.Name,
			Kind:       string(step.Kind),
			TimeoutSec: step.TimeoutSec,
		})
	}

	return resp
}

// Run DTOs

// CreateRunRequest — запрос на запуск run.
type CreateRunRequest struct {
	// Trigger — вид триггера: dispatch (default) или pull_request.
	Trigger string `json:"trigger,omitempty"`

	// Branch — целевая ветка (для pull_request).
	Branch string `json:"branch,omitempty"`

	// Commit — SHA коммита, если известен.
	Commit string `json:"commit,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID          uuid.UUID  `json:"id"`
	Workflow    string     `json:"workflow"`
	TriggerKind string     `json:"trigger_kind"`
	Branch      string     `json:"branch,omitempty"`
	Status      string     `json:"status"`
	AllPassed   bool       `json:"all_passed"`
	Reason      string     `json:"reason,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:          r.ID,
		Workflow:    r.Workflow,
		TriggerKind: string(r.Trigger.Kind),
		Branch:      r.Trigger.Branch,
		Status:      string(r.Status),
		AllPassed:   r.AllPassed,
		Reason:      r.Reason,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// JobResultResponse — ответ с результатом одного job.
type JobResultResponse struct {
	JobKey     string     `json:"job_key"`
	Index      int        `json:"index"`
	Axes       []AxisPair `json:"axes"`
	Status     string     `json:"status"`
	FailedStep string     `json:"failed_step,omitempty"`
	Error      string     `json:"error,omitempty"`
	LogRef     string     `json:"log_ref,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

// AxisPair — выбранное значение одной оси.
type AxisPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// JobResultFromDomain конвертирует domain.JobResult в JobResultResponse.
func JobResultFromDomain(j domain.JobResult) JobResultResponse {
	resp := JobResultResponse{
		JobKey:     j.JobKey,
		Index:      j.Index,
		Status:     string(j.Status),
		FailedStep: j.FailedStep,
		Error:      j.Error,
		LogRef:     j.LogRef,
		StartedAt:  j.StartedAt,
		DurationMs: j.Duration.Milliseconds(),
	}
	for _, a := range j.Axes {
		resp.Axes = append(resp.Axes, AxisPair{Name: a.Name, Value: a.Value})
	}
	return resp
}

// OutcomeResponse — агрегированный результат run.
type OutcomeResponse struct {
	RunID      uuid.UUID           `json:"run_id"`
	Workflow   string              `json:"workflow"`
	Status     string              `json:"status"`
	AllPassed  bool                `json:"all_passed"`
	Reason     string              `json:"reason,omitempty"`
	Jobs       []JobResultResponse `json:"jobs"`
	FinishedAt time.Time           `json:"finished_at"`
}

// OutcomeFromDomain конвертирует domain.RunOutcome в OutcomeResponse.
func OutcomeFromDomain(o *domain.RunOutcome) OutcomeResponse {
	resp := OutcomeResponse{
		RunID:      o.RunID,
		Workflow:   o.Workflow,
		Status:     string(o.Status()),
		AllPassed:  o.AllPassed,
		Reason:     o.Reason,
		FinishedAt: o.FinishedAt,
	}
	for _, j := range o.Jobs {
		resp.Jobs = append(resp.Jobs, JobResultFromDomain(j))
	}
	return resp
}
