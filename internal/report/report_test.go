package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
)

func result(index int, key string, status domain.JobStatus) *domain.JobResult {
	return &domain.JobResult{
		JobKey:   key,
		Index:    index,
		Status:   status,
		Duration: time.Duration(index+1) * time.Second,
	}
}

// --- Aggregate Tests ---

func TestAggregate_AllPassed(t *testing.T) {
	outcome := Aggregate(uuid.New(), "ci", []*domain.JobResult{
		result(0, "os=linux", domain.JobStatusSucceeded),
		result(1, "os=macos", domain.JobStatusSucceeded),
	}, "")

	if !outcome.AllPassed {
		t.Error("expected all_passed")
	}
	if outcome.Status() != domain.RunStatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", outcome.Status())
	}
}

func TestAggregate_AnyNonSuccessClearsAllPassed(t *testing.T) {
	statuses := []domain.JobStatus{
		domain.JobStatusFailed,
		domain.JobStatusErrored,
		domain.JobStatusCancelled,
	}

	for _, status := range statuses {
		outcome := Aggregate(uuid.New(), "ci", []*domain.JobResult{
			result(0, "os=linux", domain.JobStatusSucceeded),
			result(1, "os=macos", status),
		}, "")

		if outcome.AllPassed {
			t.Errorf("status %s should clear all_passed", status)
		}
	}
}

func TestAggregate_SortsByExpansionIndex(t *testing.T) {
	// Результаты приходят в порядке завершения, не разворачивания.
	outcome := Aggregate(uuid.New(), "ci", []*domain.JobResult{
		result(2, "os=windows", domain.JobStatusSucceeded),
		result(0, "os=linux", domain.JobStatusSucceeded),
		result(1, "os=macos", domain.JobStatusSucceeded),
	}, "")

	for i, job := range outcome.Jobs {
		if job.Index != i {
			t.Errorf("position %d: expected index %d, got %d", i, i, job.Index)
		}
	}
}

func TestAggregate_SkipsNilResults(t *testing.T) {
	outcome := Aggregate(uuid.New(), "ci", []*domain.JobResult{
		result(0, "os=linux", domain.JobStatusSucceeded),
		nil,
	}, "")

	if len(outcome.Jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(outcome.Jobs))
	}
}

func TestAggregate_CancellationOnlyRunStatus(t *testing.T) {
	outcome := Aggregate(uuid.New(), "ci", []*domain.JobResult{
		result(0, "os=linux", domain.JobStatusCancelled),
		result(1, "os=macos", domain.JobStatusCancelled),
	}, "run cancelled")

	if outcome.Status() != domain.RunStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", outcome.Status())
	}
	if outcome.Reason != "run cancelled" {
		t.Errorf("unexpected reason %q", outcome.Reason)
	}
}

// --- ExitCode Tests ---

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.JobStatus
		want     int
	}{
		{
			name:     "all passed",
			statuses: []domain.JobStatus{domain.JobStatusSucceeded, domain.JobStatusSucceeded},
			want:     ExitOK,
		},
		{
			name:     "tests failed",
			statuses: []domain.JobStatus{domain.JobStatusSucceeded, domain.JobStatusFailed},
			want:     ExitTestsFailed,
		},
		{
			name:     "infra error",
			statuses: []domain.JobStatus{domain.JobStatusSucceeded, domain.JobStatusErrored},
			want:     ExitInfraError,
		},
		{
			// Инфраструктурная ошибка перекрывает тестовые падения.
			name:     "infra error beats failed",
			statuses: []domain.JobStatus{domain.JobStatusFailed, domain.JobStatusErrored},
			want:     ExitInfraError,
		},
		{
			name:     "cancelled only",
			statuses: []domain.JobStatus{domain.JobStatusCancelled, domain.JobStatusCancelled},
			want:     ExitCancelled,
		},
		{
			name:     "failed beats cancelled",
			statuses: []domain.JobStatus{domain.JobStatusFailed, domain.JobStatusCancelled},
			want:     ExitTestsFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]*domain.JobResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = result(i, "job", s)
			}
			outcome := Aggregate(uuid.New(), "ci", results, "")

			if got := ExitCode(outcome); got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

// --- Document Tests ---

func TestBuildAndWrite(t *testing.T) {
	jobResult := result(0, "os=linux/python-version=3.8", domain.JobStatusFailed)
	jobResult.Axes = []domain.AxisValue{
		{Name: "os", Value: "linux"},
		{Name: "python-version", Value: "3.8"},
	}
	jobResult.FailedStep = "run-tests"
	jobResult.Error = "2 of 12 tests failed"
	jobResult.LogRef = "/logs/os-linux.log"

	outcome := Aggregate(uuid.New(), "ci", []*domain.JobResult{jobResult}, "")

	var buf bytes.Buffer
	if err := Write(&buf, outcome); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if doc.Workflow != "ci" || doc.AllPassed {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if len(doc.Jobs) != 1 {
		t.Fatalf("expected 1 job record, got %d", len(doc.Jobs))
	}

	job := doc.Jobs[0]
	if job.Job != "os=linux/python-version=3.8" {
		t.Errorf("unexpected job key %q", job.Job)
	}
	if job.Axes["os"] != "linux" || job.Axes["python-version"] != "3.8" {
		t.Errorf("unexpected axes %v", job.Axes)
	}
	if job.FailedStep != "run-tests" || job.Error == "" {
		t.Errorf("failure details missing: %+v", job)
	}
	if job.DurationMs != 1000 {
		t.Errorf("expected duration 1000ms, got %d", job.DurationMs)
	}
}
