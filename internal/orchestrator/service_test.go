package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
)

// --- Fakes ---

// fakeStore — запоминающий RunStore.
type fakeStore struct {
	mu       sync.Mutex
	created  []*domain.Run
	updated  []*domain.Run
	outcomes []*domain.RunOutcome
	saved    chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(chan struct{}, 1)}
}

func (f *fakeStore) Create(ctx context.Context, run *domain.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, run)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, run *domain.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, run)
	return nil
}

func (f *fakeStore) SaveOutcome(ctx context.Context, run *domain.Run, outcome *domain.RunOutcome) error {
	f.mu.Lock()
	f.outcomes = append(f.outcomes, outcome)
	f.mu.Unlock()

	select {
	case f.saved <- struct{}{}:
	default:
	}
	return nil
}

// fakePublisher — запоминающий EventPublisher.
type fakePublisher struct {
	mu   sync.Mutex
	runs []*domain.RunOutcome
	jobs []string
}

func (f *fakePublisher) PublishRunCompleted(ctx context.Context, outcome *domain.RunOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, outcome)
	return nil
}

func (f *fakePublisher) PublishJobCompleted(ctx context.Context, runID uuid.UUID, result *domain.JobResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, result.JobKey)
	return nil
}

func serviceWorkflow() *domain.Workflow {
	return &domain.Workflow{
		Name: "ci",
		Triggers: domain.Triggers{
			PullRequest: &domain.PullRequestTrigger{Branches: []string{"master"}},
			Dispatch:    true,
		},
		Matrix: domain.Matrix{
			Dimensions: []domain.Dimension{
				{Name: "os", Values: []string{"linux", "macos"}},
			},
		},
		Steps: []domain.StepDef{
			{Kind: domain.StepKindProvision},
			{Kind: domain.StepKindRunTests},
		},
	}
}

func newTestService(t *testing.T, store RunStore, pub EventPublisher) *Service {
	t.Helper()

	svc := NewService(ServiceConfig{
		Workflows:    map[string]*domain.Workflow{"ci": serviceWorkflow()},
		Orchestrator: newTestOrchestrator(&fakeRunner{}),
		Store:        store,
		Publisher:    pub,
	})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc
}

func dispatchEvent() domain.TriggerEvent {
	return domain.TriggerEvent{Kind: domain.TriggerDispatch, OccurredAt: time.Now()}
}

// --- Service Tests ---

func TestService_SubmitUnknownWorkflow(t *testing.T) {
	svc := newTestService(t, nil, nil)
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), "nope", dispatchEvent())
	if !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("expected ErrWorkflowNotFound, got %v", err)
	}
}

func TestService_SubmitUndeclaredTrigger(t *testing.T) {
	svc := newTestService(t, nil, nil)
	defer svc.Stop()

	event := domain.TriggerEvent{Kind: domain.TriggerSchedule, OccurredAt: time.Now()}
	_, err := svc.Submit(context.Background(), "ci", event)
	if !errors.Is(err, ErrTriggerNotDeclared) {
		t.Errorf("expected ErrTriggerNotDeclared, got %v", err)
	}
}

func TestService_SubmitPullRequestBranchFilter(t *testing.T) {
	svc := newTestService(t, nil, nil)
	defer svc.Stop()

	event := domain.TriggerEvent{
		Kind:       domain.TriggerPullRequest,
		Branch:     "feature/foo",
		OccurredAt: time.Now(),
	}
	_, err := svc.Submit(context.Background(), "ci", event)
	if !errors.Is(err, ErrTriggerNotDeclared) {
		t.Errorf("expected ErrTriggerNotDeclared for unlisted branch, got %v", err)
	}

	event.Branch = "master"
	if _, err := svc.Submit(context.Background(), "ci", event); err != nil {
		t.Errorf("unexpected error for declared branch: %v", err)
	}
}

func TestService_SubmitRunsToCompletion(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(t, store, pub)

	run, err := svc.Submit(context.Background(), "ci", dispatchEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunStatusPending {
		t.Errorf("submitted run should be PENDING, got %s", run.Status)
	}

	select {
	case <-store.saved:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish in time")
	}
	svc.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()

	if len(store.created) != 1 {
		t.Fatalf("expected 1 created run, got %d", len(store.created))
	}
	if len(store.outcomes) != 1 {
		t.Fatalf("expected 1 saved outcome, got %d", len(store.outcomes))
	}

	outcome := store.outcomes[0]
	if !outcome.AllPassed {
		t.Error("outcome should be all_passed")
	}
	if len(outcome.Jobs) != 2 {
		t.Errorf("expected 2 jobs (matrix size), got %d", len(outcome.Jobs))
	}
	if outcome.RunID != run.ID {
		t.Error("outcome run id should match submitted run")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.runs) != 1 {
		t.Errorf("expected 1 run.completed event, got %d", len(pub.runs))
	}
	if len(pub.jobs) != 2 {
		t.Errorf("expected 2 job.completed events, got %d", len(pub.jobs))
	}
}

func TestService_SubmitAfterStop(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.Stop()

	_, err := svc.Submit(context.Background(), "ci", dispatchEvent())
	if !errors.Is(err, ErrServiceStopped) {
		t.Errorf("expected ErrServiceStopped, got %v", err)
	}
}

func TestService_StopWaitsForActiveRuns(t *testing.T) {
	store := newFakeStore()
	runner := &fakeRunner{defaultDelay: 100 * time.Millisecond}

	svc := NewService(ServiceConfig{
		Workflows:    map[string]*domain.Workflow{"ci": serviceWorkflow()},
		Orchestrator: newTestOrchestrator(runner),
		Store:        store,
	})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}

	if _, err := svc.Submit(context.Background(), "ci", dispatchEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.Stop()

	// После Stop run доведён до терминального состояния и сохранён.
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.outcomes) != 1 {
		t.Fatalf("expected outcome saved before Stop returned, got %d", len(store.outcomes))
	}
}
