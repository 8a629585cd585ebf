package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
)

// fakeSubmitter записывает принятые события.
type fakeSubmitter struct {
	submissions []submission
}

type submission struct {
	workflow string
	event    domain.TriggerEvent
}

func (f *fakeSubmitter) Submit(_ context.Context, workflow string, event domain.TriggerEvent) (*domain.Run, error) {
	f.submissions = append(f.submissions, submission{workflow: workflow, event: event})
	return &domain.Run{ID: uuid.New(), Workflow: workflow}, nil
}

func scheduledWorkflow(name, cronExpr string) *domain.Workflow {
	return &domain.Workflow{
		Name: name,
		Triggers: domain.Triggers{
			Schedule: &domain.ScheduleTrigger{Cron: cronExpr},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- NextDue Tests ---

func TestNextDue_DailySchedule(t *testing.T) {
	trig := &domain.ScheduleTrigger{Cron: "0 6 * * *"}
	from := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	next, err := NextDue(trig, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestNextDue_TimezoneShiftsDueTime(t *testing.T) {
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	utc, err := NextDue(&domain.ScheduleTrigger{Cron: "0 6 * * *"}, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rome, err := NextDue(&domain.ScheduleTrigger{Cron: "0 6 * * *", Timezone: "Europe/Rome"}, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 06:00 в Риме зимой — это 05:00 UTC.
	if !rome.Equal(utc.Add(-time.Hour)) {
		t.Errorf("expected Rome due one hour before UTC due: utc=%v rome=%v", utc, rome)
	}
}

func TestNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	got, err := NextDue(&domain.ScheduleTrigger{Cron: "0 6 * * *", Timezone: "Mars/Olympus"}, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected UTC fallback %v, got %v", want, got)
	}
}

func TestNextDue_InvalidCron(t *testing.T) {
	_, err := NextDue(&domain.ScheduleTrigger{Cron: "not a cron"}, time.Now())
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("unexpected error for valid expression: %v", err)
	}
	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("expected error for out-of-range minute")
	}
}

// --- Scheduler Tests ---

func TestNew_SkipsWorkflowsWithoutSchedule(t *testing.T) {
	s := New(Config{
		Workflows: []*domain.Workflow{
			scheduledWorkflow("nightly", "0 2 * * *"),
			{Name: "ci", Triggers: domain.Triggers{Dispatch: true}},
		},
		Submitter: &fakeSubmitter{},
		Logger:    testLogger(),
	})

	if s.Scheduled() != 1 {
		t.Errorf("expected 1 scheduled workflow, got %d", s.Scheduled())
	}
}

func TestNew_SkipsInvalidCron(t *testing.T) {
	s := New(Config{
		Workflows: []*domain.Workflow{
			scheduledWorkflow("broken", "* * *"),
			scheduledWorkflow("nightly", "0 2 * * *"),
		},
		Submitter: &fakeSubmitter{},
		Logger:    testLogger(),
	})

	if s.Scheduled() != 1 {
		t.Errorf("expected invalid cron to be skipped, got %d scheduled", s.Scheduled())
	}
}

func TestTick_FiresDueWorkflow(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := New(Config{
		Workflows: []*domain.Workflow{scheduledWorkflow("nightly", "* * * * *")},
		Submitter: submitter,
		Logger:    testLogger(),
	})

	due := s.nextDue["nightly"]
	s.Tick(context.Background(), due.Add(time.Second))

	if len(submitter.submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(submitter.submissions))
	}

	sub := submitter.submissions[0]
	if sub.workflow != "nightly" {
		t.Errorf("unexpected workflow %q", sub.workflow)
	}
	if sub.event.Kind != domain.TriggerSchedule {
		t.Errorf("expected schedule trigger, got %s", sub.event.Kind)
	}
	if !sub.event.OccurredAt.Equal(due) {
		t.Errorf("expected event time %v, got %v", due, sub.event.OccurredAt)
	}
}

func TestTick_DoesNotFireBeforeDue(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := New(Config{
		Workflows: []*domain.Workflow{scheduledWorkflow("nightly", "* * * * *")},
		Submitter: submitter,
		Logger:    testLogger(),
	})

	s.Tick(context.Background(), s.nextDue["nightly"].Add(-time.Second))

	if len(submitter.submissions) != 0 {
		t.Errorf("expected no submissions before due time, got %d", len(submitter.submissions))
	}
}

func TestTick_AdvancesNextDue(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := New(Config{
		Workflows: []*domain.Workflow{scheduledWorkflow("nightly", "* * * * *")},
		Submitter: submitter,
		Logger:    testLogger(),
	})

	first := s.nextDue["nightly"]
	now := first.Add(time.Second)
	s.Tick(context.Background(), now)

	advanced := s.nextDue["nightly"]
	if !advanced.After(now) {
		t.Errorf("expected next due after %v, got %v", now, advanced)
	}

	// Повторный тик в то же время не срабатывает ещё раз.
	s.Tick(context.Background(), now)
	if len(submitter.submissions) != 1 {
		t.Errorf("expected exactly 1 submission, got %d", len(submitter.submissions))
	}
}
