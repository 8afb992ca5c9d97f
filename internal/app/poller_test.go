package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotspotd/internal/adapter/memory"
	"hotspotd/internal/app"
	"hotspotd/internal/domain"
)

type mockControl struct {
	fetchFn  func(ctx context.Context) ([]domain.Command, error)
	reportFn func(ctx context.Context, commandID int64, result domain.CommandResult) error

	reported []int64
}

func (m *mockControl) Fetch(ctx context.Context) ([]domain.Command, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}
	return nil, nil
}

func (m *mockControl) Report(ctx context.Context, commandID int64, result domain.CommandResult) error {
	m.reported = append(m.reported, commandID)
	if m.reportFn != nil {
		return m.reportFn(ctx, commandID, result)
	}
	return nil
}

type recordingExecutor struct {
	executed []int64
	results  map[int64]domain.CommandResult
}

func (r *recordingExecutor) Execute(_ context.Context, cmd domain.Command) domain.CommandResult {
	r.executed = append(r.executed, cmd.ID)
	if res, ok := r.results[cmd.ID]; ok {
		return res
	}
	return domain.Success("ok")
}

func TestRunOnce_ExecutesInIDOrder(t *testing.T) {
	control := &mockControl{
		fetchFn: func(_ context.Context) ([]domain.Command, error) {
			return []domain.Command{
				{ID: 5, Type: domain.CommandAddUser},
				{ID: 1, Type: domain.CommandAddUser},
				{ID: 3, Type: domain.CommandAddUser},
			}, nil
		},
	}
	executor := &recordingExecutor{}
	p := app.NewPoller(control, executor, nil, "dev1", time.Second)

	p.RunOnce(context.Background())

	want := []int64{1, 3, 5}
	if len(executor.executed) != len(want) {
		t.Fatalf("expected %d executions, got %d", len(want), len(executor.executed))
	}
	for i, id := range want {
		if executor.executed[i] != id {
			t.Errorf("execution order[%d] = %d; want %d", i, executor.executed[i], id)
		}
		if control.reported[i] != id {
			t.Errorf("report order[%d] = %d; want %d", i, control.reported[i], id)
		}
	}
}

func TestRunOnce_MalformedBatchSkipped(t *testing.T) {
	control := &mockControl{
		fetchFn: func(_ context.Context) ([]domain.Command, error) {
			return nil, domain.ErrMalformedBatch
		},
	}
	executor := &recordingExecutor{}
	p := app.NewPoller(control, executor, nil, "dev1", time.Second)

	p.RunOnce(context.Background())

	if len(executor.executed) != 0 {
		t.Errorf("expected no command executed, got %v", executor.executed)
	}
	if len(control.reported) != 0 {
		t.Errorf("expected no report sent, got %v", control.reported)
	}
}

func TestRunOnce_ReportFailureDoesNotStopBatch(t *testing.T) {
	control := &mockControl{
		fetchFn: func(_ context.Context) ([]domain.Command, error) {
			return []domain.Command{{ID: 1}, {ID: 2}}, nil
		},
		reportFn: func(_ context.Context, commandID int64, _ domain.CommandResult) error {
			if commandID == 1 {
				return errors.New("control server unreachable")
			}
			return nil
		},
	}
	executor := &recordingExecutor{}
	p := app.NewPoller(control, executor, nil, "dev1", time.Second)

	p.RunOnce(context.Background())

	if len(executor.executed) != 2 {
		t.Errorf("expected both commands executed, got %v", executor.executed)
	}
}

func TestRunOnce_JournalsOutcomes(t *testing.T) {
	control := &mockControl{
		fetchFn: func(_ context.Context) ([]domain.Command, error) {
			return []domain.Command{{ID: 7, Type: domain.CommandLoginUser}}, nil
		},
	}
	executor := &recordingExecutor{
		results: map[int64]domain.CommandResult{7: domain.Failure("host entry not found")},
	}
	journal := memory.NewJournal()
	p := app.NewPoller(control, executor, journal, "dev1", time.Second)

	p.RunOnce(context.Background())

	entries, err := journal.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(entries))
	}
	e := entries[0]
	if e.CommandID != 7 || e.Type != domain.CommandLoginUser || e.Status != domain.StatusError {
		t.Errorf("unexpected journal entry: %+v", e)
	}
}

func TestRun_StopsBetweenCycles(t *testing.T) {
	control := &mockControl{}
	p := app.NewPoller(control, &recordingExecutor{}, nil, "dev1", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
	if p.LastPoll().IsZero() {
		t.Error("expected last-poll timestamp set after the first cycle")
	}
}
