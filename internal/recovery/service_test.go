package recovery

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/infra/storage/memory"
)

type serviceFixture struct {
	*fixture
	svc      *Service
	attempts *memory.AttemptRepo
}

func newServiceFixture(t *testing.T, cfg ServiceConfig) *serviceFixture {
	t.Helper()
	f := newFixture(t)
	attempts := memory.NewAttemptRepo(memory.NewMemoryStorage())
	return &serviceFixture{
		fixture:  f,
		attempts: attempts,
		svc:      NewService(cfg, f.orch, f.videos, attempts, slog.New(slog.DiscardHandler)),
	}
}

func TestServiceRecover_IdempotencyWindow(t *testing.T) {
	sf := newServiceFixture(t, DefaultServiceConfig())

	recovered := time.Now().UTC().Add(-time.Minute)
	sf.videos.Seed(&domain.Video{
		ID:          "abc",
		Status:      domain.VideoStatusDeleted,
		RecoveredAt: &recovered,
	})

	result := sf.svc.Recover(context.Background(), "abc", Options{})

	if !result.Success {
		t.Fatalf("expected no-op success, got %+v", result)
	}
	if sf.fetcher.callCount() != 0 {
		t.Error("idempotent no-op must not contact the archive")
	}
	if len(sf.attempts.Attempts()) != 0 {
		t.Error("no-op must not record an attempt")
	}
}

func TestServiceRecover_WindowExpired(t *testing.T) {
	sf := newServiceFixture(t, DefaultServiceConfig())

	recovered := time.Now().UTC().Add(-time.Hour)
	sf.videos.Seed(&domain.Video{
		ID:          "abc",
		Status:      domain.VideoStatusDeleted,
		RecoveredAt: &recovered,
	})

	result := sf.svc.Recover(context.Background(), "abc", Options{})

	// Window expired: a real run happens and fails on empty CDX results.
	if result.Success {
		t.Fatalf("expected a real run, got %+v", result)
	}
	if sf.fetcher.callCount() != 1 {
		t.Errorf("fetcher calls = %d, want 1", sf.fetcher.callCount())
	}
}

func TestServiceRecover_RecordsAttempt(t *testing.T) {
	sf := newServiceFixture(t, DefaultServiceConfig())
	sf.seedUnavailableVideo("abc")
	sf.fetcher.snapshots = []*domain.Snapshot{snap("20200101000000")}
	sf.extractor.results["20200101000000"] = &domain.RecoveredData{
		Title: "recovered", Timestamp: "20200101000000",
	}

	sf.svc.Recover(context.Background(), "abc", Options{})

	attempts := sf.attempts.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	a := attempts[0]
	if a.VideoID != "abc" || !a.Success || a.SnapshotUsed != "20200101000000" {
		t.Errorf("unexpected attempt: %+v", a)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Errorf("attempt missing id or timestamp: %+v", a)
	}
}

func TestServiceRecover_RecordsFailedAttempt(t *testing.T) {
	sf := newServiceFixture(t, DefaultServiceConfig())

	sf.svc.Recover(context.Background(), "missing", Options{})

	attempts := sf.attempts.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	if attempts[0].Success || attempts[0].FailureReason != string(domain.FailureVideoNotFound) {
		t.Errorf("unexpected attempt: %+v", attempts[0])
	}
}

func TestServiceRecoverBatch_Sequential(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.BatchDelay = time.Millisecond
	sf := newServiceFixture(t, cfg)

	sf.seedUnavailableVideo("a")
	sf.seedUnavailableVideo("b")
	sf.seedUnavailableVideo("c")

	results := sf.svc.RecoverBatch(context.Background(), []string{"a", "b", "c"}, Options{})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, id := range []string{"a", "b", "c"} {
		if results[i].VideoID != id {
			t.Errorf("results[%d].VideoID = %q, want %q", i, results[i].VideoID, id)
		}
	}
	if got := len(sf.attempts.Attempts()); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestServiceRecoverBatch_Cancellation(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.BatchDelay = time.Hour
	sf := newServiceFixture(t, cfg)

	sf.seedUnavailableVideo("a")
	sf.seedUnavailableVideo("b")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []*domain.RecoveryResult, 1)
	go func() {
		done <- sf.svc.RecoverBatch(ctx, []string{"a", "b"}, Options{})
	}()

	// Let the first item finish, then cancel during the inter-item delay.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case results := <-done:
		if len(results) != 1 {
			t.Errorf("results = %d, want 1 (stopped between items)", len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not stop after cancellation")
	}
}
