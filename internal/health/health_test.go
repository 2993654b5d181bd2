package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckHealth_AllHealthy(t *testing.T) {
	m := NewMonitor()
	m.Register("database", CheckerFunc(func(ctx context.Context) error { return nil }), true)
	m.Register("cache", CheckerFunc(func(ctx context.Context) error { return nil }), false)

	report := m.CheckHealth(context.Background())

	if report.SystemStatus != StatusHealthy {
		t.Errorf("Expected healthy, got %s", report.SystemStatus)
	}
	if len(report.Components) != 2 {
		t.Errorf("Expected 2 components, got %d", len(report.Components))
	}
}

func TestCheckHealth_CriticalFailure(t *testing.T) {
	m := NewMonitor()
	m.Register("database", CheckerFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	}), true)

	report := m.CheckHealth(context.Background())

	if report.SystemStatus != StatusCritical {
		t.Errorf("Expected critical, got %s", report.SystemStatus)
	}
	if report.Components["database"].Error != "connection refused" {
		t.Errorf("Expected error message, got %q", report.Components["database"].Error)
	}
}

func TestCheckHealth_NonCriticalDegrades(t *testing.T) {
	m := NewMonitor()
	m.Register("database", CheckerFunc(func(ctx context.Context) error { return nil }), true)
	m.Register("cache", CheckerFunc(func(ctx context.Context) error {
		return errors.New("redis down")
	}), false)

	report := m.CheckHealth(context.Background())

	if report.SystemStatus != StatusDegraded {
		t.Errorf("Expected degraded, got %s", report.SystemStatus)
	}
}

func TestCheckHealth_SlowCheckerDoesNotHoldLock(t *testing.T) {
	m := NewMonitor()

	entered := make(chan struct{})
	release := make(chan struct{})
	m.Register("database", CheckerFunc(func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}), true)

	go m.CheckHealth(context.Background())
	<-entered

	// With the ping in flight the monitor must still take registrations;
	// holding the lock across the ping would block here until release.
	registered := make(chan struct{})
	go func() {
		m.Register("cache", CheckerFunc(func(ctx context.Context) error { return nil }), false)
		close(registered)
	}()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked behind an in-flight health check")
	}
	close(release)
}

func TestCheckHealth_ReportCached(t *testing.T) {
	calls := 0
	m := NewMonitor()
	m.Register("database", CheckerFunc(func(ctx context.Context) error {
		calls++
		return nil
	}), true)

	m.CheckHealth(context.Background())
	m.CheckHealth(context.Background())

	if calls != 1 {
		t.Errorf("Expected 1 check within the rate-limit window, got %d", calls)
	}
}
