package health

import (
	"context"
	"sync"
	"time"
)

// Checker reports whether a single dependency is reachable.
type Checker interface {
	Health(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Health(ctx context.Context) error { return f(ctx) }

type component struct {
	name     string
	checker  Checker
	critical bool
}

// Monitor aggregates health status from registered dependencies.
type Monitor struct {
	components []component
	lastCheck  time.Time
	lastReport *Report
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Register adds a dependency to check. Critical dependencies take the whole
// system to critical when unreachable; non-critical ones only degrade it.
func (m *Monitor) Register(name string, checker Checker, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, checker: checker, critical: critical})
}

// CheckHealth pings every registered dependency and aggregates the result.
// The lock only guards the component list and the cached report; the pings
// themselves run outside it so a slow dependency cannot stall other probes.
func (m *Monitor) CheckHealth(ctx context.Context) *Report {
	m.mu.Lock()
	// Rate limit checks to avoid hammering dependencies from probes.
	if time.Since(m.lastCheck) < 10*time.Second && m.lastReport != nil {
		report := m.lastReport
		m.mu.Unlock()
		return report
	}
	components := make([]component, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	report := &Report{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(components)),
	}

	for _, c := range components {
		ch := ComponentHealth{Name: c.name, Status: StatusHealthy}
		if err := c.checker.Health(ctx); err != nil {
			ch.Error = err.Error()
			if c.critical {
				ch.Status = StatusCritical
				report.SystemStatus = StatusCritical
			} else {
				ch.Status = StatusDegraded
				if report.SystemStatus != StatusCritical {
					report.SystemStatus = StatusDegraded
				}
			}
		}
		report.Components[c.name] = ch
	}

	m.mu.Lock()
	m.lastCheck = time.Now()
	m.lastReport = report
	m.mu.Unlock()
	return report
}
