package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger is anything with a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthStatus is the latest snapshot of external dependencies.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor pings its dependencies on an interval and keeps the result.
type HealthMonitor struct {
	checks   map[string]Pinger
	interval time.Duration

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(interval time.Duration, checks map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{checks: checks, interval: interval}
}

// Status returns the latest snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check runs every probe once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Checks: make(map[string]bool, len(m.checks))}
	for name, p := range m.checks {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := p.Ping(pctx) == nil
		cancel()
		status.Checks[name] = ok
		status.Healthy = status.Healthy && ok
	}
	status.CheckedAt = time.Now()

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Run checks immediately and then on every tick until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context) error {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
