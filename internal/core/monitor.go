package core

import (
	"context"
	"math/rand/v2"
	"time"
)

// Monitor periodically applies time-driven behavior that the service exposes
// as explicit commands: alarm escalation, shelve expiry, and batch progress
// ticking.
type Monitor struct {
	service        *Service
	escalateEvery  time.Duration
	progressEvery  time.Duration
	progressSource func() float64
	logger         Logger
}

// MonitorOption configures the monitor.
type MonitorOption func(*Monitor)

// WithEscalationInterval overrides the alarm sweep interval.
func WithEscalationInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.escalateEvery = d
		}
	}
}

// WithProgressInterval overrides the batch progress tick interval.
func WithProgressInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.progressEvery = d
		}
	}
}

// WithProgressSource overrides the per-tick progress increment source. The
// default draws a random increment in [0, 2) percentage points.
func WithProgressSource(fn func() float64) MonitorOption {
	return func(m *Monitor) {
		if fn != nil {
			m.progressSource = fn
		}
	}
}

// WithMonitorLogger sets the logger for sweep failures.
func WithMonitorLogger(logger Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor builds a monitor over the service with default intervals of 30s
// for alarm sweeps and 3s for batch progress.
func NewMonitor(service *Service, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		service:        service,
		escalateEvery:  30 * time.Second,
		progressEvery:  3 * time.Second,
		progressSource: func() float64 { return rand.Float64() * 2 },
		logger:         noopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run blocks until ctx is cancelled, driving both periodic sweeps.
func (m *Monitor) Run(ctx context.Context) error {
	escalate := time.NewTicker(m.escalateEvery)
	defer escalate.Stop()
	progress := time.NewTicker(m.progressEvery)
	defer progress.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-escalate.C:
			m.SweepAlarms(ctx)
		case <-progress.C:
			m.TickProgress(ctx)
		}
	}
}

// SweepAlarms runs one escalation and shelve-expiry pass.
func (m *Monitor) SweepAlarms(ctx context.Context) {
	if _, _, err := m.service.ReactivateExpiredAlarms(ctx); err != nil {
		m.logger.Error("alarm reactivation sweep failed", "error", err)
	}
	if _, _, err := m.service.EscalateAlarms(ctx); err != nil {
		m.logger.Error("alarm escalation sweep failed", "error", err)
	}
}

// TickProgress advances running batches by one increment.
func (m *Monitor) TickProgress(ctx context.Context) {
	if _, err := m.service.TickBatchProgress(ctx, m.progressSource()); err != nil {
		m.logger.Error("batch progress tick failed", "error", err)
	}
}
