package core

import (
	"context"
	"testing"
	"time"

	"plantcore/pkg/domain"
)

func TestSweepAlarmsEscalatesAndUnshelves(t *testing.T) {
	svc, clock := newTestService(t)
	critical, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "TEMP01", Message: "over limit", Priority: domain.PriorityCritical}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	nuisance, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "LVL-2", Message: "low level", Priority: domain.PriorityHigh}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := svc.ShelveAlarm(t.Context(), nuisance.ID, 5*time.Minute, "known flutter", testOperator); err != nil {
		t.Fatalf("shelve: %v", err)
	}

	monitor := NewMonitor(svc)
	clock.Advance(6 * time.Minute)
	monitor.SweepAlarms(t.Context())

	got, _ := svc.GetAlarm(critical.ID)
	if got.EscalationLevel != 1 {
		t.Fatalf("escalation level = %d, want 1", got.EscalationLevel)
	}
	unshelved, _ := svc.GetAlarm(nuisance.ID)
	if unshelved.State != domain.AlarmActive {
		t.Fatalf("shelved alarm state = %s, want active", unshelved.State)
	}

	clock.Advance(5 * time.Minute)
	monitor.SweepAlarms(t.Context())
	got, _ = svc.GetAlarm(critical.ID)
	if got.EscalationLevel != 2 {
		t.Fatalf("escalation level = %d, want 2", got.EscalationLevel)
	}
}

func TestTickProgressUsesInjectedSource(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.StartBatch(t.Context(), batch.ID, testOperator); err != nil {
		t.Fatalf("start: %v", err)
	}

	monitor := NewMonitor(svc, WithProgressSource(func() float64 { return 1.25 }))
	monitor.TickProgress(t.Context())
	monitor.TickProgress(t.Context())

	got, _ := svc.GetBatch(batch.ID)
	if got.PhaseProgress != 2.5 {
		t.Fatalf("phase progress = %v, want 2.5", got.PhaseProgress)
	}
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t)
	monitor := NewMonitor(svc,
		WithEscalationInterval(time.Millisecond),
		WithProgressInterval(time.Millisecond),
	)
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- monitor.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
