package core

import (
	"errors"
	"testing"
	"time"

	"plantcore/pkg/domain"
)

func TestGenerateAlarmWritesGenerationAudit(t *testing.T) {
	svc, _ := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{
		Message:  "over limit",
		Source:   "TEMP01",
		Priority: domain.PriorityCritical,
	}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if alarm.State != domain.AlarmActive || alarm.EscalationLevel != 0 {
		t.Fatalf("unexpected alarm %+v", alarm)
	}
	entry := latestAudit(t, svc)
	if entry.Action != "Alarm Generated" || entry.TargetName != "TEMP01" || entry.NewValue != "CRITICAL" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
}

func TestAcknowledgeAlarmIsIdempotentWithSingleAudit(t *testing.T) {
	svc, _ := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "PT-101", Message: "pressure high", Priority: domain.PriorityHigh}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	acked, _, err := svc.AcknowledgeAlarm(t.Context(), alarm.ID, "on it", testOperator)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if acked.State != domain.AlarmAcknowledged || acked.AcknowledgedBy != testOperator.FullName || acked.AcknowledgedAt == nil {
		t.Fatalf("unexpected alarm %+v", acked)
	}
	entry := latestAudit(t, svc)
	if entry.Action != "Alarm Acknowledged" || entry.Comment != "on it" || entry.TargetName != "PT-101" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	_, _, err = svc.AcknowledgeAlarm(t.Context(), alarm.ID, "", testOperator)
	var te domain.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("second acknowledge: want TransitionError, got %v", err)
	}
	again, _ := svc.GetAlarm(alarm.ID)
	if again.State != domain.AlarmAcknowledged {
		t.Fatalf("state changed by rejected command: %s", again.State)
	}
	if n := countAuditAction(svc, "Alarm Acknowledged"); n != 1 {
		t.Fatalf("acknowledge audit entries = %d, want 1", n)
	}
}

func TestAcknowledgeAllWritesOneEntryPerAlarm(t *testing.T) {
	svc, _ := newTestService(t)
	for _, src := range []string{"TEMP01", "PT-101", "FLOW-3"} {
		if _, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: src, Message: "m", Priority: domain.PriorityMedium}, domain.SystemActor); err != nil {
			t.Fatalf("generate %s: %v", src, err)
		}
	}
	count, _, err := svc.AcknowledgeAllAlarms(t.Context(), testOperator)
	if err != nil {
		t.Fatalf("acknowledge all: %v", err)
	}
	if count != 3 {
		t.Fatalf("acknowledged = %d, want 3", count)
	}
	if n := countAuditAction(svc, "Alarm Acknowledged (Bulk)"); n != 3 {
		t.Fatalf("bulk audit entries = %d, want 3", n)
	}
	for _, a := range svc.ListAlarms() {
		if a.State != domain.AlarmAcknowledged {
			t.Fatalf("alarm %s not acknowledged", a.ID)
		}
	}

	// No active alarms left; a second bulk call is a no-op.
	count, _, err = svc.AcknowledgeAllAlarms(t.Context(), testOperator)
	if err != nil || count != 0 {
		t.Fatalf("second bulk call: count=%d err=%v", count, err)
	}
}

func TestShelveAlarmFormatsAuditAndReactivates(t *testing.T) {
	svc, clock := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "LVL-2", Message: "low level", Priority: domain.PriorityLow}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	shelved, _, err := svc.ShelveAlarm(t.Context(), alarm.ID, 30*time.Minute, "sensor maintenance", testOperator)
	if err != nil {
		t.Fatalf("shelve: %v", err)
	}
	if shelved.State != domain.AlarmShelved || shelved.ShelvedUntil == nil || shelved.ShelvedReason != "sensor maintenance" {
		t.Fatalf("unexpected alarm %+v", shelved)
	}
	entry := latestAudit(t, svc)
	if entry.Action != "Alarm Shelved" || entry.Comment != "Duration: 30min, Reason: sensor maintenance" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	// Not yet expired.
	clock.Advance(29 * time.Minute)
	ids, _, err := svc.ReactivateExpiredAlarms(t.Context())
	if err != nil || len(ids) != 0 {
		t.Fatalf("early reactivation: ids=%v err=%v", ids, err)
	}

	clock.Advance(2 * time.Minute)
	ids, _, err = svc.ReactivateExpiredAlarms(t.Context())
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if len(ids) != 1 || ids[0] != alarm.ID {
		t.Fatalf("reactivated ids = %v", ids)
	}
	active, _ := svc.GetAlarm(alarm.ID)
	if active.State != domain.AlarmActive || active.ShelvedUntil != nil || active.ShelvedReason != "" {
		t.Fatalf("unexpected alarm after reactivation %+v", active)
	}
	entry = latestAudit(t, svc)
	if entry.Action != "Alarm Reactivated" || entry.UserID != domain.SystemActor.ID {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
}

func TestReshelvingExtendsWindow(t *testing.T) {
	svc, clock := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "LVL-2", Message: "low level", Priority: domain.PriorityLow}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := svc.ShelveAlarm(t.Context(), alarm.ID, 10*time.Minute, "sensor maintenance", testOperator); err != nil {
		t.Fatalf("shelve: %v", err)
	}

	clock.Advance(5 * time.Minute)
	extended, _, err := svc.ShelveAlarm(t.Context(), alarm.ID, 30*time.Minute, "parts on order", testOperator)
	if err != nil {
		t.Fatalf("re-shelve: %v", err)
	}
	if extended.State != domain.AlarmShelved || extended.ShelvedReason != "parts on order" {
		t.Fatalf("unexpected alarm %+v", extended)
	}
	if want := clock.Now().Add(30 * time.Minute); extended.ShelvedUntil == nil || !extended.ShelvedUntil.Equal(want) {
		t.Fatalf("shelved until = %v, want %v", extended.ShelvedUntil, want)
	}
	if n := countAuditAction(svc, "Alarm Shelved"); n != 2 {
		t.Fatalf("shelve audit entries = %d, want 2", n)
	}

	// Past the original window but inside the extension.
	clock.Advance(10 * time.Minute)
	if ids, _, err := svc.ReactivateExpiredAlarms(t.Context()); err != nil || len(ids) != 0 {
		t.Fatalf("reactivated inside extension: ids=%v err=%v", ids, err)
	}
	clock.Advance(21 * time.Minute)
	ids, _, err := svc.ReactivateExpiredAlarms(t.Context())
	if err != nil || len(ids) != 1 {
		t.Fatalf("reactivate after extension: ids=%v err=%v", ids, err)
	}
}

func TestShelveAlarmValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "X", Message: "m", Priority: domain.PriorityLow}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := svc.ShelveAlarm(t.Context(), alarm.ID, 10*time.Minute, "", testOperator); err == nil {
		t.Fatal("expected error for missing reason")
	}
	if _, _, err := svc.ShelveAlarm(t.Context(), alarm.ID, 0, "reason", testOperator); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestClearAlarmIsTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "X", Message: "m", Priority: domain.PriorityMedium}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	cleared, _, err := svc.ClearAlarm(t.Context(), alarm.ID, testOperator)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.State != domain.AlarmCleared || cleared.ClearedAt == nil {
		t.Fatalf("unexpected alarm %+v", cleared)
	}
	var te domain.TransitionError
	if _, _, err := svc.AcknowledgeAlarm(t.Context(), alarm.ID, "", testOperator); !errors.As(err, &te) {
		t.Fatalf("acknowledge after clear: want TransitionError, got %v", err)
	}
}

func TestEscalationRisesWithAgeAndCapsAtTwo(t *testing.T) {
	svc, clock := newTestService(t)
	critical, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "TEMP01", Message: "over limit", Priority: domain.PriorityCritical}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	high, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "PT-101", Message: "pressure", Priority: domain.PriorityHigh}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	clock.Advance(4 * time.Minute)
	if _, _, err := svc.EscalateAlarms(t.Context()); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	got, _ := svc.GetAlarm(critical.ID)
	if got.EscalationLevel != 0 {
		t.Fatalf("level at 4min = %d, want 0", got.EscalationLevel)
	}

	clock.Advance(2 * time.Minute)
	ids, _, err := svc.EscalateAlarms(t.Context())
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if len(ids) != 1 || ids[0] != critical.ID {
		t.Fatalf("escalated ids = %v", ids)
	}
	got, _ = svc.GetAlarm(critical.ID)
	if got.EscalationLevel != 1 {
		t.Fatalf("level at 6min = %d, want 1", got.EscalationLevel)
	}

	clock.Advance(10 * time.Minute)
	if _, _, err := svc.EscalateAlarms(t.Context()); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	got, _ = svc.GetAlarm(critical.ID)
	if got.EscalationLevel != 2 {
		t.Fatalf("level at 16min = %d, want 2", got.EscalationLevel)
	}

	// Only active critical alarms escalate.
	if got, _ := svc.GetAlarm(high.ID); got.EscalationLevel != 0 {
		t.Fatalf("high priority alarm escalated to %d", got.EscalationLevel)
	}
}

func TestAcknowledgedAlarmsStopEscalating(t *testing.T) {
	svc, clock := newTestService(t)
	alarm, _, err := svc.GenerateAlarm(t.Context(), Alarm{Source: "TEMP01", Message: "m", Priority: domain.PriorityCritical}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	clock.Advance(6 * time.Minute)
	if _, _, err := svc.EscalateAlarms(t.Context()); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if _, _, err := svc.AcknowledgeAlarm(t.Context(), alarm.ID, "", testOperator); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	clock.Advance(10 * time.Minute)
	if _, _, err := svc.EscalateAlarms(t.Context()); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	got, _ := svc.GetAlarm(alarm.ID)
	if got.EscalationLevel != 1 {
		t.Fatalf("acknowledged alarm level = %d, want frozen at 1", got.EscalationLevel)
	}
}
