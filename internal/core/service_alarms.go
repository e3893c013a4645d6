package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plantcore/pkg/domain"
)

// Escalation thresholds for active critical alarms.
const (
	escalationLevel1After = 5 * time.Minute
	escalationLevel2After = 10 * time.Minute
)

// EscalationLevel computes the escalation level an alarm should carry at the
// given instant. Only active critical alarms escalate: level 1 after five
// minutes unacknowledged, level 2 after ten.
func EscalationLevel(a Alarm, now time.Time) int {
	if a.State != domain.AlarmActive || a.Priority != domain.PriorityCritical {
		return a.EscalationLevel
	}
	age := now.Sub(a.CreatedAt)
	switch {
	case age > escalationLevel2After:
		return 2
	case age > escalationLevel1After:
		return 1
	default:
		return 0
	}
}

// GenerateAlarm records a new alarm raised by a field source and writes the
// generation audit entry. Simulated sources pass the system actor.
func (s *Service) GenerateAlarm(ctx context.Context, alarm Alarm, actor User) (Alarm, Result, error) {
	var created Alarm
	res, err := s.run(ctx, "generate_alarm", alarm.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateAlarm(alarm)
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Alarm Generated", domain.TargetAlarm, created.ID, created.Source)
		entry.NewValue = strings.ToUpper(string(created.Priority))
		tx.AppendAudit(entry)
		return nil
	})
	return created, res, err
}

// AcknowledgeAlarm transitions an alarm to acknowledged, stamping who
// acknowledged it and when. An optional comment rides along on the audit
// entry.
func (s *Service) AcknowledgeAlarm(ctx context.Context, id, comment string, actor User) (Alarm, Result, error) {
	var updated Alarm
	res, err := s.run(ctx, "acknowledge_alarm", id, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateAlarm(id, func(a *Alarm) error {
			next, err := s.alarms.Next(id, a.State, domain.CmdAcknowledge)
			if err != nil {
				return err
			}
			now := s.nowFn()
			a.State = next
			a.AcknowledgedBy = actor.FullName
			a.AcknowledgedAt = &now
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Alarm Acknowledged", domain.TargetAlarm, id, updated.Source)
		entry.OldValue = string(domain.AlarmActive)
		entry.NewValue = string(domain.AlarmAcknowledged)
		entry.Comment = comment
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// AcknowledgeAllAlarms acknowledges every active alarm in one transaction,
// writing one bulk audit entry per alarm. It returns the number of alarms
// transitioned; zero active alarms is a successful no-op.
func (s *Service) AcknowledgeAllAlarms(ctx context.Context, actor User) (int, Result, error) {
	var count int
	res, err := s.run(ctx, "acknowledge_all_alarms", "", func(tx Transaction) error {
		count = 0
		now := s.nowFn()
		for _, a := range tx.Snapshot().ListAlarms() {
			if a.State != domain.AlarmActive {
				continue
			}
			if _, err := tx.UpdateAlarm(a.ID, func(al *Alarm) error {
				al.State = domain.AlarmAcknowledged
				al.AcknowledgedBy = actor.FullName
				al.AcknowledgedAt = &now
				return nil
			}); err != nil {
				return err
			}
			entry := s.auditEntry(actor, "Alarm Acknowledged (Bulk)", domain.TargetAlarm, a.ID, a.Source)
			entry.OldValue = string(domain.AlarmActive)
			entry.NewValue = string(domain.AlarmAcknowledged)
			tx.AppendAudit(entry)
			count++
		}
		return nil
	})
	return count, res, err
}

// ShelveAlarm suppresses an alarm for the given duration with a mandatory
// reason. Shelving an already-shelved alarm replaces its window and reason.
func (s *Service) ShelveAlarm(ctx context.Context, id string, d time.Duration, reason string, actor User) (Alarm, Result, error) {
	var updated Alarm
	res, err := s.run(ctx, "shelve_alarm", id, func(tx Transaction) error {
		if reason == "" {
			return fmt.Errorf("shelve reason is required")
		}
		if d <= 0 {
			return fmt.Errorf("shelve duration must be positive")
		}
		var before domain.AlarmState
		var err error
		updated, err = tx.UpdateAlarm(id, func(a *Alarm) error {
			next, err := s.alarms.Next(id, a.State, domain.CmdShelve)
			if err != nil {
				return err
			}
			before = a.State
			until := s.nowFn().Add(d)
			a.State = next
			a.ShelvedUntil = &until
			a.ShelvedReason = reason
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Alarm Shelved", domain.TargetAlarm, id, updated.Source)
		entry.OldValue = string(before)
		entry.NewValue = string(domain.AlarmShelved)
		entry.Comment = fmt.Sprintf("Duration: %dmin, Reason: %s", int(d.Minutes()), reason)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// ClearAlarm transitions an alarm to its terminal cleared state.
func (s *Service) ClearAlarm(ctx context.Context, id string, actor User) (Alarm, Result, error) {
	var updated Alarm
	res, err := s.run(ctx, "clear_alarm", id, func(tx Transaction) error {
		var before domain.AlarmState
		var err error
		updated, err = tx.UpdateAlarm(id, func(a *Alarm) error {
			next, err := s.alarms.Next(id, a.State, domain.CmdClear)
			if err != nil {
				return err
			}
			before = a.State
			now := s.nowFn()
			a.State = next
			a.ClearedAt = &now
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Alarm Cleared", domain.TargetAlarm, id, updated.Source)
		entry.OldValue = string(before)
		entry.NewValue = string(domain.AlarmCleared)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// ReactivateExpiredAlarms returns shelved alarms whose shelve window has
// lapsed to the active state. Reactivations are attributed to the system
// actor. It returns the ids of the alarms reactivated.
func (s *Service) ReactivateExpiredAlarms(ctx context.Context) ([]string, Result, error) {
	var reactivated []string
	res, err := s.run(ctx, "reactivate_expired_alarms", "", func(tx Transaction) error {
		reactivated = nil
		now := s.nowFn()
		for _, a := range tx.Snapshot().ListAlarms() {
			if a.State != domain.AlarmShelved || a.ShelvedUntil == nil || a.ShelvedUntil.After(now) {
				continue
			}
			updated, err := tx.UpdateAlarm(a.ID, func(al *Alarm) error {
				al.State = domain.AlarmActive
				al.ShelvedUntil = nil
				al.ShelvedReason = ""
				return nil
			})
			if err != nil {
				return err
			}
			entry := s.auditEntry(domain.SystemActor, "Alarm Reactivated", domain.TargetAlarm, a.ID, updated.Source)
			entry.OldValue = string(domain.AlarmShelved)
			entry.NewValue = string(domain.AlarmActive)
			tx.AppendAudit(entry)
			reactivated = append(reactivated, a.ID)
		}
		return nil
	})
	return reactivated, res, err
}

// EscalateAlarms recomputes escalation levels for active critical alarms.
// Escalation is a derived severity signal, not an operator action, so no
// audit entries are written. It returns the ids of alarms whose level rose.
func (s *Service) EscalateAlarms(ctx context.Context) ([]string, Result, error) {
	var escalated []string
	res, err := s.run(ctx, "escalate_alarms", "", func(tx Transaction) error {
		escalated = nil
		now := s.nowFn()
		for _, a := range tx.Snapshot().ListAlarms() {
			level := EscalationLevel(a, now)
			if level == a.EscalationLevel {
				continue
			}
			if _, err := tx.UpdateAlarm(a.ID, func(al *Alarm) error {
				al.EscalationLevel = level
				return nil
			}); err != nil {
				return err
			}
			escalated = append(escalated, a.ID)
		}
		return nil
	})
	return escalated, res, err
}
