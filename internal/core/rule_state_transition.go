package core

import (
	"context"
	"fmt"

	"plantcore/pkg/domain"
)

// StateTransitionRule blocks any committed update whose lifecycle state jump
// has no edge in the governing transition table. Service commands already go
// through the machines, so this catches mutations that bypass them.
type StateTransitionRule struct {
	alarms      domain.Machine[domain.AlarmState]
	batches     domain.Machine[domain.BatchState]
	changes     domain.Machine[domain.ChangeStatus]
	maintenance domain.Machine[domain.MaintenanceStatus]
}

// NewStateTransitionRule builds the rule over the standard machines.
func NewStateTransitionRule() *StateTransitionRule {
	return &StateTransitionRule{
		alarms:      domain.AlarmMachine(),
		batches:     domain.BatchMachine(),
		changes:     domain.ChangeMachine(),
		maintenance: domain.MaintenanceMachine(),
	}
}

// Name identifies the rule in violations.
func (r *StateTransitionRule) Name() string { return "state_transition" }

// Evaluate inspects every update in the transaction change set.
func (r *StateTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (Result, error) {
	var result Result
	for _, change := range changes {
		if change.Action != domain.ActionUpdate {
			continue
		}
		if v, ok := r.check(change); ok {
			result.Violations = append(result.Violations, v)
		}
	}
	return result, nil
}

func (r *StateTransitionRule) check(change domain.Change) (domain.Violation, bool) {
	switch change.Entity {
	case domain.EntityAlarm:
		before, okB := change.Before.(Alarm)
		after, okA := change.After.(Alarm)
		if okB && okA && before.State != after.State && !r.alarms.Reachable(before.State, after.State) {
			return r.violation(change.Entity, after.ID, string(before.State), string(after.State)), true
		}
	case domain.EntityBatch:
		before, okB := change.Before.(Batch)
		after, okA := change.After.(Batch)
		if okB && okA && before.Status != after.Status && !r.batches.Reachable(before.Status, after.Status) {
			return r.violation(change.Entity, after.ID, string(before.Status), string(after.Status)), true
		}
	case domain.EntityChange:
		before, okB := change.Before.(ChangeRecord)
		after, okA := change.After.(ChangeRecord)
		if okB && okA && before.Status != after.Status && !r.changes.Reachable(before.Status, after.Status) {
			return r.violation(change.Entity, after.ID, string(before.Status), string(after.Status)), true
		}
	case domain.EntityMaintenance:
		before, okB := change.Before.(MaintenanceRecord)
		after, okA := change.After.(MaintenanceRecord)
		if okB && okA && before.Status != after.Status && !r.maintenance.Reachable(before.Status, after.Status) {
			return r.violation(change.Entity, after.ID, string(before.Status), string(after.Status)), true
		}
	}
	return domain.Violation{}, false
}

func (r *StateTransitionRule) violation(entity EntityType, id, from, to string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("no transition from %s to %s", from, to),
		Entity:   entity,
		EntityID: id,
	}
}
