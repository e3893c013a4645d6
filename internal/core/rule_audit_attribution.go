package core

import (
	"context"
	"fmt"

	"plantcore/pkg/domain"
)

// AuditAttributionRule warns when a transaction changes an entity lifecycle
// state without appending an audit entry. Background maintenance such as
// progress ticking mutates other fields and stays quiet; state changes are
// expected to carry attribution.
type AuditAttributionRule struct{}

// NewAuditAttributionRule builds the rule.
func NewAuditAttributionRule() *AuditAttributionRule { return &AuditAttributionRule{} }

// Name identifies the rule in violations.
func (r *AuditAttributionRule) Name() string { return "audit_attribution" }

// Evaluate flags state-changing updates in transactions with no audit append.
func (r *AuditAttributionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (Result, error) {
	for _, change := range changes {
		if change.Entity == domain.EntityAudit && change.Action == domain.ActionAppend {
			return Result{}, nil
		}
	}
	var result Result
	for _, change := range changes {
		if change.Action != domain.ActionUpdate {
			continue
		}
		if entity, id, from, to, ok := stateDelta(change); ok {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("state changed from %s to %s without audit attribution", from, to),
				Entity:   entity,
				EntityID: id,
			})
		}
	}
	return result, nil
}

// stateDelta extracts the lifecycle state change carried by an update, if any.
func stateDelta(change domain.Change) (EntityType, string, string, string, bool) {
	switch change.Entity {
	case domain.EntityAlarm:
		before, okB := change.Before.(Alarm)
		after, okA := change.After.(Alarm)
		if okB && okA && before.State != after.State {
			return change.Entity, after.ID, string(before.State), string(after.State), true
		}
	case domain.EntityBatch:
		before, okB := change.Before.(Batch)
		after, okA := change.After.(Batch)
		if okB && okA && before.Status != after.Status {
			return change.Entity, after.ID, string(before.Status), string(after.Status), true
		}
	case domain.EntityChange:
		before, okB := change.Before.(ChangeRecord)
		after, okA := change.After.(ChangeRecord)
		if okB && okA && before.Status != after.Status {
			return change.Entity, after.ID, string(before.Status), string(after.Status), true
		}
	case domain.EntityEquipment:
		before, okB := change.Before.(Equipment)
		after, okA := change.After.(Equipment)
		if okB && okA && before.Status != after.Status {
			return change.Entity, after.ID, string(before.Status), string(after.Status), true
		}
	case domain.EntityMaintenance:
		before, okB := change.Before.(MaintenanceRecord)
		after, okA := change.After.(MaintenanceRecord)
		if okB && okA && before.Status != after.Status {
			return change.Entity, after.ID, string(before.Status), string(after.Status), true
		}
	}
	return "", "", "", "", false
}

// DefaultRulesEngine wires the standard rule set used by production stores.
func DefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewStateTransitionRule())
	engine.Register(NewAuditAttributionRule())
	return engine
}
