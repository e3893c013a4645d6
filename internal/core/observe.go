package core

import (
	"context"
	"time"

	"plantcore/pkg/domain"
)

// Logger is the minimal structured logging contract consumed by the service.
// The zap adapter in internal/logging satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan finalises a span with the operation outcome.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// ServiceAuditStatus marks the outcome recorded for a service operation.
type ServiceAuditStatus string

const (
	// AuditStatusSuccess marks a committed operation.
	AuditStatusSuccess ServiceAuditStatus = "success"
	// AuditStatusError marks a rejected or failed operation.
	AuditStatusError ServiceAuditStatus = "error"
)

// ServiceAuditEntry is the operational telemetry record emitted per service
// operation. It is distinct from the domain audit trail, which captures
// operator attribution inside transactions.
type ServiceAuditEntry struct {
	Operation string
	Entity    EntityType
	EntityID  string
	Status    ServiceAuditStatus
	Duration  time.Duration
	Timestamp time.Time
	Error     string
}

// AuditRecorder receives operational audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry ServiceAuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, ServiceAuditEntry) {}

// operationEntities maps service operations to the entity they act on, used
// when emitting operational audit entries.
var operationEntities = map[string]EntityType{
	"generate_alarm":            domain.EntityAlarm,
	"acknowledge_alarm":         domain.EntityAlarm,
	"acknowledge_all_alarms":    domain.EntityAlarm,
	"shelve_alarm":              domain.EntityAlarm,
	"clear_alarm":               domain.EntityAlarm,
	"reactivate_expired_alarms": domain.EntityAlarm,
	"escalate_alarms":           domain.EntityAlarm,
	"create_batch":              domain.EntityBatch,
	"start_batch":               domain.EntityBatch,
	"hold_batch":                domain.EntityBatch,
	"resume_batch":              domain.EntityBatch,
	"complete_batch":            domain.EntityBatch,
	"abort_batch":               domain.EntityBatch,
	"advance_phase":             domain.EntityBatch,
	"verify_material":           domain.EntityBatch,
	"record_quality_check":      domain.EntityBatch,
	"record_deviation":          domain.EntityBatch,
	"tick_batch_progress":       domain.EntityBatch,
	"create_change":             domain.EntityChange,
	"submit_change":             domain.EntityChange,
	"approve_change":            domain.EntityChange,
	"reject_change":             domain.EntityChange,
	"implement_change":          domain.EntityChange,
	"update_validation_status":  domain.EntityChange,
	"close_change":              domain.EntityChange,
	"add_change_comment":        domain.EntityChange,
	"attach_change_file":        domain.EntityChange,
	"register_equipment":        domain.EntityEquipment,
	"update_equipment_status":   domain.EntityEquipment,
	"schedule_maintenance":      domain.EntityMaintenance,
	"start_maintenance":         domain.EntityMaintenance,
	"complete_maintenance":      domain.EntityMaintenance,
}
