package core

import (
	"context"
	"time"

	"plantcore/internal/blob"
	"plantcore/pkg/domain"
)

// DefaultWorkstation is stamped onto audit entries when no workstation is
// configured.
const DefaultWorkstation = "HMI-001"

// Service exposes the transactional command surface over the plantcore
// stores. Every command runs in a single store transaction, validates state
// transitions through the explicit machines, and appends operator
// attribution to the domain audit trail.
type Service struct {
	store       PersistentStore
	blobs       blob.Store
	logger      Logger
	metrics     MetricsRecorder
	tracer      Tracer
	audit       AuditRecorder
	nowFn       func() time.Time
	workstation string

	alarms      domain.Machine[domain.AlarmState]
	batches     domain.Machine[domain.BatchState]
	changes     domain.Machine[domain.ChangeStatus]
	maintenance domain.Machine[domain.MaintenanceStatus]
}

// Option configures a Service.
type Option func(*Service)

// WithLogger installs a structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder installs a metrics recorder observing every operation.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs a tracer opening a span per operation.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder installs an operational audit recorder.
func WithAuditRecorder(r AuditRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.audit = r
		}
	}
}

// WithClock injects the clock used for every timestamp the service produces.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.nowFn = c.Now
		}
	}
}

// WithWorkstation sets the workstation identifier stamped onto audit entries.
func WithWorkstation(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.workstation = id
		}
	}
}

// WithBlobStore installs the object store backing change-record attachments.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) {
		if b != nil {
			s.blobs = b
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      noopLogger{},
		metrics:     noopMetricsRecorder{},
		tracer:      noopTracer{},
		audit:       noopAuditRecorder{},
		workstation: DefaultWorkstation,
		alarms:      domain.AlarmMachine(),
		batches:     domain.BatchMachine(),
		changes:     domain.ChangeMachine(),
		maintenance: domain.MaintenanceMachine(),
	}
	var clock Clock
	for _, opt := range opts {
		opt(s)
	}
	if s.nowFn != nil {
		clock = ClockFunc(s.nowFn)
	}
	s.nowFn = selectNowFunc(store, clock)
	if setter, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok && clock != nil {
		setter.SetNowFunc(clock.Now)
		s.nowFn = clock.Now
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.nowFn() }

// run wraps a transaction with tracing, metrics, logging, and operational
// audit. It is the single choke point every command goes through.
func (s *Service) run(ctx context.Context, operation, entityID string, fn func(tx Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	started := s.nowFn()
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := s.nowFn().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)

	entry := ServiceAuditEntry{
		Operation: operation,
		Entity:    operationEntities[operation],
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: started,
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		s.logger.Warn("operation rejected", "operation", operation, "entity_id", entityID, "error", err)
	} else {
		s.logger.Debug("operation committed", "operation", operation, "entity_id", entityID, "duration", duration)
	}
	s.audit.Record(ctx, entry)

	for _, v := range res.Warnings() {
		s.logger.Warn("rule warning", "rule", v.Rule, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message)
	}
	return res, err
}

// auditEntry builds a domain audit entry attributed to the given actor.
func (s *Service) auditEntry(actor User, action string, target domain.TargetType, targetID, targetName string) AuditEntry {
	return AuditEntry{
		UserID:      actor.ID,
		UserName:    actor.FullName,
		Action:      action,
		TargetType:  target,
		TargetID:    targetID,
		TargetName:  targetName,
		Workstation: s.workstation,
	}
}
