package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateAlarm(Alarm) (Alarm, error)
	UpdateAlarm(id string, mutator func(*Alarm) error) (Alarm, error)
	CreateBatch(Batch) (Batch, error)
	UpdateBatch(id string, mutator func(*Batch) error) (Batch, error)
	CreateChangeRecord(ChangeRecord) (ChangeRecord, error)
	UpdateChangeRecord(id string, mutator func(*ChangeRecord) error) (ChangeRecord, error)
	CreateEquipment(Equipment) (Equipment, error)
	UpdateEquipment(id string, mutator func(*Equipment) error) (Equipment, error)
	CreateMaintenanceRecord(MaintenanceRecord) (MaintenanceRecord, error)
	UpdateMaintenanceRecord(id string, mutator func(*MaintenanceRecord) error) (MaintenanceRecord, error)
	AppendAudit(AuditEntry) AuditEntry
	CountChangeRecords() int
	FindAlarm(id string) (Alarm, bool)
	FindBatch(id string) (Batch, bool)
	FindChangeRecord(id string) (ChangeRecord, bool)
	FindEquipment(id string) (Equipment, bool)
	FindMaintenanceRecord(id string) (MaintenanceRecord, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// the read interface.
type TransactionView interface {
	RuleView
	AuditTrail() []AuditEntry
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetAlarm(id string) (Alarm, bool)
	ListAlarms() []Alarm
	GetBatch(id string) (Batch, bool)
	ListBatches() []Batch
	GetChangeRecord(id string) (ChangeRecord, bool)
	ListChangeRecords() []ChangeRecord
	GetEquipment(id string) (Equipment, bool)
	ListEquipment() []Equipment
	GetMaintenanceRecord(id string) (MaintenanceRecord, bool)
	ListMaintenanceRecords() []MaintenanceRecord
	AuditTrail() []AuditEntry
}
