// Package core exposes the transactional service layer for plantcore: typed
// commands over the alarm, batch, change-control, equipment, and maintenance
// stores, rule evaluation on every transaction, and the background monitor
// that drives time-based state changes.
package core

import "plantcore/pkg/domain"

// Aliases of domain types used throughout the service layer.
type (
	Alarm             = domain.Alarm
	Batch             = domain.Batch
	ChangeRecord      = domain.ChangeRecord
	Equipment         = domain.Equipment
	MaintenanceRecord = domain.MaintenanceRecord
	AuditEntry        = domain.AuditEntry
	User              = domain.User
	Change            = domain.Change
	Result            = domain.Result
	Violation         = domain.Violation
	RulesEngine       = domain.RulesEngine
	Transaction       = domain.Transaction
	TransactionView   = domain.TransactionView
	PersistentStore   = domain.PersistentStore
	EntityType        = domain.EntityType
	TransitionError   = domain.TransitionError
	ErrNotFound       = domain.ErrNotFound
)
