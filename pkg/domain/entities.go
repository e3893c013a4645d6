// Package domain defines the core entities, state machines, and rule
// evaluation primitives tracked by plantcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityAlarm identifies a process alarm record.
	EntityAlarm EntityType = "alarm"
	// EntityBatch identifies an ISA-88 style batch record.
	EntityBatch EntityType = "batch"
	// EntityChange identifies a change-control record.
	EntityChange EntityType = "change"
	// EntityEquipment identifies an equipment record.
	EntityEquipment EntityType = "equipment"
	// EntityMaintenance identifies a maintenance work record.
	EntityMaintenance EntityType = "maintenance"
	// EntityAudit identifies an audit trail entry.
	EntityAudit EntityType = "audit"
)

// TargetType classifies what an audit entry refers to. It is broader than
// EntityType because the dashboard also attributes recipe, user, and system
// level actions.
type TargetType string

// Audit target classifications.
const (
	TargetAlarm     TargetType = "alarm"
	TargetBatch     TargetType = "batch"
	TargetEquipment TargetType = "equipment"
	TargetRecipe    TargetType = "recipe"
	TargetChange    TargetType = "change"
	TargetUser      TargetType = "user"
	TargetSystem    TargetType = "system"
)

// AlarmPriority ranks alarm severity; critical is the highest.
type AlarmPriority string

// Alarm priorities in fixed severity ordering.
const (
	PriorityCritical AlarmPriority = "critical"
	PriorityHigh     AlarmPriority = "high"
	PriorityMedium   AlarmPriority = "medium"
	PriorityLow      AlarmPriority = "low"
)

// Rank returns the numeric severity of a priority, higher meaning more severe.
func (p AlarmPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// AlarmState enumerates the alarm lifecycle states.
type AlarmState string

// Alarm lifecycle states. Cleared is terminal.
const (
	AlarmActive       AlarmState = "active"
	AlarmAcknowledged AlarmState = "acknowledged"
	AlarmCleared      AlarmState = "cleared"
	AlarmShelved      AlarmState = "shelved"
)

// BatchState enumerates batch execution states.
type BatchState string

// Batch execution states. Complete and aborted are terminal. The source
// system used "holding" and "held" interchangeably; "holding" is canonical
// here and "held" is normalised on snapshot import.
const (
	BatchIdle     BatchState = "idle"
	BatchRunning  BatchState = "running"
	BatchHolding  BatchState = "holding"
	BatchComplete BatchState = "complete"
	BatchAborted  BatchState = "aborted"
)

// ChangeType classifies the scale of a change request.
type ChangeType string

// Change types. Major changes require validation.
const (
	ChangeMinor ChangeType = "minor"
	ChangeMajor ChangeType = "major"
)

// ChangeStatus enumerates change-control workflow states.
type ChangeStatus string

// Change workflow states. Rejected and closed are terminal.
const (
	ChangeDraft         ChangeStatus = "draft"
	ChangePendingReview ChangeStatus = "pending_review"
	ChangeApproved      ChangeStatus = "approved"
	ChangeRejected      ChangeStatus = "rejected"
	ChangeImplemented   ChangeStatus = "implemented"
	ChangeClosed        ChangeStatus = "closed"
)

// ChangeCategory identifies the affected area of a change record.
type ChangeCategory string

// Change categories.
const (
	CategorySoftware      ChangeCategory = "software"
	CategoryHardware      ChangeCategory = "hardware"
	CategoryProcess       ChangeCategory = "process"
	CategoryRecipe        ChangeCategory = "recipe"
	CategoryUser          ChangeCategory = "user"
	CategoryDocumentation ChangeCategory = "documentation"
)

// ValidationStatus tracks IQ/OQ/PQ style validation progress on major changes.
type ValidationStatus string

// Validation states.
const (
	ValidationNotStarted ValidationStatus = "not_started"
	ValidationInProgress ValidationStatus = "in_progress"
	ValidationComplete   ValidationStatus = "complete"
	ValidationFailed     ValidationStatus = "failed"
)

// EquipmentState enumerates equipment availability states.
type EquipmentState string

// Equipment availability states.
const (
	EquipmentAvailable      EquipmentState = "available"
	EquipmentInUse          EquipmentState = "in_use"
	EquipmentMaintenance    EquipmentState = "maintenance"
	EquipmentFault          EquipmentState = "fault"
	EquipmentCalibrationDue EquipmentState = "calibration_due"
)

// SystemStatus drives visual severity on the dashboard.
type SystemStatus string

// Operational status values.
const (
	StatusNormal   SystemStatus = "normal"
	StatusWarning  SystemStatus = "warning"
	StatusCritical SystemStatus = "critical"
	StatusOffline  SystemStatus = "offline"
	StatusRunning  SystemStatus = "running"
)

// MaintenanceType classifies maintenance work.
type MaintenanceType string

// Maintenance work types.
const (
	MaintenancePreventive  MaintenanceType = "preventive"
	MaintenanceCorrective  MaintenanceType = "corrective"
	MaintenanceCalibration MaintenanceType = "calibration"
)

// MaintenanceStatus enumerates maintenance record states.
type MaintenanceStatus string

// Maintenance record states. Complete is terminal; overdue is a derived
// presentation state and never produced by commands.
const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceComplete   MaintenanceStatus = "complete"
	MaintenanceOverdue    MaintenanceStatus = "overdue"
)

// QualityResult enumerates quality check outcomes.
type QualityResult string

// Quality check results.
const (
	QualityPending   QualityResult = "pending"
	QualityPass      QualityResult = "pass"
	QualityFail      QualityResult = "fail"
	QualityDeviation QualityResult = "deviation"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User identifies an acting operator for audit attribution.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// SystemActor attributes monitor-driven transitions that no operator issued.
var SystemActor = User{ID: "SYS", Username: "system", FullName: "System", Role: "system"}

// DefaultOperator is the signed-in operator assumed when a request carries no
// identity.
var DefaultOperator = User{ID: "USR001", Username: "jsmith", FullName: "John Smith", Role: "supervisor"}

// AuditEntry is an immutable record of who did what to which entity.
type AuditEntry struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	Action      string     `json:"action"`
	TargetType  TargetType `json:"target_type"`
	TargetID    string     `json:"target_id"`
	TargetName  string     `json:"target_name"`
	OldValue    string     `json:"old_value,omitempty"`
	NewValue    string     `json:"new_value,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Workstation string     `json:"workstation"`
}

// Alarm represents a process alarm raised by a simulated field source.
type Alarm struct {
	Base
	Priority        AlarmPriority `json:"priority"`
	State           AlarmState    `json:"state"`
	Source          string        `json:"source"`
	SourceID        string        `json:"source_id"`
	Message         string        `json:"message"`
	Value           *float64      `json:"value,omitempty"`
	LimitValue      *float64      `json:"limit_value,omitempty"`
	AcknowledgedBy  string        `json:"acknowledged_by,omitempty"`
	AcknowledgedAt  *time.Time    `json:"acknowledged_at,omitempty"`
	ClearedAt       *time.Time    `json:"cleared_at,omitempty"`
	ShelvedUntil    *time.Time    `json:"shelved_until,omitempty"`
	ShelvedReason   string        `json:"shelved_reason,omitempty"`
	EscalationLevel int           `json:"escalation_level"`
}

// BatchPhase is one step of the recipe a batch executes.
type BatchPhase struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// DefaultRecipePhases returns the five-phase recipe used when no explicit
// phase list is supplied at batch creation.
func DefaultRecipePhases() []BatchPhase {
	return []BatchPhase{
		{ID: "phase-1", Name: "Initialization", Order: 1},
		{ID: "phase-2", Name: "Material Prep", Order: 2},
		{ID: "phase-3", Name: "Processing", Order: 3},
		{ID: "phase-4", Name: "Quality Check", Order: 4},
		{ID: "phase-5", Name: "Packaging", Order: 5},
	}
}

// MaterialLot is a consumed material tracked for a batch.
type MaterialLot struct {
	ID         string     `json:"id"`
	PartNumber string     `json:"part_number"`
	LotNumber  string     `json:"lot_number"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	ExpiryDate time.Time  `json:"expiry_date"`
	Verified   bool       `json:"verified"`
	VerifiedBy string     `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// QualityMeasurement is a named reading captured during a quality check.
type QualityMeasurement struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Spec  string  `json:"spec"`
}

// QualityCheck records the outcome of an in-process quality checkpoint.
type QualityCheck struct {
	ID             string               `json:"id"`
	CheckpointName string               `json:"checkpoint_name"`
	Type           string               `json:"type,omitempty"`
	ScheduledAt    time.Time            `json:"scheduled_at"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
	Operator       string               `json:"operator,omitempty"`
	Result         QualityResult        `json:"result"`
	MeasuredValue  string               `json:"measured_value,omitempty"`
	Specification  string               `json:"specification,omitempty"`
	Measurements   []QualityMeasurement `json:"measurements,omitempty"`
	Comments       string               `json:"comments,omitempty"`
}

// BatchDeviation documents a departure from the expected process.
type BatchDeviation struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// BatchParameter is a monitored process parameter with its setpoint.
type BatchParameter struct {
	Name     string  `json:"name"`
	Setpoint float64 `json:"setpoint"`
	Actual   float64 `json:"actual"`
	Unit     string  `json:"unit"`
	Status   string  `json:"status"`
}

// Batch tracks one execution of a recipe against a set of equipment.
type Batch struct {
	Base
	BatchNumber      string           `json:"batch_number"`
	RecipeID         string           `json:"recipe_id"`
	RecipeName       string           `json:"recipe_name"`
	ProductName      string           `json:"product_name"`
	Status           BatchState       `json:"status"`
	Phases           []BatchPhase     `json:"phases"`
	CurrentPhaseID   string           `json:"current_phase_id"`
	CurrentPhaseName string           `json:"current_phase_name"`
	CompletedPhases  int              `json:"completed_phases"`
	PhaseProgress    float64          `json:"phase_progress"`
	OverallProgress  float64          `json:"overall_progress"`
	StartTime        *time.Time       `json:"start_time,omitempty"`
	EndTime          *time.Time       `json:"end_time,omitempty"`
	OperatorID       string           `json:"operator_id"`
	OperatorName     string           `json:"operator_name"`
	EquipmentIDs     []string         `json:"equipment_ids"`
	MaterialLots     []MaterialLot    `json:"material_lots"`
	QualityChecks    []QualityCheck   `json:"quality_checks"`
	Deviations       []BatchDeviation `json:"deviations"`
	Parameters       []BatchParameter `json:"parameters"`
}

// Terminal reports whether the batch can no longer be mutated.
func (b Batch) Terminal() bool {
	return b.Status == BatchComplete || b.Status == BatchAborted
}

// ChangeComment is an append-only remark on a change record.
type ChangeComment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// ChangeRecord documents a controlled modification to the plant or its systems.
type ChangeRecord struct {
	Base
	ChangeNumber       string           `json:"change_number"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Type               ChangeType       `json:"type"`
	Status             ChangeStatus     `json:"status"`
	Category           ChangeCategory   `json:"category"`
	RequestedBy        string           `json:"requested_by"`
	RequestedAt        time.Time        `json:"requested_at"`
	ReviewedBy         string           `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time       `json:"reviewed_at,omitempty"`
	ApprovedBy         string           `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time       `json:"approved_at,omitempty"`
	ImplementedBy      string           `json:"implemented_by,omitempty"`
	ImplementedAt      *time.Time       `json:"implemented_at,omitempty"`
	ClosedBy           string           `json:"closed_by,omitempty"`
	ClosedAt           *time.Time       `json:"closed_at,omitempty"`
	AffectedSystems    []string         `json:"affected_systems"`
	ValidationRequired bool             `json:"validation_required"`
	ValidationStatus   ValidationStatus `json:"validation_status,omitempty"`
	ValidationNotes    string           `json:"validation_notes,omitempty"`
	Attachments        []string         `json:"attachments"`
	Comments           []ChangeComment  `json:"comments"`
}

// EquipmentMetric is a named live reading displayed for a piece of equipment.
type EquipmentMetric struct {
	Label  string       `json:"label"`
	Value  string       `json:"value"`
	Unit   string       `json:"unit,omitempty"`
	Status SystemStatus `json:"status,omitempty"`
}

// Equipment captures one machine on the plant floor.
type Equipment struct {
	Base
	Name                string            `json:"name"`
	Type                string            `json:"type"`
	Location            string            `json:"location"`
	Status              EquipmentState    `json:"status"`
	OperationalStatus   SystemStatus      `json:"operational_status"`
	CalibrationDueDate  time.Time         `json:"calibration_due_date"`
	MaintenanceDueDate  time.Time         `json:"maintenance_due_date"`
	LastMaintenanceDate time.Time         `json:"last_maintenance_date"`
	RuntimeHours        float64           `json:"runtime_hours"`
	CycleCount          int               `json:"cycle_count"`
	Metrics             []EquipmentMetric `json:"metrics"`
}

// MaintenanceRecord tracks a unit of maintenance work against equipment.
type MaintenanceRecord struct {
	Base
	EquipmentID   string            `json:"equipment_id"`
	Type          MaintenanceType   `json:"type"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	CompletedDate *time.Time        `json:"completed_date,omitempty"`
	AssignedTo    string            `json:"assigned_to"`
	Status        MaintenanceStatus `json:"status"`
	Description   string            `json:"description"`
	Findings      string            `json:"findings,omitempty"`
	PartsReplaced []string          `json:"parts_replaced,omitempty"`
	SignedBy      string            `json:"signed_by,omitempty"`
}
