// Package memory provides the canonical in-memory transactional store for
// plantcore state. The SQLite and Postgres stores embed it and snapshot its
// state after each committed transaction. It lives under infra to keep domain
// dependencies one-way (domain -> nothing).
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"plantcore/pkg/domain"
)

// Aliases keep method signatures concise while still exposing domain types
// from this infra package.
type (
	// Alarm is an alias of domain.Alarm.
	Alarm = domain.Alarm
	// Batch is an alias of domain.Batch.
	Batch = domain.Batch
	// ChangeRecord is an alias of domain.ChangeRecord.
	ChangeRecord = domain.ChangeRecord
	// Equipment is an alias of domain.Equipment.
	Equipment = domain.Equipment
	// MaintenanceRecord is an alias of domain.MaintenanceRecord.
	MaintenanceRecord = domain.MaintenanceRecord
	// AuditEntry is an alias of domain.AuditEntry.
	AuditEntry = domain.AuditEntry
	// Change is an alias of domain.Change.
	Change = domain.Change
	// Result is an alias of domain.Result.
	Result = domain.Result
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView is an alias of domain.TransactionView.
	TransactionView = domain.TransactionView
	// PersistentStore is an alias of domain.PersistentStore.
	PersistentStore = domain.PersistentStore
)

var _ PersistentStore = (*Store)(nil)

type memoryState struct {
	alarms      map[string]Alarm
	batches     map[string]Batch
	changes     map[string]ChangeRecord
	equipment   map[string]Equipment
	maintenance map[string]MaintenanceRecord
	audit       domain.AuditTrail
}

// Snapshot is the serialisable representation of the in-memory state. Audit
// entries are stored newest first, matching the live trail ordering.
type Snapshot struct {
	Alarms      map[string]Alarm             `json:"alarms"`
	Batches     map[string]Batch             `json:"batches"`
	Changes     map[string]ChangeRecord      `json:"changes"`
	Equipment   map[string]Equipment         `json:"equipment"`
	Maintenance map[string]MaintenanceRecord `json:"maintenance"`
	Audit       []AuditEntry                 `json:"audit"`
}

func newMemoryState() memoryState {
	return memoryState{
		alarms:      map[string]Alarm{},
		batches:     map[string]Batch{},
		changes:     map[string]ChangeRecord{},
		equipment:   map[string]Equipment{},
		maintenance: map[string]MaintenanceRecord{},
		audit:       domain.NewAuditTrail(domain.DefaultAuditCapacity),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Alarms:      make(map[string]Alarm, len(state.alarms)),
		Batches:     make(map[string]Batch, len(state.batches)),
		Changes:     make(map[string]ChangeRecord, len(state.changes)),
		Equipment:   make(map[string]Equipment, len(state.equipment)),
		Maintenance: make(map[string]MaintenanceRecord, len(state.maintenance)),
		Audit:       state.audit.Entries(),
	}
	for k, v := range state.alarms {
		s.Alarms[k] = cloneAlarm(v)
	}
	for k, v := range state.batches {
		s.Batches[k] = cloneBatch(v)
	}
	for k, v := range state.changes {
		s.Changes[k] = cloneChangeRecord(v)
	}
	for k, v := range state.equipment {
		s.Equipment[k] = cloneEquipment(v)
	}
	for k, v := range state.maintenance {
		s.Maintenance[k] = cloneMaintenanceRecord(v)
	}
	return s
}

// memoryStateFromSnapshot rebuilds live state from a snapshot, normalising
// batch states written by older builds and truncating the audit trail to its
// retention bound.
func memoryStateFromSnapshot(s Snapshot) memoryState {
	st := newMemoryState()
	for k, v := range s.Alarms {
		st.alarms[k] = cloneAlarm(v)
	}
	for k, v := range s.Batches {
		b := cloneBatch(v)
		b.Status = domain.NormalizeBatchState(b.Status)
		st.batches[k] = b
	}
	for k, v := range s.Changes {
		st.changes[k] = cloneChangeRecord(v)
	}
	for k, v := range s.Equipment {
		st.equipment[k] = cloneEquipment(v)
	}
	for k, v := range s.Maintenance {
		st.maintenance[k] = cloneMaintenanceRecord(v)
	}
	st.audit = st.audit.Restore(s.Audit)
	return st
}

func (s memoryState) clone() memoryState { return memoryStateFromSnapshot(snapshotFromMemoryState(s)) }

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}

func cloneAlarm(a Alarm) Alarm {
	cp := a
	cp.Value = cloneFloatPtr(a.Value)
	cp.LimitValue = cloneFloatPtr(a.LimitValue)
	cp.AcknowledgedAt = cloneTimePtr(a.AcknowledgedAt)
	cp.ClearedAt = cloneTimePtr(a.ClearedAt)
	cp.ShelvedUntil = cloneTimePtr(a.ShelvedUntil)
	return cp
}

func cloneBatch(b Batch) Batch {
	cp := b
	cp.StartTime = cloneTimePtr(b.StartTime)
	cp.EndTime = cloneTimePtr(b.EndTime)
	cp.Phases = append([]domain.BatchPhase(nil), b.Phases...)
	cp.EquipmentIDs = append([]string(nil), b.EquipmentIDs...)
	cp.MaterialLots = make([]domain.MaterialLot, len(b.MaterialLots))
	for i, lot := range b.MaterialLots {
		lot.VerifiedAt = cloneTimePtr(lot.VerifiedAt)
		cp.MaterialLots[i] = lot
	}
	cp.QualityChecks = make([]domain.QualityCheck, len(b.QualityChecks))
	for i, qc := range b.QualityChecks {
		qc.CompletedAt = cloneTimePtr(qc.CompletedAt)
		qc.Measurements = append([]domain.QualityMeasurement(nil), qc.Measurements...)
		cp.QualityChecks[i] = qc
	}
	cp.Deviations = make([]domain.BatchDeviation, len(b.Deviations))
	for i, d := range b.Deviations {
		d.ResolvedAt = cloneTimePtr(d.ResolvedAt)
		cp.Deviations[i] = d
	}
	cp.Parameters = append([]domain.BatchParameter(nil), b.Parameters...)
	return cp
}

func cloneChangeRecord(c ChangeRecord) ChangeRecord {
	cp := c
	cp.ReviewedAt = cloneTimePtr(c.ReviewedAt)
	cp.ApprovedAt = cloneTimePtr(c.ApprovedAt)
	cp.ImplementedAt = cloneTimePtr(c.ImplementedAt)
	cp.ClosedAt = cloneTimePtr(c.ClosedAt)
	cp.AffectedSystems = append([]string(nil), c.AffectedSystems...)
	cp.Attachments = append([]string(nil), c.Attachments...)
	cp.Comments = append([]domain.ChangeComment(nil), c.Comments...)
	return cp
}

func cloneEquipment(e Equipment) Equipment {
	cp := e
	cp.Metrics = append([]domain.EquipmentMetric(nil), e.Metrics...)
	return cp
}

func cloneMaintenanceRecord(m MaintenanceRecord) MaintenanceRecord {
	cp := m
	cp.CompletedDate = cloneTimePtr(m.CompletedDate)
	cp.PartsReplaced = append([]string(nil), m.PartsReplaced...)
	return cp
}

// Store is the in-memory transactional store. All mutations run through
// RunInTransaction on a cloned state that is atomically published on commit.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string { return uuid.NewString() }

// ExportState returns a deep copy of the current state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the current state with the given snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine returns the engine evaluated on every transaction.
func (s *Store) RulesEngine() *RulesEngine { s.mu.RLock(); defer s.mu.RUnlock(); return s.engine }

// NowFunc returns the clock used to stamp transactions.
func (s *Store) NowFunc() func() time.Time { s.mu.RLock(); defer s.mu.RUnlock(); return s.nowFn }

// SetNowFunc replaces the transaction clock. The service layer uses it to
// inject a deterministic clock.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct{ state *memoryState }

func newTransactionView(state *memoryState) TransactionView { return transactionView{state: state} }

func (v transactionView) ListAlarms() []Alarm {
	out := make([]Alarm, 0, len(v.state.alarms))
	for _, a := range v.state.alarms {
		out = append(out, cloneAlarm(a))
	}
	return out
}

func (v transactionView) ListBatches() []Batch {
	out := make([]Batch, 0, len(v.state.batches))
	for _, b := range v.state.batches {
		out = append(out, cloneBatch(b))
	}
	return out
}

func (v transactionView) ListChangeRecords() []ChangeRecord {
	out := make([]ChangeRecord, 0, len(v.state.changes))
	for _, c := range v.state.changes {
		out = append(out, cloneChangeRecord(c))
	}
	return out
}

func (v transactionView) ListEquipment() []Equipment {
	out := make([]Equipment, 0, len(v.state.equipment))
	for _, e := range v.state.equipment {
		out = append(out, cloneEquipment(e))
	}
	return out
}

func (v transactionView) ListMaintenanceRecords() []MaintenanceRecord {
	out := make([]MaintenanceRecord, 0, len(v.state.maintenance))
	for _, m := range v.state.maintenance {
		out = append(out, cloneMaintenanceRecord(m))
	}
	return out
}

func (v transactionView) FindAlarm(id string) (Alarm, bool) {
	a, ok := v.state.alarms[id]
	if !ok {
		return Alarm{}, false
	}
	return cloneAlarm(a), true
}

func (v transactionView) FindBatch(id string) (Batch, bool) {
	b, ok := v.state.batches[id]
	if !ok {
		return Batch{}, false
	}
	return cloneBatch(b), true
}

func (v transactionView) FindChangeRecord(id string) (ChangeRecord, bool) {
	c, ok := v.state.changes[id]
	if !ok {
		return ChangeRecord{}, false
	}
	return cloneChangeRecord(c), true
}

func (v transactionView) FindEquipment(id string) (Equipment, bool) {
	e, ok := v.state.equipment[id]
	if !ok {
		return Equipment{}, false
	}
	return cloneEquipment(e), true
}

func (v transactionView) FindMaintenanceRecord(id string) (MaintenanceRecord, bool) {
	m, ok := v.state.maintenance[id]
	if !ok {
		return MaintenanceRecord{}, false
	}
	return cloneMaintenanceRecord(m), true
}

func (v transactionView) AuditTrail() []AuditEntry { return v.state.audit.Entries() }

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy is published only when fn succeeds and no registered rule
// reports a blocking violation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &transaction{store: s, state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return Result{}, err
	}
	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}
	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) { tx.changes = append(tx.changes, change) }

func (tx *transaction) Snapshot() TransactionView { return newTransactionView(&tx.state) }

func (tx *transaction) CreateAlarm(a Alarm) (Alarm, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.alarms[a.ID]; exists {
		return Alarm{}, fmt.Errorf("alarm %q already exists", a.ID)
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	if a.State == "" {
		a.State = domain.AlarmActive
	}
	tx.state.alarms[a.ID] = cloneAlarm(a)
	tx.recordChange(Change{Entity: domain.EntityAlarm, Action: domain.ActionCreate, After: cloneAlarm(a)})
	return cloneAlarm(a), nil
}

func (tx *transaction) UpdateAlarm(id string, mutator func(*Alarm) error) (Alarm, error) {
	current, ok := tx.state.alarms[id]
	if !ok {
		return Alarm{}, domain.ErrNotFound{Entity: domain.EntityAlarm, ID: id}
	}
	before := cloneAlarm(current)
	if err := mutator(&current); err != nil {
		return Alarm{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.alarms[id] = cloneAlarm(current)
	tx.recordChange(Change{Entity: domain.EntityAlarm, Action: domain.ActionUpdate, Before: before, After: cloneAlarm(current)})
	return cloneAlarm(current), nil
}

func (tx *transaction) CreateBatch(b Batch) (Batch, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.batches[b.ID]; exists {
		return Batch{}, fmt.Errorf("batch %q already exists", b.ID)
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	if b.Status == "" {
		b.Status = domain.BatchIdle
	}
	if len(b.Phases) == 0 {
		b.Phases = domain.DefaultRecipePhases()
	}
	if b.EquipmentIDs == nil {
		b.EquipmentIDs = []string{}
	}
	if b.MaterialLots == nil {
		b.MaterialLots = []domain.MaterialLot{}
	}
	if b.QualityChecks == nil {
		b.QualityChecks = []domain.QualityCheck{}
	}
	if b.Deviations == nil {
		b.Deviations = []domain.BatchDeviation{}
	}
	if b.Parameters == nil {
		b.Parameters = []domain.BatchParameter{}
	}
	tx.state.batches[b.ID] = cloneBatch(b)
	tx.recordChange(Change{Entity: domain.EntityBatch, Action: domain.ActionCreate, After: cloneBatch(b)})
	return cloneBatch(b), nil
}

func (tx *transaction) UpdateBatch(id string, mutator func(*Batch) error) (Batch, error) {
	current, ok := tx.state.batches[id]
	if !ok {
		return Batch{}, domain.ErrNotFound{Entity: domain.EntityBatch, ID: id}
	}
	before := cloneBatch(current)
	if err := mutator(&current); err != nil {
		return Batch{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.batches[id] = cloneBatch(current)
	tx.recordChange(Change{Entity: domain.EntityBatch, Action: domain.ActionUpdate, Before: before, After: cloneBatch(current)})
	return cloneBatch(current), nil
}

func (tx *transaction) CreateChangeRecord(c ChangeRecord) (ChangeRecord, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.changes[c.ID]; exists {
		return ChangeRecord{}, fmt.Errorf("change record %q already exists", c.ID)
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	if c.Status == "" {
		c.Status = domain.ChangeDraft
	}
	if c.AffectedSystems == nil {
		c.AffectedSystems = []string{}
	}
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	if c.Comments == nil {
		c.Comments = []domain.ChangeComment{}
	}
	tx.state.changes[c.ID] = cloneChangeRecord(c)
	tx.recordChange(Change{Entity: domain.EntityChange, Action: domain.ActionCreate, After: cloneChangeRecord(c)})
	return cloneChangeRecord(c), nil
}

func (tx *transaction) UpdateChangeRecord(id string, mutator func(*ChangeRecord) error) (ChangeRecord, error) {
	current, ok := tx.state.changes[id]
	if !ok {
		return ChangeRecord{}, domain.ErrNotFound{Entity: domain.EntityChange, ID: id}
	}
	before := cloneChangeRecord(current)
	if err := mutator(&current); err != nil {
		return ChangeRecord{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.changes[id] = cloneChangeRecord(current)
	tx.recordChange(Change{Entity: domain.EntityChange, Action: domain.ActionUpdate, Before: before, After: cloneChangeRecord(current)})
	return cloneChangeRecord(current), nil
}

func (tx *transaction) CreateEquipment(e Equipment) (Equipment, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.equipment[e.ID]; exists {
		return Equipment{}, fmt.Errorf("equipment %q already exists", e.ID)
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	if e.Status == "" {
		e.Status = domain.EquipmentAvailable
	}
	if e.Metrics == nil {
		e.Metrics = []domain.EquipmentMetric{}
	}
	tx.state.equipment[e.ID] = cloneEquipment(e)
	tx.recordChange(Change{Entity: domain.EntityEquipment, Action: domain.ActionCreate, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

func (tx *transaction) UpdateEquipment(id string, mutator func(*Equipment) error) (Equipment, error) {
	current, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.ErrNotFound{Entity: domain.EntityEquipment, ID: id}
	}
	before := cloneEquipment(current)
	if err := mutator(&current); err != nil {
		return Equipment{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.equipment[id] = cloneEquipment(current)
	tx.recordChange(Change{Entity: domain.EntityEquipment, Action: domain.ActionUpdate, Before: before, After: cloneEquipment(current)})
	return cloneEquipment(current), nil
}

func (tx *transaction) CreateMaintenanceRecord(m MaintenanceRecord) (MaintenanceRecord, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.maintenance[m.ID]; exists {
		return MaintenanceRecord{}, fmt.Errorf("maintenance record %q already exists", m.ID)
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	if m.Status == "" {
		m.Status = domain.MaintenanceScheduled
	}
	tx.state.maintenance[m.ID] = cloneMaintenanceRecord(m)
	tx.recordChange(Change{Entity: domain.EntityMaintenance, Action: domain.ActionCreate, After: cloneMaintenanceRecord(m)})
	return cloneMaintenanceRecord(m), nil
}

func (tx *transaction) UpdateMaintenanceRecord(id string, mutator func(*MaintenanceRecord) error) (MaintenanceRecord, error) {
	current, ok := tx.state.maintenance[id]
	if !ok {
		return MaintenanceRecord{}, domain.ErrNotFound{Entity: domain.EntityMaintenance, ID: id}
	}
	before := cloneMaintenanceRecord(current)
	if err := mutator(&current); err != nil {
		return MaintenanceRecord{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.maintenance[id] = cloneMaintenanceRecord(current)
	tx.recordChange(Change{Entity: domain.EntityMaintenance, Action: domain.ActionUpdate, Before: before, After: cloneMaintenanceRecord(current)})
	return cloneMaintenanceRecord(current), nil
}

// AppendAudit inserts an entry at the head of the bounded audit trail,
// assigning an ID and timestamp when missing.
func (tx *transaction) AppendAudit(entry AuditEntry) AuditEntry {
	if entry.ID == "" {
		entry.ID = tx.store.newID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = tx.now
	}
	tx.state.audit = tx.state.audit.Append(entry)
	tx.recordChange(Change{Entity: domain.EntityAudit, Action: domain.ActionAppend, After: entry})
	return entry
}

// CountChangeRecords returns the number of change records in the
// transactional state, including ones created earlier in this transaction.
func (tx *transaction) CountChangeRecords() int { return len(tx.state.changes) }

func (tx *transaction) FindAlarm(id string) (Alarm, bool) {
	a, ok := tx.state.alarms[id]
	if !ok {
		return Alarm{}, false
	}
	return cloneAlarm(a), true
}

func (tx *transaction) FindBatch(id string) (Batch, bool) {
	b, ok := tx.state.batches[id]
	if !ok {
		return Batch{}, false
	}
	return cloneBatch(b), true
}

func (tx *transaction) FindChangeRecord(id string) (ChangeRecord, bool) {
	c, ok := tx.state.changes[id]
	if !ok {
		return ChangeRecord{}, false
	}
	return cloneChangeRecord(c), true
}

func (tx *transaction) FindEquipment(id string) (Equipment, bool) {
	e, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, false
	}
	return cloneEquipment(e), true
}

func (tx *transaction) FindMaintenanceRecord(id string) (MaintenanceRecord, bool) {
	m, ok := tx.state.maintenance[id]
	if !ok {
		return MaintenanceRecord{}, false
	}
	return cloneMaintenanceRecord(m), true
}

func (s *Store) GetAlarm(id string) (Alarm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.alarms[id]
	if !ok {
		return Alarm{}, false
	}
	return cloneAlarm(a), true
}

func (s *Store) ListAlarms() []Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alarm, 0, len(s.state.alarms))
	for _, a := range s.state.alarms {
		out = append(out, cloneAlarm(a))
	}
	return out
}

func (s *Store) GetBatch(id string) (Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.batches[id]
	if !ok {
		return Batch{}, false
	}
	return cloneBatch(b), true
}

func (s *Store) ListBatches() []Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Batch, 0, len(s.state.batches))
	for _, b := range s.state.batches {
		out = append(out, cloneBatch(b))
	}
	return out
}

func (s *Store) GetChangeRecord(id string) (ChangeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.changes[id]
	if !ok {
		return ChangeRecord{}, false
	}
	return cloneChangeRecord(c), true
}

func (s *Store) ListChangeRecords() []ChangeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChangeRecord, 0, len(s.state.changes))
	for _, c := range s.state.changes {
		out = append(out, cloneChangeRecord(c))
	}
	return out
}

func (s *Store) GetEquipment(id string) (Equipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.equipment[id]
	if !ok {
		return Equipment{}, false
	}
	return cloneEquipment(e), true
}

func (s *Store) ListEquipment() []Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Equipment, 0, len(s.state.equipment))
	for _, e := range s.state.equipment {
		out = append(out, cloneEquipment(e))
	}
	return out
}

func (s *Store) GetMaintenanceRecord(id string) (MaintenanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.maintenance[id]
	if !ok {
		return MaintenanceRecord{}, false
	}
	return cloneMaintenanceRecord(m), true
}

func (s *Store) ListMaintenanceRecords() []MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MaintenanceRecord, 0, len(s.state.maintenance))
	for _, m := range s.state.maintenance {
		out = append(out, cloneMaintenanceRecord(m))
	}
	return out
}

// AuditTrail returns the retained audit entries, newest first.
func (s *Store) AuditTrail() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.audit.Entries()
}
