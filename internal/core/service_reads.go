package core

import (
	"context"
	"sort"

	"plantcore/pkg/domain"
)

// GetAlarm returns one alarm by id.
func (s *Service) GetAlarm(id string) (Alarm, bool) { return s.store.GetAlarm(id) }

// ListAlarms returns all alarms ordered by priority rank, then newest first.
func (s *Service) ListAlarms() []Alarm {
	out := s.store.ListAlarms()
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank(); ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ActiveAlarms returns the alarms currently in the active state, in list
// order.
func (s *Service) ActiveAlarms() []Alarm {
	var out []Alarm
	for _, a := range s.ListAlarms() {
		if a.State == domain.AlarmActive {
			out = append(out, a)
		}
	}
	return out
}

// AlarmCountsByPriority tallies non-cleared alarms per priority.
func (s *Service) AlarmCountsByPriority() map[domain.AlarmPriority]int {
	out := make(map[domain.AlarmPriority]int)
	for _, a := range s.store.ListAlarms() {
		if a.State == domain.AlarmCleared {
			continue
		}
		out[a.Priority]++
	}
	return out
}

// GetBatch returns one batch by id.
func (s *Service) GetBatch(id string) (Batch, bool) { return s.store.GetBatch(id) }

// ListBatches returns all batches, newest first.
func (s *Service) ListBatches() []Batch {
	out := s.store.ListBatches()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// GetChangeRecord returns one change record by id.
func (s *Service) GetChangeRecord(id string) (ChangeRecord, bool) { return s.store.GetChangeRecord(id) }

// ListChangeRecords returns all change records, newest first.
func (s *Service) ListChangeRecords() []ChangeRecord {
	out := s.store.ListChangeRecords()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// GetEquipment returns one machine by id.
func (s *Service) GetEquipment(id string) (Equipment, bool) { return s.store.GetEquipment(id) }

// ListEquipment returns all machines ordered by name.
func (s *Service) ListEquipment() []Equipment {
	out := s.store.ListEquipment()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetMaintenanceRecord returns one maintenance record by id.
func (s *Service) GetMaintenanceRecord(id string) (MaintenanceRecord, bool) {
	return s.store.GetMaintenanceRecord(id)
}

// ListMaintenanceRecords returns all maintenance records ordered by
// scheduled date.
func (s *Service) ListMaintenanceRecords() []MaintenanceRecord {
	out := s.store.ListMaintenanceRecords()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out
}

// AuditTrail returns the retained audit entries, newest first.
func (s *Service) AuditTrail() []AuditEntry { return s.store.AuditTrail() }

// DashboardSnapshot is the aggregate state pushed to connected dashboards.
type DashboardSnapshot struct {
	GeneratedAt    string              `json:"generated_at"`
	ActiveAlarms   int                 `json:"active_alarms"`
	CriticalAlarms int                 `json:"critical_alarms"`
	RunningBatches int                 `json:"running_batches"`
	OpenChanges    int                 `json:"open_changes"`
	FaultedUnits   int                 `json:"faulted_units"`
	Alarms         []Alarm             `json:"alarms"`
	Batches        []Batch             `json:"batches"`
	Changes        []ChangeRecord      `json:"changes"`
	Equipment      []Equipment         `json:"equipment"`
	Maintenance    []MaintenanceRecord `json:"maintenance"`
	Audit          []AuditEntry        `json:"audit"`
}

// Snapshot assembles a consistent dashboard snapshot from a single store
// view.
func (s *Service) Snapshot(ctx context.Context) (DashboardSnapshot, error) {
	snap := DashboardSnapshot{GeneratedAt: s.nowFn().Format("2006-01-02T15:04:05.000Z07:00")}
	err := s.store.View(ctx, func(v TransactionView) error {
		snap.Alarms = v.ListAlarms()
		snap.Batches = v.ListBatches()
		snap.Changes = v.ListChangeRecords()
		snap.Equipment = v.ListEquipment()
		snap.Maintenance = v.ListMaintenanceRecords()
		snap.Audit = v.AuditTrail()
		return nil
	})
	if err != nil {
		return DashboardSnapshot{}, err
	}
	sort.SliceStable(snap.Alarms, func(i, j int) bool {
		if ri, rj := snap.Alarms[i].Priority.Rank(), snap.Alarms[j].Priority.Rank(); ri != rj {
			return ri > rj
		}
		return snap.Alarms[i].CreatedAt.After(snap.Alarms[j].CreatedAt)
	})
	sort.SliceStable(snap.Batches, func(i, j int) bool {
		return snap.Batches[i].CreatedAt.After(snap.Batches[j].CreatedAt)
	})
	sort.SliceStable(snap.Changes, func(i, j int) bool {
		return snap.Changes[i].CreatedAt.After(snap.Changes[j].CreatedAt)
	})
	sort.SliceStable(snap.Equipment, func(i, j int) bool {
		return snap.Equipment[i].Name < snap.Equipment[j].Name
	})
	sort.SliceStable(snap.Maintenance, func(i, j int) bool {
		return snap.Maintenance[i].ScheduledDate.Before(snap.Maintenance[j].ScheduledDate)
	})
	for _, a := range snap.Alarms {
		if a.State == domain.AlarmActive {
			snap.ActiveAlarms++
			if a.Priority == domain.PriorityCritical {
				snap.CriticalAlarms++
			}
		}
	}
	for _, b := range snap.Batches {
		if b.Status == domain.BatchRunning {
			snap.RunningBatches++
		}
	}
	for _, c := range snap.Changes {
		if c.Status != domain.ChangeClosed && c.Status != domain.ChangeRejected {
			snap.OpenChanges++
		}
	}
	for _, e := range snap.Equipment {
		if e.Status == domain.EquipmentFault {
			snap.FaultedUnits++
		}
	}
	return snap, nil
}
