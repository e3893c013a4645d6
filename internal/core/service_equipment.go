package core

import (
	"context"
	"fmt"
	"time"

	"plantcore/pkg/domain"
)

// maintenanceDueInterval is how far the next maintenance due date is pushed
// out when work completes.
const maintenanceDueInterval = 30 * 24 * time.Hour

// RegisterEquipment adds a machine to the plant floor inventory.
func (s *Service) RegisterEquipment(ctx context.Context, eq Equipment, actor User) (Equipment, Result, error) {
	var created Equipment
	res, err := s.run(ctx, "register_equipment", eq.ID, func(tx Transaction) error {
		if eq.Name == "" {
			return fmt.Errorf("equipment name is required")
		}
		var err error
		created, err = tx.CreateEquipment(eq)
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Equipment Registered", domain.TargetEquipment, created.ID, created.Name)
		tx.AppendAudit(entry)
		return nil
	})
	return created, res, err
}

// UpdateEquipmentStatus overwrites the operational status a machine reports
// on the dashboard. Availability is driven by the maintenance workflow, not
// by this command.
func (s *Service) UpdateEquipmentStatus(ctx context.Context, id string, status domain.SystemStatus, actor User) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "update_equipment_status", id, func(tx Transaction) error {
		var before domain.SystemStatus
		var err error
		updated, err = tx.UpdateEquipment(id, func(e *Equipment) error {
			before = e.OperationalStatus
			e.OperationalStatus = status
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Equipment Status Changed", domain.TargetEquipment, id, updated.Name)
		entry.OldValue = string(before)
		entry.NewValue = string(status)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// ScheduleMaintenanceWork opens a maintenance record against a machine.
func (s *Service) ScheduleMaintenanceWork(ctx context.Context, rec MaintenanceRecord, actor User) (MaintenanceRecord, Result, error) {
	var created MaintenanceRecord
	res, err := s.run(ctx, "schedule_maintenance", rec.ID, func(tx Transaction) error {
		if rec.EquipmentID == "" {
			return fmt.Errorf("equipment id is required")
		}
		eq, ok := tx.FindEquipment(rec.EquipmentID)
		if !ok {
			return ErrNotFound{Entity: domain.EntityEquipment, ID: rec.EquipmentID}
		}
		rec.Status = domain.MaintenanceScheduled
		var err error
		created, err = tx.CreateMaintenanceRecord(rec)
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Maintenance Scheduled", domain.TargetEquipment, eq.ID, eq.Name)
		entry.Comment = fmt.Sprintf("%s - %s", created.Type, created.Description)
		tx.AppendAudit(entry)
		return nil
	})
	return created, res, err
}

// StartMaintenance moves a scheduled maintenance record into execution and
// takes the machine out of service. The source HMI never wrote an audit
// entry for this action; the attribution rule now flags the gap as a warning
// instead of hiding it.
func (s *Service) StartMaintenance(ctx context.Context, recordID string, actor User) (MaintenanceRecord, Result, error) {
	var updated MaintenanceRecord
	res, err := s.run(ctx, "start_maintenance", recordID, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateMaintenanceRecord(recordID, func(m *MaintenanceRecord) error {
			next, err := s.maintenance.Next(recordID, m.Status, domain.CmdStartWork)
			if err != nil {
				return err
			}
			m.Status = next
			if m.AssignedTo == "" {
				m.AssignedTo = actor.FullName
			}
			return nil
		})
		if err != nil {
			return err
		}
		if _, ok := tx.FindEquipment(updated.EquipmentID); ok {
			if _, err := tx.UpdateEquipment(updated.EquipmentID, func(e *Equipment) error {
				e.Status = domain.EquipmentMaintenance
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return updated, res, err
}

// CompleteMaintenance closes out a maintenance record, returns the machine
// to service, and pushes its next maintenance due date out.
func (s *Service) CompleteMaintenance(ctx context.Context, recordID, findings string, parts []string, actor User) (MaintenanceRecord, Result, error) {
	var updated MaintenanceRecord
	res, err := s.run(ctx, "complete_maintenance", recordID, func(tx Transaction) error {
		now := s.nowFn()
		var err error
		updated, err = tx.UpdateMaintenanceRecord(recordID, func(m *MaintenanceRecord) error {
			next, err := s.maintenance.Next(recordID, m.Status, domain.CmdCompleteWork)
			if err != nil {
				return err
			}
			m.Status = next
			m.CompletedDate = &now
			m.Findings = findings
			m.PartsReplaced = append(m.PartsReplaced, parts...)
			m.SignedBy = actor.FullName
			return nil
		})
		if err != nil {
			return err
		}
		eq, ok := tx.FindEquipment(updated.EquipmentID)
		if ok {
			if _, err := tx.UpdateEquipment(updated.EquipmentID, func(e *Equipment) error {
				e.Status = domain.EquipmentAvailable
				e.LastMaintenanceDate = now
				e.MaintenanceDueDate = now.Add(maintenanceDueInterval)
				return nil
			}); err != nil {
				return err
			}
		}
		entry := s.auditEntry(actor, "Maintenance Completed", domain.TargetEquipment, updated.EquipmentID, eq.Name)
		entry.OldValue = string(domain.MaintenanceInProgress)
		entry.NewValue = string(domain.MaintenanceComplete)
		entry.Comment = findings
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}
