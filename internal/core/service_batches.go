package core

import (
	"context"
	"fmt"
	"strings"

	"plantcore/pkg/domain"
)

// CreateBatch registers a new batch in the idle state. A batch with no
// explicit phase list receives the default five-phase recipe.
func (s *Service) CreateBatch(ctx context.Context, batch Batch, actor User) (Batch, Result, error) {
	var created Batch
	res, err := s.run(ctx, "create_batch", batch.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateBatch(batch)
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Batch Created", domain.TargetBatch, created.ID, created.BatchNumber)
		tx.AppendAudit(entry)
		return nil
	})
	return created, res, err
}

// StartBatch moves an idle batch into execution, entering its first phase.
func (s *Service) StartBatch(ctx context.Context, id string, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "start_batch", id, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBatch(id, func(b *Batch) error {
			next, err := s.batches.Next(id, b.Status, domain.CmdStart)
			if err != nil {
				return err
			}
			now := s.nowFn()
			b.Status = next
			b.StartTime = &now
			b.OperatorID = actor.ID
			b.OperatorName = actor.FullName
			if len(b.Phases) > 0 {
				b.CurrentPhaseID = b.Phases[0].ID
				b.CurrentPhaseName = b.Phases[0].Name
			}
			b.CompletedPhases = 0
			b.PhaseProgress = 0
			b.OverallProgress = 0
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Batch Started", domain.TargetBatch, id, updated.BatchNumber)
		entry.OldValue = string(domain.BatchIdle)
		entry.NewValue = string(domain.BatchRunning)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// HoldBatch suspends a running batch with a mandatory reason.
func (s *Service) HoldBatch(ctx context.Context, id, reason string, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "hold_batch", id, func(tx Transaction) error {
		if reason == "" {
			return fmt.Errorf("hold reason is required")
		}
		var err error
		updated, err = tx.UpdateBatch(id, func(b *Batch) error {
			next, err := s.batches.Next(id, b.Status, domain.CmdHold)
			if err != nil {
				return err
			}
			b.Status = next
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Batch Hold", domain.TargetBatch, id, updated.BatchNumber)
		entry.OldValue = string(domain.BatchRunning)
		entry.NewValue = string(domain.BatchHolding)
		entry.Comment = reason
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// ResumeBatch returns a holding batch to the running state.
func (s *Service) ResumeBatch(ctx context.Context, id string, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "resume_batch", id, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBatch(id, func(b *Batch) error {
			next, err := s.batches.Next(id, b.Status, domain.CmdResume)
			if err != nil {
				return err
			}
			b.Status = next
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Batch Resumed", domain.TargetBatch, id, updated.BatchNumber)
		entry.OldValue = string(domain.BatchHolding)
		entry.NewValue = string(domain.BatchRunning)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// CompleteBatch moves a batch to its terminal complete state.
func (s *Service) CompleteBatch(ctx context.Context, id string, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "complete_batch", id, func(tx Transaction) error {
		var before domain.BatchState
		var err error
		updated, err = tx.UpdateBatch(id, func(b *Batch) error {
			next, err := s.batches.Next(id, b.Status, domain.CmdComplete)
			if err != nil {
				return err
			}
			before = b.Status
			now := s.nowFn()
			b.Status = next
			b.EndTime = &now
			b.CompletedPhases = len(b.Phases)
			b.PhaseProgress = 100
			b.OverallProgress = 100
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Batch Completed", domain.TargetBatch, id, updated.BatchNumber)
		entry.OldValue = string(before)
		entry.NewValue = string(domain.BatchComplete)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// AbortBatch terminates a batch with a mandatory reason.
func (s *Service) AbortBatch(ctx context.Context, id, reason string, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "abort_batch", id, func(tx Transaction) error {
		if reason == "" {
			return fmt.Errorf("abort reason is required")
		}
		var before domain.BatchState
		var err error
		updated, err = tx.UpdateBatch(id, func(b *Batch) error {
			next, err := s.batches.Next(id, b.Status, domain.CmdAbort)
			if err != nil {
				return err
			}
			before = b.Status
			now := s.nowFn()
			b.Status = next
			b.EndTime = &now
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Batch Aborted", domain.TargetBatch, id, updated.BatchNumber)
		entry.OldValue = string(before)
		entry.NewValue = string(domain.BatchAborted)
		entry.Comment = reason
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// AdvancePhase moves a running batch to another phase of its recipe. An
// empty nextPhaseID steps to the next phase in order, and finishing the last
// phase completes the batch; a named phase jumps directly there. Overall
// progress derives from the position reached in the phase list.
func (s *Service) AdvancePhase(ctx context.Context, id, nextPhaseID, nextPhaseName string, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "advance_phase", id, func(tx Transaction) error {
		var oldPhase, newPhase string
		completed := false
		var err error
		updated, err = tx.UpdateBatch(id, func(b *Batch) error {
			if _, err := s.batches.Next(id, b.Status, domain.CmdAdvance); err != nil {
				return err
			}
			if len(b.Phases) == 0 {
				return fmt.Errorf("batch %s has no phases", id)
			}
			oldPhase = b.CurrentPhaseName
			target := b.CompletedPhases + 1
			if nextPhaseID != "" {
				target = -1
				for i := range b.Phases {
					if b.Phases[i].ID == nextPhaseID {
						target = i
						break
					}
				}
				if target < 0 {
					return fmt.Errorf("phase %s is not in the recipe of batch %s", nextPhaseID, id)
				}
			}
			if target >= len(b.Phases) {
				next, err := s.batches.Next(id, b.Status, domain.CmdComplete)
				if err != nil {
					return err
				}
				now := s.nowFn()
				b.Status = next
				b.EndTime = &now
				b.CompletedPhases = len(b.Phases)
				b.PhaseProgress = 100
				b.OverallProgress = 100
				completed = true
				return nil
			}
			phase := b.Phases[target]
			b.CompletedPhases = target
			b.CurrentPhaseID = phase.ID
			b.CurrentPhaseName = phase.Name
			if nextPhaseName != "" {
				b.CurrentPhaseName = nextPhaseName
			}
			newPhase = b.CurrentPhaseName
			b.PhaseProgress = 0
			b.OverallProgress = float64(target) / float64(len(b.Phases)) * 100
			return nil
		})
		if err != nil {
			return err
		}
		if completed {
			entry := s.auditEntry(actor, "Batch Completed", domain.TargetBatch, id, updated.BatchNumber)
			entry.OldValue = oldPhase
			entry.NewValue = string(domain.BatchComplete)
			tx.AppendAudit(entry)
			return nil
		}
		entry := s.auditEntry(actor, "Phase Advanced", domain.TargetBatch, id, updated.BatchNumber)
		entry.OldValue = oldPhase
		entry.NewValue = newPhase
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// VerifyMaterial records a verified material lot against a batch. The write
// is an upsert keyed by the lot id so re-verification replaces the earlier
// record; it is allowed in any batch state.
func (s *Service) VerifyMaterial(ctx context.Context, batchID string, lot domain.MaterialLot, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "verify_material", batchID, func(tx Transaction) error {
		if lot.ID == "" {
			return fmt.Errorf("material lot id is required")
		}
		var err error
		updated, err = tx.UpdateBatch(batchID, func(b *Batch) error {
			now := s.nowFn()
			lot.Verified = true
			lot.VerifiedBy = actor.FullName
			lot.VerifiedAt = &now
			for i := range b.MaterialLots {
				if b.MaterialLots[i].ID == lot.ID {
					b.MaterialLots[i] = lot
					return nil
				}
			}
			b.MaterialLots = append(b.MaterialLots, lot)
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Material Verified", domain.TargetBatch, batchID, updated.BatchNumber)
		entry.Comment = fmt.Sprintf("%s - Lot: %s", lot.PartNumber, lot.LotNumber)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// RecordQualityCheck records the outcome of a quality checkpoint on a batch.
// The write is an upsert keyed by the check id so a re-run replaces the
// earlier result.
func (s *Service) RecordQualityCheck(ctx context.Context, batchID string, check domain.QualityCheck, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "record_quality_check", batchID, func(tx Transaction) error {
		if check.CheckpointName == "" {
			return fmt.Errorf("checkpoint name is required")
		}
		if check.Result == "" {
			check.Result = domain.QualityPending
		}
		var err error
		updated, err = tx.UpdateBatch(batchID, func(b *Batch) error {
			now := s.nowFn()
			if check.CompletedAt == nil && check.Result != domain.QualityPending {
				check.CompletedAt = &now
			}
			if check.Operator == "" {
				check.Operator = actor.FullName
			}
			for i := range b.QualityChecks {
				if check.ID != "" && b.QualityChecks[i].ID == check.ID {
					b.QualityChecks[i] = check
					return nil
				}
			}
			b.QualityChecks = append(b.QualityChecks, check)
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Quality Check Recorded", domain.TargetBatch, batchID, updated.BatchNumber)
		entry.Comment = fmt.Sprintf("%s: %s", check.CheckpointName, strings.ToUpper(string(check.Result)))
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// RecordDeviation documents a process deviation against a batch.
func (s *Service) RecordDeviation(ctx context.Context, batchID string, deviation domain.BatchDeviation, actor User) (Batch, Result, error) {
	var updated Batch
	res, err := s.run(ctx, "record_deviation", batchID, func(tx Transaction) error {
		if deviation.Description == "" {
			return fmt.Errorf("deviation description is required")
		}
		var err error
		updated, err = tx.UpdateBatch(batchID, func(b *Batch) error {
			if deviation.Timestamp.IsZero() {
				deviation.Timestamp = s.nowFn()
			}
			b.Deviations = append(b.Deviations, deviation)
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Deviation Recorded", domain.TargetBatch, batchID, updated.BatchNumber)
		entry.Comment = deviation.Description
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// TickBatchProgress advances the phase progress of every running batch by
// delta percentage points, clamped to 100. The monitor calls this on its
// progress interval; no audit attribution is written.
func (s *Service) TickBatchProgress(ctx context.Context, delta float64) (Result, error) {
	return s.run(ctx, "tick_batch_progress", "", func(tx Transaction) error {
		for _, b := range tx.Snapshot().ListBatches() {
			if b.Status != domain.BatchRunning {
				continue
			}
			if _, err := tx.UpdateBatch(b.ID, func(bt *Batch) error {
				bt.PhaseProgress += delta
				if bt.PhaseProgress > 100 {
					bt.PhaseProgress = 100
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
