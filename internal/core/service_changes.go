package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"plantcore/internal/blob"
	"plantcore/pkg/domain"
)

// nextChangeNumber derives the sequential change number from the number of
// records already in the store: CHG-<year>-<seq>.
func nextChangeNumber(tx Transaction, year int) string {
	return fmt.Sprintf("CHG-%d-%04d", year, tx.CountChangeRecords()+1)
}

// CreateChangeRecord opens a new change-control record in draft. The change
// number is assigned inside the transaction so concurrent creates cannot
// collide.
func (s *Service) CreateChangeRecord(ctx context.Context, change ChangeRecord, actor User) (ChangeRecord, Result, error) {
	var created ChangeRecord
	res, err := s.run(ctx, "create_change", change.ID, func(tx Transaction) error {
		if change.Title == "" {
			return fmt.Errorf("change title is required")
		}
		now := s.nowFn()
		if change.ChangeNumber == "" {
			change.ChangeNumber = nextChangeNumber(tx, now.Year())
		}
		change.Status = domain.ChangeDraft
		change.RequestedBy = actor.FullName
		change.RequestedAt = now
		change.ValidationRequired = change.Type == domain.ChangeMajor
		var err error
		created, err = tx.CreateChangeRecord(change)
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Change Record Created", domain.TargetChange, created.ID, created.ChangeNumber)
		tx.AppendAudit(entry)
		return nil
	})
	return created, res, err
}

// transitionChange applies one workflow command to a change record and
// appends the given audit action. A non-empty comment rides along on the
// audit entry.
func (s *Service) transitionChange(ctx context.Context, operation, id string, cmd domain.Command, action, comment string, actor User, mutate func(*ChangeRecord)) (ChangeRecord, Result, error) {
	var updated ChangeRecord
	res, err := s.run(ctx, operation, id, func(tx Transaction) error {
		var before domain.ChangeStatus
		var err error
		updated, err = tx.UpdateChangeRecord(id, func(c *ChangeRecord) error {
			next, err := s.changes.Next(id, c.Status, cmd)
			if err != nil {
				return err
			}
			before = c.Status
			c.Status = next
			if mutate != nil {
				mutate(c)
			}
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, action, domain.TargetChange, id, updated.ChangeNumber)
		entry.OldValue = string(before)
		entry.NewValue = string(updated.Status)
		entry.Comment = comment
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// SubmitForReview moves a draft change into the review queue.
func (s *Service) SubmitForReview(ctx context.Context, id string, actor User) (ChangeRecord, Result, error) {
	return s.transitionChange(ctx, "submit_change", id, domain.CmdSubmit, "Change Submitted for Review", "", actor, nil)
}

// ApproveChange approves a change pending review with an optional review
// comment.
func (s *Service) ApproveChange(ctx context.Context, id, comment string, actor User) (ChangeRecord, Result, error) {
	now := s.nowFn()
	return s.transitionChange(ctx, "approve_change", id, domain.CmdApprove, "Change Approved", comment, actor, func(c *ChangeRecord) {
		c.ReviewedBy = actor.FullName
		c.ReviewedAt = &now
		c.ApprovedBy = actor.FullName
		c.ApprovedAt = &now
	})
}

// RejectChange rejects a change pending review with a reason. Rejected is
// terminal; the record cannot be resubmitted.
func (s *Service) RejectChange(ctx context.Context, id, reason string, actor User) (ChangeRecord, Result, error) {
	if reason == "" {
		return ChangeRecord{}, Result{}, fmt.Errorf("rejection reason is required")
	}
	now := s.nowFn()
	updated, res, err := s.transitionChange(ctx, "reject_change", id, domain.CmdReject, "Change Rejected", reason, actor, func(c *ChangeRecord) {
		c.ReviewedBy = actor.FullName
		c.ReviewedAt = &now
		c.Comments = append(c.Comments, domain.ChangeComment{
			UserID:    actor.ID,
			UserName:  actor.FullName,
			Timestamp: now,
			Content:   "Rejected: " + reason,
		})
	})
	return updated, res, err
}

// ImplementChange marks an approved change as implemented. When validation is
// required the validation cycle opens here.
func (s *Service) ImplementChange(ctx context.Context, id string, actor User) (ChangeRecord, Result, error) {
	now := s.nowFn()
	return s.transitionChange(ctx, "implement_change", id, domain.CmdImplement, "Change Implemented", "", actor, func(c *ChangeRecord) {
		c.ImplementedBy = actor.FullName
		c.ImplementedAt = &now
		if c.ValidationRequired {
			c.ValidationStatus = domain.ValidationNotStarted
		}
	})
}

// CloseChange closes an implemented change. For validated changes the close
// marks validation complete and stores the notes.
func (s *Service) CloseChange(ctx context.Context, id, validationNotes string, actor User) (ChangeRecord, Result, error) {
	now := s.nowFn()
	return s.transitionChange(ctx, "close_change", id, domain.CmdClose, "Change Record Closed", validationNotes, actor, func(c *ChangeRecord) {
		c.ClosedBy = actor.FullName
		c.ClosedAt = &now
		if c.ValidationRequired {
			c.ValidationStatus = domain.ValidationComplete
			if validationNotes != "" {
				c.ValidationNotes = validationNotes
			}
		}
	})
}

// UpdateValidationStatus records IQ/OQ/PQ validation progress on a change.
func (s *Service) UpdateValidationStatus(ctx context.Context, id string, status domain.ValidationStatus, notes string, actor User) (ChangeRecord, Result, error) {
	var updated ChangeRecord
	res, err := s.run(ctx, "update_validation_status", id, func(tx Transaction) error {
		var before domain.ValidationStatus
		var err error
		updated, err = tx.UpdateChangeRecord(id, func(c *ChangeRecord) error {
			if !c.ValidationRequired {
				return fmt.Errorf("change %s does not require validation", id)
			}
			before = c.ValidationStatus
			c.ValidationStatus = status
			if notes != "" {
				c.ValidationNotes = notes
			}
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Validation Status Updated", domain.TargetChange, id, updated.ChangeNumber)
		entry.OldValue = string(before)
		entry.NewValue = string(status)
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// AddChangeComment appends a comment to a change record. Comments are
// append-only and allowed in any state.
func (s *Service) AddChangeComment(ctx context.Context, id, content string, actor User) (ChangeRecord, Result, error) {
	var updated ChangeRecord
	res, err := s.run(ctx, "add_change_comment", id, func(tx Transaction) error {
		if content == "" {
			return fmt.Errorf("comment content is required")
		}
		var err error
		updated, err = tx.UpdateChangeRecord(id, func(c *ChangeRecord) error {
			c.Comments = append(c.Comments, domain.ChangeComment{
				UserID:    actor.ID,
				UserName:  actor.FullName,
				Timestamp: s.nowFn(),
				Content:   content,
			})
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Comment Added", domain.TargetChange, id, updated.ChangeNumber)
		preview := content
		if len(preview) > 50 {
			preview = preview[:50]
		}
		entry.NewValue = preview
		tx.AppendAudit(entry)
		return nil
	})
	return updated, res, err
}

// AttachChangeFile stores a supporting document in the blob store and links
// its key to the change record.
func (s *Service) AttachChangeFile(ctx context.Context, id, filename string, data []byte, actor User) (ChangeRecord, Result, error) {
	if s.blobs == nil {
		return ChangeRecord{}, Result{}, fmt.Errorf("no blob store configured")
	}
	if filename == "" {
		return ChangeRecord{}, Result{}, fmt.Errorf("filename is required")
	}
	key := path.Join("changes", id, filename)
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{}); err != nil {
		return ChangeRecord{}, Result{}, fmt.Errorf("store attachment: %w", err)
	}
	var updated ChangeRecord
	res, err := s.run(ctx, "attach_change_file", id, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateChangeRecord(id, func(c *ChangeRecord) error {
			for _, existing := range c.Attachments {
				if existing == key {
					return fmt.Errorf("attachment %s already present", filename)
				}
			}
			c.Attachments = append(c.Attachments, key)
			return nil
		})
		if err != nil {
			return err
		}
		entry := s.auditEntry(actor, "Attachment Added", domain.TargetChange, id, updated.ChangeNumber)
		entry.Comment = filename
		tx.AppendAudit(entry)
		return nil
	})
	if err != nil {
		// Orphaned blobs are cleaned up opportunistically; the record is the
		// source of truth for attachment keys.
		if _, delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned attachment cleanup failed", "key", key, "error", delErr)
		}
	}
	return updated, res, err
}

// OpenChangeAttachment streams a stored attachment by its key.
func (s *Service) OpenChangeAttachment(ctx context.Context, id, key string) (blob.Info, []byte, error) {
	if s.blobs == nil {
		return blob.Info{}, nil, fmt.Errorf("no blob store configured")
	}
	record, ok := s.store.GetChangeRecord(id)
	if !ok {
		return blob.Info{}, nil, ErrNotFound{Entity: domain.EntityChange, ID: id}
	}
	linked := false
	for _, existing := range record.Attachments {
		if existing == key {
			linked = true
			break
		}
	}
	if !linked {
		return blob.Info{}, nil, fmt.Errorf("attachment %s not linked to change %s", key, id)
	}
	info, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return blob.Info{}, nil, err
	}
	return info, data, nil
}
