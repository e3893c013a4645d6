// Package integration holds cross-layer smoke tests covering the service,
// storage drivers, and blob adapters together.
package integration

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"plantcore/internal/blob"
	"plantcore/internal/core"
	"plantcore/internal/infra/persistence/memory"
	"plantcore/internal/infra/persistence/sqlite"
	"plantcore/pkg/domain"
)

var operator = domain.DefaultOperator

func TestPlantWorkflowSmoke(t *testing.T) {
	storeVariants := []struct {
		name string
		open func(t *testing.T) domain.PersistentStore
	}{
		{
			name: "memory",
			open: func(_ *testing.T) domain.PersistentStore {
				return memory.NewStore(core.DefaultRulesEngine())
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) domain.PersistentStore {
				s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "plant.db"), core.DefaultRulesEngine())
				if err != nil {
					t.Fatalf("open sqlite: %v", err)
				}
				t.Cleanup(func() { _ = s.Close() })
				return s
			},
		},
	}
	blobVariants := []struct {
		name string
		open func(t *testing.T) blob.Store
	}{
		{name: "memory", open: func(_ *testing.T) blob.Store { return blob.NewMemory() }},
		{name: "filesystem", open: func(t *testing.T) blob.Store {
			s, err := blob.NewFilesystem(t.TempDir())
			if err != nil {
				t.Fatalf("open fs blob: %v", err)
			}
			return s
		}},
	}

	for _, sv := range storeVariants {
		for _, bv := range blobVariants {
			t.Run(fmt.Sprintf("%s-store/%s-blob", sv.name, bv.name), func(t *testing.T) {
				metrics := core.NewExpvarMetricsRecorder("")
				var traceBuf bytes.Buffer
				tracer := core.NewJSONTracer(&traceBuf)
				svc := core.NewService(sv.open(t),
					core.WithBlobStore(bv.open(t)),
					core.WithMetricsRecorder(metrics),
					core.WithTracer(tracer),
				)
				runPlantWorkflow(t, svc)

				if len(tracer.Entries()) == 0 || traceBuf.Len() == 0 {
					t.Fatal("no trace spans recorded for the workflow")
				}
				snap := metrics.Snapshot()
				if snap.Results["create_batch"]["success"] != 1 {
					t.Fatalf("unexpected metrics %+v", snap.Results)
				}
			})
		}
	}
}

// runPlantWorkflow walks one representative day on the floor: an alarm is
// raised and acknowledged, a batch runs a phase, a major change moves through
// its full workflow with an attachment, and a maintenance job completes.
func runPlantWorkflow(t *testing.T, svc *core.Service) {
	t.Helper()
	ctx := t.Context()

	alarm, _, err := svc.GenerateAlarm(ctx, domain.Alarm{Source: "TEMP01", Message: "over limit", Priority: domain.PriorityCritical}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate alarm: %v", err)
	}
	if _, _, err := svc.AcknowledgeAlarm(ctx, alarm.ID, "investigating", operator); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	batch, _, err := svc.CreateBatch(ctx, domain.Batch{BatchNumber: "B-2026-014", ProductName: "IV Saline"}, operator)
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, _, err := svc.StartBatch(ctx, batch.ID, operator); err != nil {
		t.Fatalf("start batch: %v", err)
	}
	advanced, _, err := svc.AdvancePhase(ctx, batch.ID, "", "", operator)
	if err != nil {
		t.Fatalf("advance phase: %v", err)
	}
	if advanced.OverallProgress != 20 {
		t.Fatalf("overall progress = %v, want 20", advanced.OverallProgress)
	}

	record, _, err := svc.CreateChangeRecord(ctx, domain.ChangeRecord{Title: "Replace filler nozzle", Type: domain.ChangeMajor}, operator)
	if err != nil {
		t.Fatalf("create change: %v", err)
	}
	if _, _, err := svc.AttachChangeFile(ctx, record.ID, "risk-assessment.pdf", []byte("assessment"), operator); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, _, err := svc.SubmitForReview(ctx, record.ID, operator); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := svc.ApproveChange(ctx, record.ID, "approved", operator); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, _, err := svc.ImplementChange(ctx, record.ID, operator); err != nil {
		t.Fatalf("implement: %v", err)
	}
	closed, _, err := svc.CloseChange(ctx, record.ID, "validation passed", operator)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.ValidationStatus != domain.ValidationComplete {
		t.Fatalf("validation status = %s", closed.ValidationStatus)
	}

	eq, _, err := svc.RegisterEquipment(ctx, domain.Equipment{Name: "Filler 3"}, operator)
	if err != nil {
		t.Fatalf("register equipment: %v", err)
	}
	job, _, err := svc.ScheduleMaintenanceWork(ctx, domain.MaintenanceRecord{
		EquipmentID: eq.ID,
		Type:        domain.MaintenancePreventive,
		Description: "Lubricate cam followers",
	}, operator)
	if err != nil {
		t.Fatalf("schedule maintenance: %v", err)
	}
	if _, _, err := svc.StartMaintenance(ctx, job.ID, operator); err != nil {
		t.Fatalf("start maintenance: %v", err)
	}
	if _, _, err := svc.CompleteMaintenance(ctx, job.ID, "completed", nil, operator); err != nil {
		t.Fatalf("complete maintenance: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.RunningBatches != 1 || snap.OpenChanges != 0 || snap.ActiveAlarms != 0 {
		t.Fatalf("unexpected snapshot counts %+v", snap)
	}
	if len(snap.Audit) == 0 {
		t.Fatal("audit trail empty after workflow")
	}
}

func TestSQLiteStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.db")
	store, err := sqlite.NewStore(path, core.DefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	svc := core.NewService(store)
	alarm, _, err := svc.GenerateAlarm(t.Context(), domain.Alarm{Source: "PT-101", Message: "pressure", Priority: domain.PriorityHigh}, domain.SystemActor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := svc.ShelveAlarm(t.Context(), alarm.ID, 15*time.Minute, "planned vent", operator); err != nil {
		t.Fatalf("shelve: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := sqlite.NewStore(path, core.DefaultRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, ok := reopened.GetAlarm(alarm.ID)
	if !ok {
		t.Fatal("alarm lost across reopen")
	}
	if got.State != domain.AlarmShelved || got.ShelvedReason != "planned vent" {
		t.Fatalf("unexpected alarm %+v", got)
	}
	if trail := reopened.AuditTrail(); len(trail) == 0 {
		t.Fatal("audit trail lost across reopen")
	}
}
