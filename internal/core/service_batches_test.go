package core

import (
	"errors"
	"testing"

	"plantcore/pkg/domain"
)

func TestBatchRunToAbortScenario(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-2026-001", ProductName: "IV Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if batch.Status != domain.BatchIdle || len(batch.Phases) != 5 {
		t.Fatalf("unexpected batch %+v", batch)
	}

	started, _, err := svc.StartBatch(t.Context(), batch.ID, testOperator)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != domain.BatchRunning || started.CurrentPhaseName != "Initialization" || started.StartTime == nil {
		t.Fatalf("unexpected batch %+v", started)
	}
	if started.OperatorName != testOperator.FullName {
		t.Fatalf("operator = %q", started.OperatorName)
	}

	advanced, _, err := svc.AdvancePhase(t.Context(), batch.ID, "", "", testOperator)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if advanced.CurrentPhaseName != "Material Prep" || advanced.PhaseProgress != 0 || advanced.OverallProgress != 20 {
		t.Fatalf("unexpected batch %+v", advanced)
	}

	aborted, _, err := svc.AbortBatch(t.Context(), batch.ID, "operator error", testOperator)
	if err != nil {
		t.Fatalf("abort: %v", err)
	}
	if aborted.Status != domain.BatchAborted || aborted.EndTime == nil {
		t.Fatalf("unexpected batch %+v", aborted)
	}

	var actions []string
	for _, e := range svc.AuditTrail() {
		if e.TargetID == batch.ID {
			actions = append(actions, e.Action)
		}
	}
	want := []string{"Batch Aborted", "Phase Advanced", "Batch Started", "Batch Created"}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v", actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("audit actions = %v, want %v", actions, want)
		}
	}
}

func TestHoldAndResumeCycle(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Dextrose"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.StartBatch(t.Context(), batch.ID, testOperator); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, _, err := svc.HoldBatch(t.Context(), batch.ID, "", testOperator); err == nil {
		t.Fatal("expected error for missing hold reason")
	}

	held, _, err := svc.HoldBatch(t.Context(), batch.ID, "line contamination check", testOperator)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if held.Status != domain.BatchHolding {
		t.Fatalf("status = %s", held.Status)
	}
	if entry := latestAudit(t, svc); entry.Action != "Batch Hold" || entry.Comment != "line contamination check" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	resumed, _, err := svc.ResumeBatch(t.Context(), batch.ID, testOperator)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != domain.BatchRunning {
		t.Fatalf("status = %s", resumed.Status)
	}
}

func TestAdvancePhaseOnIdleBatchRejected(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, _, err = svc.AdvancePhase(t.Context(), batch.ID, "", "", testOperator)
	var te domain.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("want TransitionError, got %v", err)
	}
	got, _ := svc.GetBatch(batch.ID)
	if got.Status != domain.BatchIdle || got.PhaseProgress != 0 || got.OverallProgress != 0 {
		t.Fatalf("idle batch mutated: %+v", got)
	}
	if n := countAuditAction(svc, "Phase Advanced"); n != 0 {
		t.Fatalf("phase audit entries = %d, want 0", n)
	}
}

func TestAdvancingFinalPhaseCompletesBatch(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{
		BatchNumber: "B-1",
		ProductName: "Saline",
		Phases: []domain.BatchPhase{
			{ID: "phase-1", Name: "Mix", Order: 1},
			{ID: "phase-2", Name: "Fill", Order: 2},
		},
	}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.StartBatch(t.Context(), batch.ID, testOperator); err != nil {
		t.Fatalf("start: %v", err)
	}

	mid, _, err := svc.AdvancePhase(t.Context(), batch.ID, "", "", testOperator)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if mid.CurrentPhaseName != "Fill" || mid.OverallProgress != 50 {
		t.Fatalf("unexpected batch %+v", mid)
	}

	done, _, err := svc.AdvancePhase(t.Context(), batch.ID, "", "", testOperator)
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if done.Status != domain.BatchComplete || done.OverallProgress != 100 || done.EndTime == nil {
		t.Fatalf("unexpected batch %+v", done)
	}
	if entry := latestAudit(t, svc); entry.Action != "Batch Completed" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
}

func TestAdvancePhaseJumpsToNamedPhase(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.StartBatch(t.Context(), batch.ID, testOperator); err != nil {
		t.Fatalf("start: %v", err)
	}

	jumped, _, err := svc.AdvancePhase(t.Context(), batch.ID, "phase-4", "Quality Check", testOperator)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	if jumped.CurrentPhaseID != "phase-4" || jumped.CurrentPhaseName != "Quality Check" {
		t.Fatalf("unexpected batch %+v", jumped)
	}
	if jumped.CompletedPhases != 3 || jumped.OverallProgress != 60 || jumped.PhaseProgress != 0 {
		t.Fatalf("unexpected progress %+v", jumped)
	}
	if entry := latestAudit(t, svc); entry.Action != "Phase Advanced" || entry.OldValue != "Initialization" || entry.NewValue != "Quality Check" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	// A phase outside the recipe is refused and the batch is untouched.
	if _, _, err := svc.AdvancePhase(t.Context(), batch.ID, "phase-9", "Mystery", testOperator); err == nil {
		t.Fatal("expected error for unknown phase")
	}
	got, _ := svc.GetBatch(batch.ID)
	if got.CurrentPhaseID != "phase-4" || got.OverallProgress != 60 {
		t.Fatalf("batch mutated by rejected jump %+v", got)
	}
}

func TestVerifyMaterialUpsertsByLotID(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lot := domain.MaterialLot{ID: "lot-1", PartNumber: "PN-204", LotNumber: "L-0098", Quantity: 40, Unit: "kg"}
	updated, _, err := svc.VerifyMaterial(t.Context(), batch.ID, lot, testOperator)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(updated.MaterialLots) != 1 || !updated.MaterialLots[0].Verified {
		t.Fatalf("unexpected lots %+v", updated.MaterialLots)
	}
	if updated.MaterialLots[0].VerifiedBy != testOperator.FullName || updated.MaterialLots[0].VerifiedAt == nil {
		t.Fatalf("verification stamp missing %+v", updated.MaterialLots[0])
	}
	if entry := latestAudit(t, svc); entry.Action != "Material Verified" || entry.Comment != "PN-204 - Lot: L-0098" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	// Re-verifying the same lot id replaces, never duplicates.
	lot.LotNumber = "L-0099"
	updated, _, err = svc.VerifyMaterial(t.Context(), batch.ID, lot, testOperator)
	if err != nil {
		t.Fatalf("re-verify: %v", err)
	}
	if len(updated.MaterialLots) != 1 || updated.MaterialLots[0].LotNumber != "L-0099" {
		t.Fatalf("unexpected lots %+v", updated.MaterialLots)
	}
}

func TestRecordQualityCheckUpsertsByCheckID(t *testing.T) {
	svc, _ := newTestService(t)
	batch, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	check := domain.QualityCheck{ID: "qc-1", CheckpointName: "Line Clearance", Result: domain.QualityPass}
	updated, _, err := svc.RecordQualityCheck(t.Context(), batch.ID, check, testOperator)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(updated.QualityChecks) != 1 || updated.QualityChecks[0].CompletedAt == nil {
		t.Fatalf("unexpected checks %+v", updated.QualityChecks)
	}
	if entry := latestAudit(t, svc); entry.Comment != "Line Clearance: PASS" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	check.Result = domain.QualityFail
	updated, _, err = svc.RecordQualityCheck(t.Context(), batch.ID, check, testOperator)
	if err != nil {
		t.Fatalf("re-record: %v", err)
	}
	if len(updated.QualityChecks) != 1 || updated.QualityChecks[0].Result != domain.QualityFail {
		t.Fatalf("unexpected checks %+v", updated.QualityChecks)
	}
}

func TestTickBatchProgressOnlyMovesRunningBatches(t *testing.T) {
	svc, _ := newTestService(t)
	idle, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-1", ProductName: "Saline"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	running, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-2", ProductName: "Dextrose"}, testOperator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.StartBatch(t.Context(), running.ID, testOperator); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.TickBatchProgress(t.Context(), 1.5); err != nil {
		t.Fatalf("tick: %v", err)
	}
	got, _ := svc.GetBatch(running.ID)
	if got.PhaseProgress != 1.5 {
		t.Fatalf("phase progress = %v, want 1.5", got.PhaseProgress)
	}
	if got, _ := svc.GetBatch(idle.ID); got.PhaseProgress != 0 {
		t.Fatalf("idle batch ticked to %v", got.PhaseProgress)
	}

	// Progress clamps at 100.
	if _, err := svc.TickBatchProgress(t.Context(), 250); err != nil {
		t.Fatalf("tick: %v", err)
	}
	got, _ = svc.GetBatch(running.ID)
	if got.PhaseProgress != 100 {
		t.Fatalf("phase progress = %v, want clamped 100", got.PhaseProgress)
	}
}
