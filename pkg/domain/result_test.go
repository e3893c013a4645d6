package domain

import (
	"errors"
	"testing"
)

func TestResultMergeAndBlocking(t *testing.T) {
	var r Result
	if r.HasBlocking() {
		t.Fatalf("empty result should not block")
	}
	r.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	r.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}})
	if !r.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	warnings := r.Warnings()
	if len(warnings) != 1 || warnings[0].Rule != "a" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
}

func TestErrNotFoundMessage(t *testing.T) {
	err := ErrNotFound{Entity: EntityAlarm, ID: "ALM-404"}
	if err.Error() != "alarm ALM-404 not found" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	var nf ErrNotFound
	wrapped := error(err)
	if !errors.As(wrapped, &nf) || nf.ID != "ALM-404" {
		t.Fatalf("errors.As failed: %+v", nf)
	}
}

func TestPriorityRank(t *testing.T) {
	order := []AlarmPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s should outrank %s", order[i], order[i-1])
		}
	}
	if AlarmPriority("bogus").Rank() != 0 {
		t.Fatalf("unknown priority should rank 0")
	}
}
