package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestAuditTrailNewestFirst(t *testing.T) {
	trail := NewAuditTrail(10)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		trail = trail.Append(AuditEntry{ID: fmt.Sprintf("AUD-%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}
	entries := trail.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "AUD-2" || entries[2].ID != "AUD-0" {
		t.Fatalf("entries not newest first: %s..%s", entries[0].ID, entries[2].ID)
	}
}

func TestAuditTrailEvictsOldest(t *testing.T) {
	trail := NewAuditTrail(5)
	for i := 0; i < 8; i++ {
		trail = trail.Append(AuditEntry{ID: fmt.Sprintf("AUD-%d", i)})
	}
	if trail.Len() != 5 {
		t.Fatalf("expected cap at 5, got %d", trail.Len())
	}
	entries := trail.Entries()
	if entries[0].ID != "AUD-7" {
		t.Fatalf("newest entry should survive, got %s", entries[0].ID)
	}
	if entries[4].ID != "AUD-3" {
		t.Fatalf("oldest retained should be AUD-3, got %s", entries[4].ID)
	}
}

func TestAuditTrailAppendDoesNotMutateOriginal(t *testing.T) {
	trail := NewAuditTrail(10)
	trail = trail.Append(AuditEntry{ID: "AUD-0"})
	branched := trail.Append(AuditEntry{ID: "AUD-1"})
	if trail.Len() != 1 {
		t.Fatalf("original trail mutated: len=%d", trail.Len())
	}
	if branched.Len() != 2 {
		t.Fatalf("branched trail wrong length: %d", branched.Len())
	}
}

func TestAuditTrailDefaultCapacity(t *testing.T) {
	trail := NewAuditTrail(0)
	if trail.Capacity() != DefaultAuditCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultAuditCapacity, trail.Capacity())
	}
	var zero AuditTrail
	zero = zero.Append(AuditEntry{ID: "AUD-0"})
	if zero.Len() != 1 {
		t.Fatalf("zero-value trail should accept entries")
	}
}

func TestAuditTrailRestoreTruncates(t *testing.T) {
	entries := make([]AuditEntry, 7)
	for i := range entries {
		entries[i] = AuditEntry{ID: fmt.Sprintf("AUD-%d", i)}
	}
	trail := NewAuditTrail(4).Restore(entries)
	if trail.Len() != 4 {
		t.Fatalf("restore should truncate to capacity, got %d", trail.Len())
	}
	if got := trail.Entries()[0].ID; got != "AUD-0" {
		t.Fatalf("restore should keep head order, got %s", got)
	}
}
