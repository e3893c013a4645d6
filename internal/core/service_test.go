package core

import (
	"sync"
	"testing"
	"time"

	"plantcore/internal/infra/persistence/memory"
	"plantcore/pkg/domain"
)

var testOperator = domain.User{ID: "USR010", Username: "mgarcia", FullName: "Maria Garcia", Role: "operator"}

// testClock is a manually advanced clock injected into the service and store.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryTestStore() *memory.Store {
	return memory.NewStore(DefaultRulesEngine())
}

func newTestService(t *testing.T, opts ...Option) (*Service, *testClock) {
	t.Helper()
	clock := newTestClock()
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewService(newMemoryTestStore(), opts...), clock
}

func countAuditAction(s *Service, action string) int {
	n := 0
	for _, e := range s.AuditTrail() {
		if e.Action == action {
			n++
		}
	}
	return n
}

func latestAudit(t *testing.T, s *Service) AuditEntry {
	t.Helper()
	trail := s.AuditTrail()
	if len(trail) == 0 {
		t.Fatal("audit trail is empty")
	}
	return trail[0]
}

func TestAuditEntriesCarryWorkstationAndActor(t *testing.T) {
	svc, _ := newTestService(t, WithWorkstation("HMI-007"))
	if _, _, err := svc.CreateBatch(t.Context(), Batch{BatchNumber: "B-100", ProductName: "Saline"}, testOperator); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	entry := latestAudit(t, svc)
	if entry.Workstation != "HMI-007" {
		t.Fatalf("workstation = %q, want HMI-007", entry.Workstation)
	}
	if entry.UserID != testOperator.ID || entry.UserName != testOperator.FullName {
		t.Fatalf("actor attribution = %q/%q", entry.UserID, entry.UserName)
	}
	if entry.Timestamp.IsZero() {
		t.Fatal("audit timestamp not stamped")
	}
}
