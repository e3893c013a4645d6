package domain

// DefaultAuditCapacity bounds the audit trail; the oldest entries are
// evicted once the cap is reached.
const DefaultAuditCapacity = 1000

// AuditTrail is a bounded, newest-first log of audit entries. It has value
// semantics so stores can clone it cheaply inside copy-on-write
// transactions; Append returns the updated trail rather than mutating in
// place.
type AuditTrail struct {
	capacity int
	entries  []AuditEntry
}

// NewAuditTrail returns an empty trail with the given capacity. A
// non-positive capacity falls back to DefaultAuditCapacity.
func NewAuditTrail(capacity int) AuditTrail {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return AuditTrail{capacity: capacity}
}

// Append inserts the entry at the head of the trail, evicting the oldest
// entries beyond capacity.
func (t AuditTrail) Append(entry AuditEntry) AuditTrail {
	entries := make([]AuditEntry, 0, min(len(t.entries)+1, t.cap()))
	entries = append(entries, entry)
	keep := t.cap() - 1
	if keep > len(t.entries) {
		keep = len(t.entries)
	}
	entries = append(entries, t.entries[:keep]...)
	return AuditTrail{capacity: t.capacity, entries: entries}
}

// Entries returns a copy of the trail, newest first.
func (t AuditTrail) Entries() []AuditEntry {
	out := make([]AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of retained entries.
func (t AuditTrail) Len() int { return len(t.entries) }

// Capacity returns the configured retention bound.
func (t AuditTrail) Capacity() int { return t.cap() }

// Restore rebuilds a trail from persisted entries (newest first), dropping
// anything beyond capacity.
func (t AuditTrail) Restore(entries []AuditEntry) AuditTrail {
	keep := len(entries)
	if keep > t.cap() {
		keep = t.cap()
	}
	restored := make([]AuditEntry, keep)
	copy(restored, entries[:keep])
	return AuditTrail{capacity: t.capacity, entries: restored}
}

func (t AuditTrail) cap() int {
	if t.capacity <= 0 {
		return DefaultAuditCapacity
	}
	return t.capacity
}
