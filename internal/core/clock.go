package core

import "time"

// Clock supplies the current time to the service layer. Injecting a clock
// keeps every timestamp and escalation decision deterministic under test.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface, normalising to UTC.
type ClockFunc func() time.Time

// Now returns the function's time in UTC, falling back to the system clock
// when the receiver is nil.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// selectNowFunc resolves the effective clock: a store-provided now function
// wins, then the injected clock, then system UTC time.
func selectNowFunc(store PersistentStore, clock Clock) func() time.Time {
	type nowProvider interface {
		NowFunc() func() time.Time
	}
	if p, ok := store.(nowProvider); ok {
		if fn := p.NowFunc(); fn != nil {
			return func() time.Time { return fn().UTC() }
		}
	}
	if clock != nil {
		return clock.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

// extractRulesEngine returns the engine backing the store when it exposes one.
func extractRulesEngine(store PersistentStore) *RulesEngine {
	type engineProvider interface {
		RulesEngine() *RulesEngine
	}
	if p, ok := store.(engineProvider); ok {
		return p.RulesEngine()
	}
	return nil
}
