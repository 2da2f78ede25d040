// Package focus drops the results of loads that finish after their screen lost focus.
package focus

import "sync"

// Tracker hands out one lease per focus event. Only the newest lease is active, and only until Blur.
type Tracker struct {
	mu         sync.Mutex
	generation uint64
	focused    bool
}

// Lease identifies one focus event.
type Lease struct {
	tracker    *Tracker
	generation uint64
}

// NewTracker returns a tracker with no focus period yet; every lease reads as inactive until Focus.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Focus starts a new focus period and invalidates earlier leases.
func (t *Tracker) Focus() Lease {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.focused = true
	return Lease{tracker: t, generation: t.generation}
}

// Blur ends the current focus period.
func (t *Tracker) Blur() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.focused = false
}

// Generation returns the id of the newest focus period.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// LeaseFor rebuilds a lease from a generation previously returned by Focus.
func (t *Tracker) LeaseFor(generation uint64) Lease {
	return Lease{tracker: t, generation: generation}
}

// Generation returns the lease's focus period id.
func (l Lease) Generation() uint64 {
	return l.generation
}

// Active reports whether the lease's focus period is still current.
func (l Lease) Active() bool {
	if l.tracker == nil {
		return false
	}
	l.tracker.mu.Lock()
	defer l.tracker.mu.Unlock()
	return l.tracker.focused && l.tracker.generation == l.generation
}

// Deliver runs fn if the lease is active and reports whether it ran. The tracker is only held
// for the check, so fn may block or call back into the tracker. Callers should have the result
// fully prepared before calling so the window between check and fn stays small.
func (l Lease) Deliver(fn func()) bool {
	if !l.Active() {
		return false
	}
	fn()
	return true
}
