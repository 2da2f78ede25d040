package focus

import (
	"strings"
	"sync"
)

// Registry keeps one Tracker per screen name.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]*Tracker)}
}

// Tracker returns the tracker for screen, creating it on first use.
func (r *Registry) Tracker(screen string) *Tracker {
	screen = strings.TrimSpace(screen)
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[screen]
	if !ok {
		t = NewTracker()
		r.trackers[screen] = t
	}
	return t
}

// Lookup returns the tracker for screen without creating one.
func (r *Registry) Lookup(screen string) (*Tracker, bool) {
	screen = strings.TrimSpace(screen)
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[screen]
	return t, ok
}

// Len returns the number of screens that have been focused at least once.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}
