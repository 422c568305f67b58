package deletion

import (
	"sort"
	"sync"
	"time"
)

// Registry maps user IDs to deletion deadlines.
//
// It is the only mutable state shared between the lifecycle Service and the
// sweep. Each method holds the mutex for its own critical section and never
// across a call into another component.
type Registry struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]time.Time),
	}
}

// NewRegistryFrom creates a registry seeded with entries, usually the result
// of a snapshot load. The map is copied.
func NewRegistryFrom(entries map[string]time.Time) *Registry {
	r := &Registry{
		entries: make(map[string]time.Time, len(entries)),
	}
	for userID, deadline := range entries {
		r.entries[userID] = deadline
	}
	return r
}

// Schedule inserts a deletion for userID if none is pending.
// An existing deadline is never overwritten; the call fails with a
// *ScheduleError wrapping ErrAlreadyScheduled instead.
func (r *Registry) Schedule(userID string, deadline time.Time) error {
	if userID == "" {
		return NewScheduleError(userID, time.Time{}, ErrInvalidUserID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[userID]; ok {
		return NewScheduleError(userID, existing, ErrAlreadyScheduled)
	}
	r.entries[userID] = deadline
	return nil
}

// Cancel removes the pending deletion for userID. Cancelling an absent entry
// is not an error; the result reports whether anything was removed.
func (r *Registry) Cancel(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[userID]; !ok {
		return false
	}
	delete(r.entries, userID)
	return true
}

// Due returns the users whose deadline is at or before now, sorted by ID.
// The scan runs in a single critical section.
func (r *Registry) Due(now time.Time) []string {
	r.mu.Lock()
	due := make([]string, 0)
	for userID, deadline := range r.entries {
		if !deadline.After(now) {
			due = append(due, userID)
		}
	}
	r.mu.Unlock()

	sort.Strings(due)
	return due
}

// RemoveIfPresent retires an entry after its purge succeeded.
// It reports false if the user was cancelled in the meantime.
func (r *Registry) RemoveIfPresent(userID string) bool {
	return r.Cancel(userID)
}

// Deadline returns the pending deadline for userID.
func (r *Registry) Deadline(userID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline, ok := r.entries[userID]
	return deadline, ok
}

// Len returns the number of pending deletions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Snapshot returns a copy of every pending deletion.
func (r *Registry) Snapshot() map[string]time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]time.Time, len(r.entries))
	for userID, deadline := range r.entries {
		out[userID] = deadline
	}
	return out
}
