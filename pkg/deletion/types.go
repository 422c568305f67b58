package deletion

import "time"

// PendingDeletion is a scheduled, not yet executed account deletion.
type PendingDeletion struct {
	// UserID is the opaque account identifier.
	UserID string `json:"user_id"`

	// Deadline is when the deletion becomes eligible for the sweep.
	Deadline time.Time `json:"deadline"`
}

// Due reports whether the deletion may be executed at now.
func (p PendingDeletion) Due(now time.Time) bool {
	return !p.Deadline.After(now)
}

// Clock returns the current time. Tests inject fixed clocks.
type Clock func() time.Time

// Observer receives lifecycle events, typically for metrics.
type Observer interface {
	// ObserveRequest records a deletion request outcome
	// ("scheduled", "already_scheduled", "invalid").
	ObserveRequest(result string)

	// ObserveCancel records a cancellation; removed is false when nothing was pending.
	ObserveCancel(removed bool)

	// SetPending records the current number of pending deletions.
	SetPending(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string) {}
func (nopObserver) ObserveCancel(bool)    {}
func (nopObserver) SetPending(int)        {}

// NopObserver returns an Observer that discards all events.
func NopObserver() Observer {
	return nopObserver{}
}
