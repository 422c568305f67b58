package deletion

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyScheduled is returned when the user already has a pending deletion.
	ErrAlreadyScheduled = errors.New("deletion already scheduled")

	// ErrInvalidUserID is returned for empty user identifiers.
	ErrInvalidUserID = errors.New("invalid user id")
)

// ScheduleError reports a rejected Schedule call together with the deadline
// that is already in place.
type ScheduleError struct {
	UserID   string
	Existing time.Time
	Cause    error
}

// Error implements the error interface.
func (e *ScheduleError) Error() string {
	if e.Existing.IsZero() {
		return fmt.Sprintf("schedule deletion [user_id=%s]: %v", e.UserID, e.Cause)
	}
	return fmt.Sprintf("schedule deletion [user_id=%s, deadline=%s]: %v",
		e.UserID, e.Existing.Format(time.RFC3339), e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ScheduleError) Unwrap() error {
	return e.Cause
}

// NewScheduleError creates a new ScheduleError.
func NewScheduleError(userID string, existing time.Time, cause error) *ScheduleError {
	return &ScheduleError{
		UserID:   userID,
		Existing: existing,
		Cause:    cause,
	}
}
