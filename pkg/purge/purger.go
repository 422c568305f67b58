// Package purge irreversibly removes a user's account data once its
// deletion grace period has expired.
//
// A purge removes the user's media objects first and then, in a single
// database transaction, the account record, its posts and every friendship
// edge that references it. Purging an account that is already gone succeeds,
// so a sweep may safely retry a user whose previous attempt failed halfway.
package purge

import (
	"context"
	"fmt"
)

// Purger removes every piece of data belonging to a user.
// Implementations must be idempotent.
type Purger interface {
	Purge(ctx context.Context, userID string) error
}

// PurgerFunc adapts a function to the Purger interface.
type PurgerFunc func(ctx context.Context, userID string) error

// Purge calls f(ctx, userID).
func (f PurgerFunc) Purge(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

// Stage identifies the step of a purge that failed.
type Stage string

const (
	StageListMedia     Stage = "list_media"
	StageDeleteMedia   Stage = "delete_media"
	StageDeleteRecords Stage = "delete_records"
)

// PurgeError represents a failed purge of a single account.
type PurgeError struct {
	UserID string
	Stage  Stage
	Cause  error
}

// Error implements the error interface.
func (e *PurgeError) Error() string {
	return fmt.Sprintf("purge error [user=%s, stage=%s]: %v", e.UserID, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *PurgeError) Unwrap() error {
	return e.Cause
}

// NewPurgeError creates a new PurgeError.
func NewPurgeError(userID string, stage Stage, cause error) *PurgeError {
	return &PurgeError{
		UserID: userID,
		Stage:  stage,
		Cause:  cause,
	}
}
