// Package deletion implements deferred account deletion: a user asks for
// their account to be removed, the request is held for a grace period, and
// only after the deadline has passed does the sweep purge the account.
//
// # Components
//
// The package is split into the pieces that share the pending-deletion state:
//
//  1. Registry - the in-memory map of user ID to deadline, guarded by a mutex
//  2. Service - the lifecycle API used by the HTTP tier (request, cancel, inspect)
//  3. snapshot - loads the registry at startup and saves it at shutdown
//  4. sweep - wakes on an interval and hands matured users to a purge.Purger
//
// There is exactly one Registry per process. It is built once from the
// snapshot and passed explicitly to both the Service and the sweep Scheduler.
//
// # Basic Usage
//
//	entries, err := store.Load(ctx)
//	if err != nil {
//	    return err // a corrupt snapshot is fatal
//	}
//	registry := deletion.NewRegistryFrom(entries)
//	svc := deletion.NewService(registry, &deletion.ServiceConfig{
//	    GracePeriod: 30 * 24 * time.Hour,
//	})
//
//	pending, err := svc.RequestDeletion(ctx, "user-123")
//	if errors.Is(err, deletion.ErrAlreadyScheduled) {
//	    // report 409 to the caller
//	}
//
//	// On login:
//	svc.CancelDeletion(ctx, "user-123")
//
// # Locking
//
// Every Registry operation takes the lock for its own critical section only.
// The sweep releases the lock before calling the purger and re-acquires it to
// retire the entry, so a slow purge never blocks Schedule or Cancel.
//
// # Durability
//
// Pending deletions are persisted once, at graceful shutdown. A hard crash
// loses every request made since the last start.
package deletion
