// Package snapshot persists the pending-deletion registry across restarts.
//
// The registry is loaded once at startup and saved once at graceful
// shutdown. Two backends are available:
//
//   - FileStore: a JSON object mapping user ID to an RFC 3339 deadline
//     (the default, written atomically via temp file + rename)
//   - SQLiteStore: a single pending_deletions table in a SQLite database
//
// A missing snapshot is a first run and loads as an empty map. A snapshot
// that exists but cannot be read or decoded is reported as a *SnapshotError
// and must stop startup: continuing would silently forget pending deletions.
package snapshot
