// Package logging builds the process-wide structured logger.
//
// The logger is a plain *slog.Logger. Its level lives in a slog.LevelVar so
// a configuration reload can change verbosity without rebuilding handlers.
// Records logged with a context carry the request and sweep identifiers
// stored in that context.
//
//	logger, level, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "deletion scheduled", "user_id", id) // includes request_id
//
//	level.Set(slog.LevelDebug)
package logging
