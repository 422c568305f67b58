package purge

import (
	"context"
	"fmt"
	"log/slog"
)

// RecordStore is the account database as seen by the purger.
type RecordStore interface {
	// MediaKeys returns the media object keys referenced by the user's posts.
	MediaKeys(ctx context.Context, userID string) ([]string, error)

	// DeleteAccount removes the user, their posts and their friendships
	// atomically. Deleting an absent user is not an error.
	DeleteAccount(ctx context.Context, userID string) error
}

// MediaStore removes stored media objects.
type MediaStore interface {
	// Delete removes the object at key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// GalleryPurger purges gallery accounts: post images first, then records.
type GalleryPurger struct {
	records RecordStore
	media   MediaStore
	logger  *slog.Logger
}

// NewGalleryPurger creates a GalleryPurger.
func NewGalleryPurger(records RecordStore, media MediaStore, logger *slog.Logger) *GalleryPurger {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryPurger{
		records: records,
		media:   media,
		logger:  logger.With("component", "purge.gallery"),
	}
}

// Purge removes the user's media and records.
//
// Media goes first so that a failure leaves the records in place and the
// remaining keys can still be enumerated on the next attempt.
func (p *GalleryPurger) Purge(ctx context.Context, userID string) error {
	keys, err := p.records.MediaKeys(ctx, userID)
	if err != nil {
		return NewPurgeError(userID, StageListMedia, err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return NewPurgeError(userID, StageDeleteMedia, err)
		}
		if err := p.media.Delete(ctx, key); err != nil {
			return NewPurgeError(userID, StageDeleteMedia, fmt.Errorf("key %q: %w", key, err))
		}
		p.logger.DebugContext(ctx, "media deleted", "user_id", userID, "key", key)
	}

	if err := p.records.DeleteAccount(ctx, userID); err != nil {
		return NewPurgeError(userID, StageDeleteRecords, err)
	}

	p.logger.InfoContext(ctx, "account purged", "user_id", userID, "media_objects", len(keys))
	return nil
}

var _ Purger = (*GalleryPurger)(nil)
