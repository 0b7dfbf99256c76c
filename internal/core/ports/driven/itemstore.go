package driven

import (
	"context"
	"time"

	"github.com/keywatch/keywatch/internal/core/domain"
)

// ItemStore persists every item, image and contributor ever observed.
//
// All Upsert methods are idempotent: a row whose uniqueness tuple
// already exists is silently ignored and the method reports false.
// Rows are never mutated or deleted.
type ItemStore interface {
	// UpsertItem inserts the item unless its (keyword, asin, title,
	// url, kind) tuple already exists. Returns whether a row was
	// created; the flag is diagnostic only.
	UpsertItem(ctx context.Context, item domain.Item) (bool, error)

	// UpsertImage records a sized image for an ASIN. Unique per
	// (asin, url, size).
	UpsertImage(ctx context.Context, asin string, size domain.ImageSize, url string) (bool, error)

	// UpsertPerson records a credited contributor for an ASIN.
	// Unique per (asin, name, role).
	UpsertPerson(ctx context.Context, asin string, role domain.Role, name string) (bool, error)

	// ItemsSince returns every item first seen at or after the
	// watermark (inclusive), hydrated with its images and people.
	// A non-empty keyword restricts the scan to that keyword.
	// Every matching row is returned exactly once.
	ItemsSince(ctx context.Context, watermark time.Time, keyword string) ([]domain.Item, error)

	// Close releases the underlying resources.
	Close() error
}
