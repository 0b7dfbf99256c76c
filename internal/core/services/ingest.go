package services

import (
	"context"
	"fmt"
	"time"

	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
)

// Ingest merges one upstream search record into the store under the
// given keyword. The item row is written first, then one image row per
// exposed size and one person row per credited name. Safe to call
// repeatedly with the same record: the store's uniqueness constraints
// turn every duplicate into a no-op, so re-running a keyword can never
// produce duplicate rows or duplicate feed entries.
//
// Records missing an identifier or URL are skipped silently; upstream
// occasionally returns incomplete rows and their absence is tolerated.
func Ingest(
	ctx context.Context,
	store driven.ItemStore,
	keyword string,
	record domain.SearchRecord,
	observedAt time.Time,
) error {
	if !record.Complete() {
		return nil
	}

	item := domain.Item{
		Keyword:     keyword,
		ASIN:        record.ASIN,
		Title:       record.Title,
		URL:         record.URL,
		Kind:        record.Kind,
		Price:       record.Price,
		FirstSeenAt: observedAt,
	}
	if _, err := store.UpsertItem(ctx, item); err != nil {
		return fmt.Errorf("upsert item %s: %w", record.ASIN, err)
	}

	for _, size := range domain.ImageSizes() {
		url, ok := record.Image(size)
		if !ok {
			continue
		}
		if _, err := store.UpsertImage(ctx, record.ASIN, size, url); err != nil {
			return fmt.Errorf("upsert image %s/%s: %w", record.ASIN, size, err)
		}
	}

	for _, role := range domain.Roles() {
		for _, name := range record.Names(role) {
			if name == "" {
				continue
			}
			if _, err := store.UpsertPerson(ctx, record.ASIN, role, name); err != nil {
				return fmt.Errorf("upsert person %s/%s: %w", record.ASIN, role, err)
			}
		}
	}

	return nil
}
