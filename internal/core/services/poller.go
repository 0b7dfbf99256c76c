package services

import (
	"context"
	"fmt"
	"time"

	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
	"github.com/keywatch/keywatch/internal/core/ports/driving"
	"github.com/keywatch/keywatch/internal/logger"
)

// Ensure Poller implements the interface.
var _ driving.Poller = (*Poller)(nil)

// Poller runs one poll cycle per invocation: search, ingest, reselect
// novelty. It holds no state between runs; novelty lives entirely in
// the store's first-seen timestamps.
type Poller struct {
	store  driven.ItemStore
	search driven.SearchClient
	mode   string
	now    func() time.Time
}

// NewPoller creates a poller over the given store and search client.
func NewPoller(store driven.ItemStore, search driven.SearchClient, mode string) *Poller {
	return &Poller{
		store:  store,
		search: search,
		mode:   mode,
		now:    time.Now,
	}
}

// WithClock overrides the poller's clock. Used by tests.
func (p *Poller) WithClock(now func() time.Time) *Poller {
	p.now = now
	return p
}

// Poll fetches the current search results for every keyword, merges
// them into the store, and returns the items first observed at or after
// the watermark.
//
// The watermark is captured before any network or ingest work so that
// items ingested during this very run fall inside the window; capturing
// it later would silently drop the first items of each run. Items
// re-ingested unchanged keep their original first-seen time and are
// correctly excluded.
func (p *Poller) Poll(ctx context.Context, keywords []string) ([]domain.Item, error) {
	watermark := p.now().UTC()
	logger.Debug("poll watermark %s", watermark.Format(time.RFC3339))

	var fresh []domain.Item
	for _, keyword := range keywords {
		items, err := p.pollKeyword(ctx, keyword, watermark)
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, items...)
	}

	logger.Info("poll complete: %d new item(s) across %d keyword(s)",
		len(fresh), len(keywords))
	return fresh, nil
}

// pollKeyword ingests one keyword's results and reselects its novelty.
// Upstream failure or an empty result set skips the keyword without
// failing the run; absence of results is a valid outcome.
func (p *Poller) pollKeyword(
	ctx context.Context, keyword string, watermark time.Time,
) ([]domain.Item, error) {
	records, err := p.search.Search(ctx, keyword, p.mode)
	if err != nil {
		logger.Warn("search %q failed, skipping: %v", keyword, err)
		return nil, nil
	}
	if len(records) == 0 {
		logger.Debug("search %q returned no results", keyword)
		return nil, nil
	}

	logger.Section("ingest %q (%d records)", keyword, len(records))

	failures := 0
	for _, record := range records {
		// Individual insert failures must not block the rest of
		// the batch; duplicates are already no-ops in the store.
		if err := Ingest(ctx, p.store, keyword, record, p.now().UTC()); err != nil {
			failures++
			logger.Warn("ingest %q: %v", keyword, err)
		}
	}
	if failures > 0 {
		logger.Warn("ingest %q: %d of %d records failed", keyword, failures, len(records))
	}

	items, err := p.store.ItemsSince(ctx, watermark, keyword)
	if err != nil {
		return nil, fmt.Errorf("selecting new items for %q: %w", keyword, err)
	}

	logger.Debug("keyword %q: %d new item(s)", keyword, len(items))
	return items, nil
}
