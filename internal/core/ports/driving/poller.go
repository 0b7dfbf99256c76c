package driving

import (
	"context"

	"github.com/keywatch/keywatch/internal/core/domain"
)

// Poller runs one poll cycle: fetch upstream results for each keyword,
// merge them into the store, and report the items first observed during
// this run.
type Poller interface {
	// Poll captures a watermark, ingests the current search results
	// for every keyword, and returns the items whose first
	// observation falls at or after the watermark. Upstream failure
	// for a keyword skips that keyword; it is not an error.
	Poll(ctx context.Context, keywords []string) ([]domain.Item, error)
}
