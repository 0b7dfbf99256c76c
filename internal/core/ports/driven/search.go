package driven

import (
	"context"

	"github.com/keywatch/keywatch/internal/core/domain"
)

// SearchClient queries the upstream product-search API.
//
// The client's network behaviour, auth and rate limiting are its own
// concern; the core only sees keyword in, records out. Absent fields in
// a record mean "not provided" and are tolerated everywhere downstream.
type SearchClient interface {
	// Search returns the results for one keyword under the given
	// search mode. An empty slice with a nil error is a valid
	// outcome, not a failure.
	Search(ctx context.Context, keyword, mode string) ([]domain.SearchRecord, error)

	// SearchPageURL returns the canonical storefront results page
	// for the keyword, query-parameter encoded.
	SearchPageURL(keyword, mode string) string
}
