package domain

// SearchRecord is one raw result returned by the upstream search API.
// Any field may be absent; absence is "not provided", never an error.
type SearchRecord struct {
	ASIN   string
	Title  string
	URL    string
	Kind   string
	Price  string
	Images map[ImageSize]string
	People map[Role][]string
}

// Image returns the URL for the given size and whether one was provided.
func (r SearchRecord) Image(size ImageSize) (string, bool) {
	url, ok := r.Images[size]
	return url, ok && url != ""
}

// Names returns the contributor names credited under the given role.
func (r SearchRecord) Names(role Role) []string {
	return r.People[role]
}

// Complete reports whether the record carries the minimum fields needed
// to store it. Upstream occasionally returns rows without an identifier
// or URL; those are skipped at ingest.
func (r SearchRecord) Complete() bool {
	return r.ASIN != "" && r.URL != ""
}
