package domain

import "time"

// ImageSize identifies one of the fixed image sizes the upstream
// API exposes per product.
type ImageSize string

const (
	SizeSmall  ImageSize = "s"
	SizeMedium ImageSize = "m"
	SizeLarge  ImageSize = "l"
)

// ImageSizes returns all sizes in their canonical ingest order.
func ImageSizes() []ImageSize {
	return []ImageSize{SizeSmall, SizeMedium, SizeLarge}
}

// Role identifies a contributor role credited on a product.
type Role string

const (
	RoleAuthor  Role = "author"
	RoleArtist  Role = "artist"
	RoleCreator Role = "creator"
)

// Roles returns all contributor roles in their canonical ingest order.
func Roles() []Role {
	return []Role{RoleAuthor, RoleArtist, RoleCreator}
}

// Item is one product as observed under one search keyword.
//
// The tuple (Keyword, ASIN, Title, URL, Kind) is unique in the store.
// Re-ingesting an identical tuple is a no-op; the same ASIN with a
// changed title, URL or kind accumulates as an additional row. Rows are
// never mutated or deleted once written.
type Item struct {
	// Keyword is the search term that produced this item.
	Keyword string

	// ASIN is the upstream unique product identifier.
	ASIN string

	// Title is the product title. May be empty for incomplete
	// upstream records; such items are skipped at feed time.
	Title string

	// URL is the canonical product page URL.
	URL string

	// Kind is the search mode/category the item was found under.
	Kind string

	// Price is the display price as returned by the upstream API.
	// Empty means the API did not provide one.
	Price string

	// FirstSeenAt is the instant this row was first ingested.
	// Set once, never updated.
	FirstSeenAt time.Time

	// Images maps size to image URL. Keyed by ASIN in the store and
	// therefore shared across keyword-variants of the same product.
	Images map[ImageSize]string

	// People maps contributor role to the credited names.
	People map[Role][]string
}

// LargeImage returns the large image URL, or empty if none was seen.
func (i *Item) LargeImage() string {
	return i.Images[SizeLarge]
}
