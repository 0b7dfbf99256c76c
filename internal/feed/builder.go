package feed

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/keywatch/keywatch/internal/core/domain"
)

// enclosureType is the MIME type reported for image enclosures.
// Upstream product images are JPEGs.
const enclosureType = "image/jpeg"

// Meta carries the channel-level inputs for one feed.
type Meta struct {
	// Keywords are the search terms this feed aggregates.
	Keywords []string

	// PageLink is the canonical search-results page for the run's
	// first keyword, already query-parameter encoded.
	PageLink string

	// AffiliateTag, when non-empty, is appended to every product
	// link as a "tag" query parameter.
	AffiliateTag string

	// GeneratedAt is the run's watermark.
	GeneratedAt time.Time
}

// Build constructs the RSS channel for a set of newly observed items.
// Items without a title are skipped; upstream occasionally returns
// incomplete records and they make useless entries.
func Build(meta Meta, items []domain.Item) *feeds.Feed {
	f := &feeds.Feed{
		Title:       fmt.Sprintf("keywatch: %q", strings.Join(meta.Keywords, ", ")),
		Link:        &feeds.Link{Href: meta.PageLink},
		Description: fmt.Sprintf("Newly observed search results for %s", strings.Join(meta.Keywords, ", ")),
		Created:     meta.GeneratedAt,
	}

	for i := range items {
		if entry := buildEntry(&items[i], meta.AffiliateTag); entry != nil {
			f.Items = append(f.Items, entry)
		}
	}

	return f
}

// buildEntry renders one item, or nil if the item has no title.
func buildEntry(item *domain.Item, affiliateTag string) *feeds.Item {
	if item.Title == "" {
		return nil
	}

	link := taggedLink(item.URL, affiliateTag)

	entry := &feeds.Item{
		// The keyword disambiguates entries when the feed
		// aggregates multiple keywords.
		Title:       fmt.Sprintf("%s (%s)", item.Title, item.Keyword),
		Link:        &feeds.Link{Href: link},
		Id:          link,
		Created:     item.FirstSeenAt,
		Description: describe(item, link),
	}

	if img := item.LargeImage(); img != "" {
		entry.Enclosure = &feeds.Enclosure{
			Url:    img,
			Type:   enclosureType,
			Length: "0",
		}
	}

	return entry
}

// describe renders the entry's HTML description fragment: the large
// image (if any) wrapped in the product link, a titled hyperlink, the
// raw URL, the keyword, and the discovery time.
func describe(item *domain.Item, link string) string {
	var b strings.Builder

	href := html.EscapeString(link)
	if img := item.LargeImage(); img != "" {
		fmt.Fprintf(&b, `<a href="%s"><img src="%s" /></a><br />`,
			href, html.EscapeString(img))
	}
	fmt.Fprintf(&b, `<a href="%s">%s</a><br />`, href, html.EscapeString(item.Title))
	fmt.Fprintf(&b, `%s<br />`, html.EscapeString(item.URL))
	fmt.Fprintf(&b, `keyword: %s<br />`, html.EscapeString(item.Keyword))
	fmt.Fprintf(&b, `found: %s`, item.FirstSeenAt.Format(time.RFC1123Z))

	return b.String()
}

// taggedLink appends the affiliate tag as a query parameter. The URL is
// parsed, not string-concatenated, so existing query strings and
// special characters survive. An unparseable URL is passed through
// unchanged rather than dropped.
func taggedLink(raw, affiliateTag string) string {
	if affiliateTag == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	q.Set("tag", affiliateTag)
	u.RawQuery = q.Encode()
	return u.String()
}
