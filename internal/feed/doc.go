// Package feed renders newly observed items as an RSS document and
// publishes it atomically. Publication writes a temporary file next to
// the destination and renames it into place, so readers of the feed
// file never observe a partial document and a failed run never damages
// the previously published feed.
package feed
