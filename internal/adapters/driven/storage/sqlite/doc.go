// Package sqlite provides the durable item store backed by SQLite.
//
// The store is append-only: items, images and contributors accumulate
// under uniqueness constraints and duplicate inserts are silent no-ops.
// Novelty detection queries the first-seen timestamp recorded at ingest.
// Schema is created on first use from embedded migrations; a failed
// first-use creation removes the partial file so a broken store is
// never left behind.
package sqlite
