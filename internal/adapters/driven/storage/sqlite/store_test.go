package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywatch/keywatch/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "keywatch.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func testItem(keyword, asin string, firstSeen time.Time) domain.Item {
	return domain.Item{
		Keyword:     keyword,
		ASIN:        asin,
		Title:       "Widget",
		URL:         "http://x/" + asin,
		Kind:        "Books",
		Price:       "$9.99",
		FirstSeenAt: firstSeen,
	}
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "keywatch.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
}

func TestNewStore_SchemaFailureRemovesFreshFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keywatch.db")

	broken := fstest.MapFS{
		"001_initial.up.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE items (id INTEGER);\nCREATE BOGUS nonsense;\nCREATE ALSO broken;"),
		},
	}

	_, err := newStore(dbPath, broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaInit)
	// Both broken statements must appear in the diagnostic.
	assert.Contains(t, err.Error(), "CREATE BOGUS nonsense")
	assert.Contains(t, err.Error(), "CREATE ALSO broken")

	// The partially-created file must not survive.
	assert.NoFileExists(t, dbPath)
}

func TestNewStore_MigrationFailureKeepsExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keywatch.db")

	// First open initialises the schema normally.
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	broken := fstest.MapFS{
		"002_broken.up.sql": &fstest.MapFile{Data: []byte("CREATE BOGUS nonsense;")},
	}

	_, err = newStore(dbPath, broken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSchemaInit)

	// An existing database is never deleted.
	assert.FileExists(t, dbPath)
}

func TestNewStore_ReopenExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keywatch.db")
	ctx := context.Background()

	store, err := NewStore(dbPath)
	require.NoError(t, err)

	created, err := store.UpsertItem(ctx, testItem("widget", "B001", time.Now()))
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.ItemsSince(ctx, time.Time{}, "widget")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpsertItem_DuplicateIsNoOp(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	item := testItem("widget", "B001", time.Now())

	created, err := store.UpsertItem(ctx, item)
	require.NoError(t, err)
	assert.True(t, created)

	// Same uniqueness tuple, even with a later timestamp: ignored.
	item.FirstSeenAt = item.FirstSeenAt.Add(time.Hour)
	created, err = store.UpsertItem(ctx, item)
	require.NoError(t, err)
	assert.False(t, created)

	items, err := store.ItemsSince(ctx, time.Time{}, "widget")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestUpsertItem_ChangedTitleAccumulatesVariant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := testItem("widget", "B001", time.Now())
	_, err := store.UpsertItem(ctx, item)
	require.NoError(t, err)

	item.Title = "Widget (2nd Edition)"
	created, err := store.UpsertItem(ctx, item)
	require.NoError(t, err)
	assert.True(t, created)

	items, err := store.ItemsSince(ctx, time.Time{}, "widget")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestUpsertImageAndPerson_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.UpsertImage(ctx, "B001", domain.SizeLarge, "http://img/l.jpg")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.UpsertImage(ctx, "B001", domain.SizeLarge, "http://img/l.jpg")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = store.UpsertPerson(ctx, "B001", domain.RoleAuthor, "A. Author")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.UpsertPerson(ctx, "B001", domain.RoleAuthor, "A. Author")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestItemsSince_WatermarkInclusive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.UpsertItem(ctx, testItem("widget", "B001", t0))
	require.NoError(t, err)

	// Watermark exactly at the first-seen instant: included.
	items, err := store.ItemsSince(ctx, t0, "widget")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// Earlier watermark: included.
	items, err = store.ItemsSince(ctx, t0.Add(-time.Minute), "widget")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// Later watermark: excluded.
	items, err = store.ItemsSince(ctx, t0.Add(time.Second), "widget")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemsSince_KeywordIsolation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.UpsertItem(ctx, testItem("widget", "B001", t0))
	require.NoError(t, err)
	_, err = store.UpsertItem(ctx, testItem("gadget", "B001", t0))
	require.NoError(t, err)

	widget, err := store.ItemsSince(ctx, t0, "widget")
	require.NoError(t, err)
	require.Len(t, widget, 1)
	assert.Equal(t, "widget", widget[0].Keyword)

	gadget, err := store.ItemsSince(ctx, t0, "gadget")
	require.NoError(t, err)
	require.Len(t, gadget, 1)
	assert.Equal(t, "gadget", gadget[0].Keyword)

	// No keyword filter: both rows, exactly once each.
	all, err := store.ItemsSince(ctx, t0, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestItemsSince_HydratesImagesAndPeople(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.UpsertItem(ctx, testItem("widget", "B001", t0))
	require.NoError(t, err)
	_, err = store.UpsertImage(ctx, "B001", domain.SizeLarge, "http://img/l.jpg")
	require.NoError(t, err)
	_, err = store.UpsertImage(ctx, "B001", domain.SizeSmall, "http://img/s.jpg")
	require.NoError(t, err)
	_, err = store.UpsertPerson(ctx, "B001", domain.RoleAuthor, "A. Author")
	require.NoError(t, err)
	_, err = store.UpsertPerson(ctx, "B001", domain.RoleArtist, "B. Artist")
	require.NoError(t, err)

	items, err := store.ItemsSince(ctx, t0, "widget")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "http://img/l.jpg", item.Images[domain.SizeLarge])
	assert.Equal(t, "http://img/s.jpg", item.Images[domain.SizeSmall])
	assert.Equal(t, "http://img/l.jpg", item.LargeImage())
	assert.Equal(t, []string{"A. Author"}, item.People[domain.RoleAuthor])
	assert.Equal(t, []string{"B. Artist"}, item.People[domain.RoleArtist])
}

func TestItemsSince_ImagesSharedAcrossKeywords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.UpsertItem(ctx, testItem("widget", "B001", t0))
	require.NoError(t, err)
	_, err = store.UpsertItem(ctx, testItem("gadget", "B001", t0))
	require.NoError(t, err)
	_, err = store.UpsertImage(ctx, "B001", domain.SizeLarge, "http://img/l.jpg")
	require.NoError(t, err)

	// Images are keyed by ASIN, so both keyword-variants see them.
	for _, keyword := range []string{"widget", "gadget"} {
		items, err := store.ItemsSince(ctx, t0, keyword)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "http://img/l.jpg", items[0].LargeImage())
	}
}

func TestRemoveDatabase_CleansWALFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "keywatch.db")

	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0600))
	}

	removeDatabase(dbPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
