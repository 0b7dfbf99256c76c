package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/keywatch/keywatch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ItemStore = (*Store)(nil)

// Store is the SQLite-backed item store. Every item, image and
// contributor ever observed accumulates here; rows are never updated or
// deleted, and duplicate inserts are silently ignored.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if absent) the item database at path.
// If path is empty, defaults to ~/.keywatch/keywatch.db.
//
// A brand-new database has its whole schema created in one setup pass.
// If any statement fails, the partially-created file is removed and the
// open fails with domain.ErrSchemaInit wrapping every failed statement;
// the caller must not proceed. An existing database is never deleted on
// migration failure.
func NewStore(path string) (*Store, error) {
	return newStore(path, migrations.FS)
}

// newStore is NewStore with an injectable migration filesystem.
func newStore(path string, fsys fs.FS) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".keywatch", "keywatch.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(fsys); err != nil {
		db.Close()
		if fresh {
			// A half-built store must not be left behind.
			removeDatabase(path)
			return nil, fmt.Errorf("%w: %w", domain.ErrSchemaInit, err)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations. Each statement of a migration is
// executed individually so that every failure can be reported, not just
// the first.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.execStatements(name, string(content)); err != nil {
			return err
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// execStatements runs every statement in a migration, collecting all
// failures so the diagnostic lists each broken statement.
func (s *Store) execStatements(name, content string) error {
	var errs []error
	for _, stmt := range splitStatements(content) {
		if _, err := s.db.Exec(stmt); err != nil {
			errs = append(errs, fmt.Errorf("migration %s: %q: %w", name, stmt, err))
		}
	}
	return errors.Join(errs...)
}

// splitStatements splits migration SQL on statement boundaries.
// Schema files contain plain DDL only, so a semicolon split suffices.
func splitStatements(content string) []string {
	parts := strings.Split(content, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			stmts = append(stmts, p)
		}
	}
	return stmts
}

// removeDatabase deletes the database file and its WAL side files.
func removeDatabase(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		os.Remove(p)
	}
}

// UpsertItem inserts the item unless its uniqueness tuple already
// exists. The duplicate case is a silent no-op, not an error.
func (s *Store) UpsertItem(ctx context.Context, item domain.Item) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (keyword, asin, title, url, kind, price, first_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (keyword, asin, title, url, kind) DO NOTHING
	`, item.Keyword, item.ASIN, item.Title, item.URL, item.Kind, item.Price,
		item.FirstSeenAt.UTC())
	if err != nil {
		return false, fmt.Errorf("inserting item: %w", err)
	}

	return inserted(res)
}

// UpsertImage records a sized image for an ASIN, ignoring duplicates.
func (s *Store) UpsertImage(
	ctx context.Context, asin string, size domain.ImageSize, url string,
) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO images (asin, url, size)
		VALUES (?, ?, ?)
		ON CONFLICT (asin, url, size) DO NOTHING
	`, asin, url, string(size))
	if err != nil {
		return false, fmt.Errorf("inserting image: %w", err)
	}

	return inserted(res)
}

// UpsertPerson records a credited contributor for an ASIN, ignoring
// duplicates.
func (s *Store) UpsertPerson(
	ctx context.Context, asin string, role domain.Role, name string,
) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (asin, name, role)
		VALUES (?, ?, ?)
		ON CONFLICT (asin, name, role) DO NOTHING
	`, asin, name, string(role))
	if err != nil {
		return false, fmt.Errorf("inserting person: %w", err)
	}

	return inserted(res)
}

// ItemsSince returns every item first seen at or after the watermark,
// hydrated with its images and people. The comparison is inclusive so
// an item ingested at the exact watermark instant is never dropped.
func (s *Store) ItemsSince(
	ctx context.Context, watermark time.Time, keyword string,
) ([]domain.Item, error) {
	query := `
		SELECT keyword, asin, title, url, kind, price, first_seen_at
		FROM items
		WHERE first_seen_at >= ?
	`
	args := []any{watermark.UTC()}
	if keyword != "" {
		query += " AND keyword = ?"
		args = append(args, keyword)
	}
	query += " ORDER BY first_seen_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.Item
		var firstSeen sql.NullTime
		if err := rows.Scan(&item.Keyword, &item.ASIN, &item.Title, &item.URL,
			&item.Kind, &item.Price, &firstSeen); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if firstSeen.Valid {
			item.FirstSeenAt = firstSeen.Time
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	for i := range items {
		if err := s.hydrate(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// hydrate attaches the images and people recorded for the item's ASIN.
func (s *Store) hydrate(ctx context.Context, item *domain.Item) error {
	images, err := s.imagesByASIN(ctx, item.ASIN)
	if err != nil {
		return err
	}
	item.Images = images

	people, err := s.peopleByASIN(ctx, item.ASIN)
	if err != nil {
		return err
	}
	item.People = people

	return nil
}

// imagesByASIN returns the image URLs recorded for an ASIN, by size.
func (s *Store) imagesByASIN(ctx context.Context, asin string) (map[domain.ImageSize]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT size, url FROM images WHERE asin = ?", asin)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	images := make(map[domain.ImageSize]string)
	for rows.Next() {
		var size, url string
		if err := rows.Scan(&size, &url); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		images[domain.ImageSize(size)] = url
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}

	return images, nil
}

// peopleByASIN returns the contributor names recorded for an ASIN, by role.
func (s *Store) peopleByASIN(ctx context.Context, asin string) (map[domain.Role][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, name FROM persons WHERE asin = ? ORDER BY name", asin)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	people := make(map[domain.Role][]string)
	for rows.Next() {
		var role, name string
		if err := rows.Scan(&role, &name); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people[domain.Role(role)] = append(people[domain.Role(role)], name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating persons: %w", err)
	}

	return people, nil
}

// inserted reports whether an insert-or-ignore created a row.
func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
