// Package memory provides in-memory implementations of the driven
// storage ports, used by service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

type itemKey struct {
	keyword, asin, title, url, kind string
}

type imageKey struct {
	asin, url string
	size      domain.ImageSize
}

type personKey struct {
	asin, name string
	role       domain.Role
}

// ItemStore is an in-memory implementation of driven.ItemStore with the
// same idempotent-insert semantics as the SQLite store.
type ItemStore struct {
	mu      sync.RWMutex
	items   map[itemKey]domain.Item
	images  map[imageKey]struct{}
	persons map[personKey]struct{}
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items:   make(map[itemKey]domain.Item),
		images:  make(map[imageKey]struct{}),
		persons: make(map[personKey]struct{}),
	}
}

// UpsertItem inserts the item unless its uniqueness tuple exists.
func (s *ItemStore) UpsertItem(_ context.Context, item domain.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey{item.Keyword, item.ASIN, item.Title, item.URL, item.Kind}
	if _, ok := s.items[key]; ok {
		return false, nil
	}
	item.Images = nil
	item.People = nil
	s.items[key] = item
	return true, nil
}

// UpsertImage records a sized image for an ASIN, ignoring duplicates.
func (s *ItemStore) UpsertImage(
	_ context.Context, asin string, size domain.ImageSize, url string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := imageKey{asin, url, size}
	if _, ok := s.images[key]; ok {
		return false, nil
	}
	s.images[key] = struct{}{}
	return true, nil
}

// UpsertPerson records a contributor for an ASIN, ignoring duplicates.
func (s *ItemStore) UpsertPerson(
	_ context.Context, asin string, role domain.Role, name string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := personKey{asin, name, role}
	if _, ok := s.persons[key]; ok {
		return false, nil
	}
	s.persons[key] = struct{}{}
	return true, nil
}

// ItemsSince returns every item first seen at or after the watermark,
// hydrated, ordered by first-seen time.
func (s *ItemStore) ItemsSince(
	_ context.Context, watermark time.Time, keyword string,
) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.Item
	for _, item := range s.items {
		if item.FirstSeenAt.Before(watermark) {
			continue
		}
		if keyword != "" && item.Keyword != keyword {
			continue
		}
		item.Images = s.imagesByASIN(item.ASIN)
		item.People = s.peopleByASIN(item.ASIN)
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].FirstSeenAt.Before(items[j].FirstSeenAt)
	})
	return items, nil
}

// Close is a no-op for the in-memory store.
func (s *ItemStore) Close() error {
	return nil
}

func (s *ItemStore) imagesByASIN(asin string) map[domain.ImageSize]string {
	images := make(map[domain.ImageSize]string)
	for key := range s.images {
		if key.asin == asin {
			images[key.size] = key.url
		}
	}
	return images
}

func (s *ItemStore) peopleByASIN(asin string) map[domain.Role][]string {
	people := make(map[domain.Role][]string)
	for key := range s.persons {
		if key.asin == asin {
			people[key.role] = append(people[key.role], key.name)
		}
	}
	for role := range people {
		sort.Strings(people[role])
	}
	return people
}
