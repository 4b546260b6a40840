package memory

import (
	"context"
	"sync"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// ItemStore is an in-memory implementation of storage.ItemStore.
type ItemStore struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]int64
	byID   map[int64]string
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		nextID: 1,
		byName: make(map[string]int64),
		byID:   make(map[int64]string),
	}
}

// Compile-time interface check.
var _ storage.ItemStore = (*ItemStore)(nil)

// InsertIfAbsent registers any names not yet present and returns the
// number of newly created items. Existing items keep their IDs.
func (s *ItemStore) InsertIfAbsent(_ context.Context, names []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, name := range names {
		if name == "" {
			return created, storage.ErrInvalidInput
		}
		if _, exists := s.byName[name]; exists {
			continue
		}
		id := s.nextID
		s.nextID++
		s.byName[name] = id
		s.byID[id] = name
		created++
	}
	return created, nil
}

// GetAll retrieves all items ordered by ID ASC.
func (s *ItemStore) GetAll(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Item, 0, len(s.byID))
	for id := int64(1); id < s.nextID; id++ {
		if name, ok := s.byID[id]; ok {
			items = append(items, domain.Item{ID: id, Name: name})
		}
	}
	return items, nil
}

// GetByID retrieves an item by ID. Returns ErrNotFound if not exists.
func (s *ItemStore) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &domain.Item{ID: id, Name: name}, nil
}

// IDsByName returns the canonical-name-to-ID mapping for all items.
func (s *ItemStore) IDsByName(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]int64, len(s.byName))
	for name, id := range s.byName {
		ids[name] = id
	}
	return ids, nil
}
