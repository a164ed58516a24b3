package catalog

import (
	"context"
	"slices"
	"sync"
)

// MemStore keeps products in insertion order.
type MemStore struct {
	mu    sync.RWMutex
	items []Product
}

func NewMemStore(seed []Product) *MemStore {
	return &MemStore{items: slices.Clone(seed)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context, f Filter) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.items))
	for _, p := range s.items {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	return s.items[i], nil
}

func (s *MemStore) Create(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return ErrDuplicateID
	}
	s.items = append(s.items, p)
	return nil
}

func (s *MemStore) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	s.items[i] = in.ApplyTo(s.items[i])
	return s.items[i], nil
}

func (s *MemStore) Delete(ctx context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	p := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return p, nil
}

func (s *MemStore) CountByCategory(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range s.items {
		counts[p.Category]++
	}
	return counts, nil
}

// indexOf must be called with s.mu held.
func (s *MemStore) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(p Product) bool { return p.ID == id })
}
