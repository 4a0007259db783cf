package cart

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]map[uint]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]map[uint]int)}
}

func (s *MemoryStore) Incr(_ context.Context, sessionID string, productID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.carts[sessionID]
	if !ok {
		items = make(map[uint]int)
		s.carts[sessionID] = items
	}
	items[productID]++
	return items[productID], nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string, productID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.carts[sessionID]
	if !ok {
		return false, nil
	}
	if _, ok := items[productID]; !ok {
		return false, nil
	}
	delete(items, productID)
	if len(items) == 0 {
		delete(s.carts, sessionID)
	}
	return true, nil
}

func (s *MemoryStore) All(_ context.Context, sessionID string) (map[uint]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uint]int, len(s.carts[sessionID]))
	for id, q := range s.carts[sessionID] {
		out[id] = q
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
