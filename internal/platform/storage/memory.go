package storage

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	items map[string][]byte
	mutex sync.RWMutex
}

// NewMemory builds an in-memory blob store. Data lives for the lifetime of
// the process only.
func NewMemory() Store {
	return &memoryStore{
		items: make(map[string][]byte),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	value, ok := s.items[key]
	s.mutex.RUnlock()
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mutex.Lock()
	s.items[key] = stored
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	delete(s.items, key)
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Keys(_ context.Context) ([]string, error) {
	s.mutex.RLock()
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	s.mutex.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryStore) Close(_ context.Context) error {
	s.mutex.Lock()
	s.items = make(map[string][]byte)
	s.mutex.Unlock()
	return nil
}
