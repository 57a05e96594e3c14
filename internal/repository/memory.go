package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. It backs the memory driver and
// serves as the failover fallback.
type MemoryStore struct {
	values sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := s.values.Load(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), val.([]byte)...), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.values.Store(key, append([]byte(nil), value...))
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.values.Delete(key)
	return nil
}
