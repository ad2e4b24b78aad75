package optionstore

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. Scopes created with
// ForSite share the same underlying map.
type MemoryStore struct {
	mu   *sync.RWMutex
	data map[string]map[string][]byte
	site string
}

// NewMemoryStore creates an empty in-memory store scoped to DefaultSite.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:   &sync.RWMutex{},
		data: make(map[string]map[string][]byte),
		site: DefaultSite,
	}
}

// ForSite returns a view of the same data scoped to site.
func (s *MemoryStore) ForSite(site string) *MemoryStore {
	return &MemoryStore{mu: s.mu, data: s.data, site: siteOrDefault(site)}
}

func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[s.site][name]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	options, ok := s.data[s.site]
	if !ok {
		options = make(map[string][]byte)
		s.data[s.site] = options
	}
	v := make([]byte, len(value))
	copy(v, value)
	options[name] = v
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[s.site], name)
	return nil
}

func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}
