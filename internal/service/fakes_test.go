package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"time"

	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

// memoryCache is a CacheRepository backed by a map of JSON payloads.
type memoryCache struct {
	mu       sync.Mutex
	store    map[string][]byte
	deleted  []string
	failGets bool
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets {
		return errors.New("redis down")
	}
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = map[string][]byte{}
	}
	m.store[key] = payload
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.store {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return err
		}
		if matched {
			delete(m.store, key)
		}
	}
	return nil
}

func (m *memoryCache) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.store))
	for key := range m.store {
		out = append(out, key)
	}
	return out
}

func newMemoryCacheService(repo *memoryCache) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}
