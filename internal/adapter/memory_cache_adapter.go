package adapter

import (
	"context"
	"time"

	"learn-persona/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCacheAdapter is an in-process domain.Cache used when Redis is not
// configured. Entries are evicted by size (LRU) and by per-entry expiration.
type MemoryCacheAdapter struct {
	lru        *expirable.LRU[string, memoryEntry]
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryCacheAdapter keeps at most size entries. No entry outlives maxTTL.
func NewMemoryCacheAdapter(size int, defaultTTL, maxTTL time.Duration) *MemoryCacheAdapter {
	if size <= 0 {
		size = 1024
	}
	if maxTTL < defaultTTL {
		maxTTL = defaultTTL
	}
	return &MemoryCacheAdapter{
		lru:        expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *MemoryCacheAdapter) Get(_ context.Context, key string) (string, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return "", domain.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.lru.Remove(key)
		return "", domain.ErrCacheMiss
	}
	return entry.value, nil
}

func (m *MemoryCacheAdapter) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = m.defaultTTL
	}
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}
	m.lru.Add(key, entry)
	return nil
}

func (m *MemoryCacheAdapter) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *MemoryCacheAdapter) Ping(context.Context) error {
	return nil
}

// Len is the number of cached entries, including ones not yet swept.
func (m *MemoryCacheAdapter) Len() int {
	return m.lru.Len()
}
