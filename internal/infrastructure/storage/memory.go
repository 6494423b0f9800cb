package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Memory is a process-local Storage backed by go-cache with no expiration.
// go-cache locks internally, so Memory is safe for concurrent use.
type Memory struct {
	c *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	return m.c.ItemCount()
}
