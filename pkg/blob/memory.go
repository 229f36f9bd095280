package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory store, safe for concurrent use
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemory constructs a memory store, optionally seeded with objects
func NewMemory(objects map[string][]byte) *Memory {
	m := &Memory{objects: make(map[string][]byte, len(objects))}
	for k, v := range objects {
		m.objects[k] = append([]byte{}, v...)
	}
	return m
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = append([]byte{}, data...)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte{}, data...), nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Keys returns every key in the store, sorted
func (m *Memory) Keys() []string {
	keys, _ := m.List(context.Background(), "")
	return keys
}
