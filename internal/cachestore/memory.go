package cachestore

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Storage. Buckets vanish with the process.
type Memory struct {
	mu      sync.RWMutex
	order   []string
	buckets map[string]*memoryBucket
}

// NewMemory returns an empty in-memory Storage.
func NewMemory() *Memory {
	return &Memory{buckets: map[string]*memoryBucket{}}
}

func (m *Memory) Open(_ context.Context, name string) (Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[name]
	if !ok {
		b = &memoryBucket{name: name, entries: map[string]Snapshot{}}
		m.buckets[name] = b
		m.order = append(m.order, name)
	}
	return b, nil
}

func (m *Memory) Has(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buckets[name]
	return ok, nil
}

func (m *Memory) Names(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...), nil
}

func (m *Memory) Delete(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[name]; !ok {
		return false, nil
	}
	delete(m.buckets, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *Memory) Match(ctx context.Context, key string) (Snapshot, bool, error) {
	return matchAll(ctx, m, key)
}

func (m *Memory) Close() error { return nil }

type memoryBucket struct {
	name    string
	mu      sync.RWMutex
	entries map[string]Snapshot
}

func (b *memoryBucket) Name() string { return b.name }

func (b *memoryBucket) Match(_ context.Context, key string) (Snapshot, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap, ok := b.entries[key]
	if !ok {
		return Snapshot{}, false, nil
	}
	return snap.Clone(), true, nil
}

func (b *memoryBucket) Put(_ context.Context, key string, snap Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = snap.Clone()
	return nil
}

func (b *memoryBucket) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
