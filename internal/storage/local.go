package storage

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Local is an in-memory value mirrored to one storage key. It is read once
// when opened and written on every Set. Storage failures are logged and
// swallowed: the in-memory value stays the source of truth for the session.
type Local[T any] struct {
	base string
	key  string
	log  *zap.Logger
	now  func() time.Time

	mu       sync.RWMutex
	data     T
	lastSync time.Time
}

// Open loads key from base, falling back to initial when nothing usable is stored.
func Open[T any](base, key string, initial T, log *zap.Logger) *Local[T] {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Local[T]{base: base, key: key, log: log, now: time.Now, data: initial}

	env, ok, err := Load[T](base, key)
	switch {
	case err != nil:
		log.Error("error loading offline data", zap.String("key", key), zap.Error(err))
	case ok:
		l.data = env.Data
		l.lastSync = env.SavedAt()
	}
	return l
}

// Get returns the current value.
func (l *Local[T]) Get() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data
}

// LastSync returns when the value was last persisted; zero if never.
func (l *Local[T]) LastSync() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSync
}

// Set replaces the value and persists it. It reports whether the write reached disk.
func (l *Local[T]) Set(v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = v

	now := l.now()
	if err := Save(l.base, l.key, v, now); err != nil {
		l.log.Error("error saving offline data", zap.String("key", l.key), zap.Error(err))
		return false
	}
	l.lastSync = now
	return true
}
