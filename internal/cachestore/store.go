// Package cachestore holds named buckets of response snapshots for the
// offline cache controller.
package cachestore

import (
	"context"
	"net/http"
	"time"
)

// Snapshot is a stored copy of a response.
type Snapshot struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`
}

// Clone returns a deep copy so callers never share header maps or bodies.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Header = s.Header.Clone()
	if s.Body != nil {
		out.Body = append([]byte(nil), s.Body...)
	}
	return out
}

// Bucket maps request keys to snapshots. Writes to one key are atomic.
type Bucket interface {
	Name() string
	Match(ctx context.Context, key string) (Snapshot, bool, error)
	Put(ctx context.Context, key string, snap Snapshot) error
	Keys(ctx context.Context) ([]string, error)
}

// Storage is the set of named buckets, enumerated in creation order.
type Storage interface {
	// Open returns the named bucket, creating it if needed.
	Open(ctx context.Context, name string) (Bucket, error)
	Has(ctx context.Context, name string) (bool, error)
	Names(ctx context.Context) ([]string, error)
	// Delete removes a bucket and everything in it. It reports whether the bucket existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Match searches every bucket in creation order.
	Match(ctx context.Context, key string) (Snapshot, bool, error)
	Close() error
}

// matchAll implements Storage.Match on top of Names and Open.
func matchAll(ctx context.Context, s Storage, key string) (Snapshot, bool, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	for _, name := range names {
		b, err := s.Open(ctx, name)
		if err != nil {
			return Snapshot{}, false, err
		}
		snap, ok, err := b.Match(ctx, key)
		if err != nil {
			return Snapshot{}, false, err
		}
		if ok {
			return snap, true, nil
		}
	}
	return Snapshot{}, false, nil
}
