package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

const (
	keyBucketIndex = "%sbuckets"
	keyBucketSeq   = "%sbuckets:seq"
	keyBucketData  = "%sbucket:%s"
)

// Redis keeps buckets in a shared redis so several proxies can serve one
// cache. Bucket names live in a sorted set scored by creation sequence and
// each bucket is a hash of request key to JSON snapshot.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. Keys are namespaced by prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedis(client, prefix), nil
}

func (r *Redis) indexKey() string           { return fmt.Sprintf(keyBucketIndex, r.prefix) }
func (r *Redis) seqKey() string             { return fmt.Sprintf(keyBucketSeq, r.prefix) }
func (r *Redis) dataKey(name string) string { return fmt.Sprintf(keyBucketData, r.prefix, name) }

func (r *Redis) Open(ctx context.Context, name string) (Bucket, error) {
	ok, err := r.Has(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		seq, err := r.client.Incr(ctx, r.seqKey()).Result()
		if err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", name, err)
		}
		// NX keeps the original position if another proxy won the race.
		err = r.client.ZAddNX(ctx, r.indexKey(), redis.Z{Score: float64(seq), Member: name}).Err()
		if err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", name, err)
		}
	}
	return &redisBucket{client: r.client, name: name, key: r.dataKey(name)}, nil
}

func (r *Redis) Has(ctx context.Context, name string) (bool, error) {
	err := r.client.ZScore(ctx, r.indexKey(), name).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup bucket %q: %w", name, err)
	}
	return true, nil
}

func (r *Redis) Names(ctx context.Context) ([]string, error) {
	names, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return names, nil
}

func (r *Redis) Delete(ctx context.Context, name string) (bool, error) {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, r.indexKey(), name)
		pipe.Del(ctx, r.dataKey(name))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete bucket %q: %w", name, err)
	}
	return removed.Val() > 0, nil
}

func (r *Redis) Match(ctx context.Context, key string) (Snapshot, bool, error) {
	return matchAll(ctx, r, key)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type redisBucket struct {
	client *redis.Client
	name   string
	key    string
}

func (b *redisBucket) Name() string { return b.name }

func (b *redisBucket) Match(ctx context.Context, key string) (Snapshot, bool, error) {
	raw, err := b.client.HGet(ctx, b.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read %q from %q: %w", key, b.name, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode %q from %q: %w", key, b.name, err)
	}
	return snap, true, nil
}

func (b *redisBucket) Put(ctx context.Context, key string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := b.client.HSet(ctx, b.key, key, raw).Err(); err != nil {
		return fmt.Errorf("put %q in %q: %w", key, b.name, err)
	}
	return nil
}

func (b *redisBucket) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.client.HKeys(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list keys of %q: %w", b.name, err)
	}
	sort.Strings(keys)
	return keys, nil
}
