package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"mercator-hq/placement/pkg/layout"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	// URL is a redis:// connection URL.
	URL string

	// KeyPrefix namespaces the store's keys (default "placement:").
	KeyPrefix string

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore is a Store backed by Redis. Layout payloads live in a hash keyed
// by id; a sorted set scored by an insertion counter keeps storage order.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, NewStorageError(BackendRedis, "open", errors.New("redis URL cannot be empty"))
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, NewStorageError(BackendRedis, "open", fmt.Errorf("parse redis URL: %w", err))
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, NewStorageError(BackendRedis, "ping", err)
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix, logger), nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes the client.
func NewRedisStoreFromClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisStore {
	if prefix == "" {
		prefix = "placement:"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "layout.store.redis"),
	}
}

func (s *RedisStore) layoutsKey() string { return s.prefix + "layouts" }
func (s *RedisStore) orderKey() string { return s.prefix + "order" }
func (s *RedisStore) seqKey() string { return s.prefix + "seq" }

// ListLayouts implements Store. The order and the payloads are read in one
// MULTI so concurrent writes never tear the snapshot.
func (s *RedisStore) ListLayouts(ctx context.Context) ([]*layout.Layout, error) {
	var (
		order    *redis.StringSliceCmd
		payloads *redis.MapStringStringCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		order = pipe.ZRange(ctx, s.orderKey(), 0, -1)
		payloads = pipe.HGetAll(ctx, s.layoutsKey())
		return nil
	})
	if err != nil {
		return nil, NewStorageError(BackendRedis, "list", err)
	}
	return s.decodeSnapshot(order.Val(), payloads.Val()), nil
}

// decodeSnapshot decodes payloads in ids order. Undecodable payloads and
// ids without one are skipped.
func (s *RedisStore) decodeSnapshot(ids []string, payloads map[string]string) []*layout.Layout {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*layout.Layout, 0, len(ids))
	for _, id := range ids {
		raw, ok := payloads[id]
		if !ok {
			continue
		}
		l, err := layout.Decode([]byte(raw))
		if err != nil {
			s.logger.Warn("skipping undecodable layout", "layout_id", id, "error", err)
			continue
		}
		out = append(out, l)
	}
	return out
}

// ListLayoutsForSlot implements Reader.
func (s *RedisStore) ListLayoutsForSlot(ctx context.Context, slot layout.Slot) ([]*layout.Layout, error) {
	all, err := s.ListLayouts(ctx)
	if err != nil {
		return nil, err
	}
	return filterSlot(all, slot), nil
}

// GetLayout implements Reader.
func (s *RedisStore) GetLayout(ctx context.Context, id string) (*layout.Layout, error) {
	raw, err := s.client.HGet(ctx, s.layoutsKey(), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError(BackendRedis, "get", err)
	}

	l, err := layout.Decode([]byte(raw))
	if err != nil {
		return nil, NewStorageError(BackendRedis, "get", err)
	}
	return l, nil
}

// PutLayout implements Store.
func (s *RedisStore) PutLayout(ctx context.Context, l *layout.Layout) error {
	if err := checkWritable(l); err != nil {
		return err
	}

	payload, err := json.Marshal(l)
	if err != nil {
		return NewStorageError(BackendRedis, "put", err)
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return NewStorageError(BackendRedis, "put", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.layoutsKey(), l.ID, string(payload))
		// NX keeps the original position of replaced layouts.
		pipe.ZAddNX(ctx, s.orderKey(), redis.Z{Score: float64(seq), Member: l.ID})
		return nil
	})
	if err != nil {
		return NewStorageError(BackendRedis, "put", err)
	}
	return nil
}

// DeleteLayout implements Store.
func (s *RedisStore) DeleteLayout(ctx context.Context, id string) error {
	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.HDel(ctx, s.layoutsKey(), id)
		pipe.ZRem(ctx, s.orderKey(), id)
		return nil
	})
	if err != nil {
		return NewStorageError(BackendRedis, "delete", err)
	}
	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return NewStorageError(BackendRedis, "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
