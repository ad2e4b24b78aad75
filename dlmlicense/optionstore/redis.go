package optionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisNamespace = "dlm"

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithNamespace sets the key prefix. Default: "dlm".
func WithNamespace(ns string) RedisOption {
	return func(s *RedisStore) {
		s.namespace = ns
	}
}

// WithRedisSite sets the site scope. Default: DefaultSite.
func WithRedisSite(site string) RedisOption {
	return func(s *RedisStore) {
		s.site = siteOrDefault(site)
	}
}

// RedisStore implements Store using Redis string keys of the form
// <namespace>:<site>:<name>. Values never expire.
type RedisStore struct {
	store     cmdable
	namespace string
	site      string
}

// NewRedisStore creates a new Redis-backed option store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		store:     client,
		namespace: defaultRedisNamespace,
		site:      DefaultSite,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForSite returns a store sharing the connection, scoped to site.
func (s *RedisStore) ForSite(site string) *RedisStore {
	return &RedisStore{store: s.store, namespace: s.namespace, site: siteOrDefault(site)}
}

// Key returns the namespaced redis key for an option name.
func (s *RedisStore) Key(name string) string {
	parts := []string{}
	for _, p := range []string{s.namespace, s.site, name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	v, err := s.store.Get(ctx, s.Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get option %s: %w", name, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, name string, value []byte) error {
	if err := s.store.Set(ctx, s.Key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("set option %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := s.store.Del(ctx, s.Key(name)).Err(); err != nil {
		return fmt.Errorf("delete option %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Close(_ context.Context) error {
	return nil // caller manages the redis client lifecycle
}
