package optionstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	s := &RedisStore{store: mock, namespace: defaultRedisNamespace, site: DefaultSite}

	if _, err := s.Get(ctx, "datalayer_manager_license"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "datalayer_manager_license", []byte(`{"key":"K"}`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := s.Get(ctx, "datalayer_manager_license")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `{"key":"K"}` {
		t.Fatalf("unexpected value %s", got)
	}
	if mock.ttl["dlm:default:datalayer_manager_license"] != 0 {
		t.Fatalf("options must not expire")
	}

	if err := s.Delete(ctx, "datalayer_manager_license"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "datalayer_manager_license"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisStore_SiteScoping(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	a := &RedisStore{store: mock, namespace: defaultRedisNamespace, site: "site-a"}
	b := a.ForSite("site-b")

	if err := a.Set(ctx, "opt", []byte("a")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := b.Get(ctx, "opt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("site-b must not see site-a options, got %v", err)
	}
	if _, ok := mock.data["dlm:site-a:opt"]; !ok {
		t.Fatalf("expected key dlm:site-a:opt, have %v", mock.data)
	}
}

func TestRedisStore_WrapsErrors(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.err = errors.New("connection refused")
	s := &RedisStore{store: mock, namespace: defaultRedisNamespace, site: DefaultSite}

	if _, err := s.Get(ctx, "opt"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := s.Set(ctx, "opt", []byte("v")); err == nil {
		t.Fatal("expected set error")
	}
	if err := s.Delete(ctx, "opt"); err == nil {
		t.Fatal("expected delete error")
	}
}

func TestRedisStore_Key(t *testing.T) {
	s := &RedisStore{namespace: "dlm", site: "abc"}
	if got := s.Key("opt"); got != "dlm:abc:opt" {
		t.Fatalf("unexpected key %s", got)
	}
	s = &RedisStore{namespace: "", site: "abc"}
	if got := s.Key("opt"); got != "abc:opt" {
		t.Fatalf("empty namespace should be skipped, got %s", got)
	}
}

func TestNewRedisStore_Options(t *testing.T) {
	s := NewRedisStore(nil, WithNamespace("wp"), WithRedisSite(""))
	if s.namespace != "wp" {
		t.Fatalf("unexpected namespace %s", s.namespace)
	}
	if s.site != DefaultSite {
		t.Fatalf("empty site should fall back to default, got %s", s.site)
	}
}

type mockCmdable struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttl:  make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
