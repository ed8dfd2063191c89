package cron

import (
	"context"
	"testing"
	"time"
)

type fakeLockStore struct {
	owners map[string]string
	ttl    time.Duration
}

func (f *fakeLockStore) AcquireLock(_ context.Context, name, token string, ttl time.Duration) (bool, error) {
	if _, held := f.owners[name]; held {
		return false, nil
	}
	f.owners[name] = token
	f.ttl = ttl
	return true, nil
}

func (f *fakeLockStore) ReleaseLock(_ context.Context, name, token string) error {
	if f.owners[name] == token {
		delete(f.owners, name)
	}
	return nil
}

func TestRedisLockExcludesSecondWorker(t *testing.T) {
	store := &fakeLockStore{owners: map[string]string{}}
	first, err := NewRedisLock(store, "cron:test", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "cron:test", time.Minute)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire ok=%v err=%v", ok, err)
	}
	if store.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", store.ttl)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second worker must not acquire a held lock")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release without ownership: %v", err)
	}
	if _, held := store.owners["cron:test"]; !held {
		t.Fatal("non-owner release dropped the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected acquire after release")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "x", 0); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := NewRedisLock(&fakeLockStore{}, "", 0); err == nil {
		t.Fatal("expected name error")
	}
}

func TestLocalLock(t *testing.T) {
	lock := &LocalLock{}
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	if ok, _ := lock.Acquire(ctx); ok {
		t.Fatal("expected second acquire to fail while held")
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire after release")
	}
}
