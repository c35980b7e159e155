package db

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(RedisOpts{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	if got := rdb.Options().DialTimeout; got != 2*time.Second {
		t.Errorf("dial timeout: got %v, want 2s", got)
	}
}

func TestNewRedisClient_NoAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisClient(RedisOpts{}); !errors.Is(err, ErrNoAddr) {
		t.Errorf("got %v, want ErrNoAddr", err)
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(RedisOpts{Addr: addr, DialTimeout: 200 * time.Millisecond}); err == nil {
		t.Fatal("expected ping error")
	}
}
