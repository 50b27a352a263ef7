package firebase

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func exerciseStore(t *testing.T, store RevocationStore, uid string) {
	t.Helper()
	ctx := context.Background()

	since, err := store.ValidSince(ctx, uid)
	if err != nil || !since.IsZero() {
		t.Fatalf("fresh uid: since=%v err=%v", since, err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Revoke(ctx, uid, at); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	since, err = store.ValidSince(ctx, uid)
	if err != nil || !since.Equal(at) {
		t.Fatalf("after revoke: since=%v err=%v", since, err)
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	exerciseStore(t, NewMemoryRevocationStore(), "uid-1")
}

// 需要本地 Redis：TEST_REDIS_ADDR=localhost:6379
func TestRedisRevocationStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	uid := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(context.Background(), revocationKeyPrefix+uid) })
	exerciseStore(t, NewRedisRevocationStore(client), uid)
}
