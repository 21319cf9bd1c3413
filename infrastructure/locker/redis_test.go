package locker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"matchbox.io/application/utils"
)

// redisLocker connects to REDIS_ADDR and skips the test when it is unset.
func redisLocker(t *testing.T) (*RedisLocker, string) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	key := "test-" + utils.GenerateUULDString()
	t.Cleanup(func() {
		client.Del(context.Background(), lockKeyPrefix+key)
		client.Close()
	})
	l := NewRedisLocker(client)
	l.Retry = 5 * time.Millisecond
	return l, key
}

func TestRedisLockerWithoutClient(t *testing.T) {
	if _, err := (&RedisLocker{}).Lock(context.Background(), "42"); err == nil {
		t.Fatal("expected an error without a client")
	}
}

func TestRedisLockerReportsUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	unlock, err := NewRedisLocker(client).Lock(ctx, "42")
	if err == nil || unlock != nil {
		t.Fatalf("expected a connection error, got unlock=%v err=%v", unlock != nil, err)
	}
}

func TestRedisLockerSerializesSameKey(t *testing.T) {
	l, key := redisLocker(t)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
		failed  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), key)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if failed > 0 {
		t.Fatalf("%d lock attempts failed", failed)
	}
	if maxSeen != 1 {
		t.Errorf("expected exclusive access, saw %d concurrent holders", maxSeen)
	}
}

func TestRedisLockerHonoursContext(t *testing.T) {
	l, key := redisLocker(t)
	unlock, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, key); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded while the lock is held, got %v", err)
	}
}

func TestRedisLockerReleasesOnlyItsOwnToken(t *testing.T) {
	l, key := redisLocker(t)
	unlock, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	// the ttl expired and another process took over
	if err := l.Client.Set(context.Background(), lockKeyPrefix+key, "someone-else", time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	unlock()

	holder, err := l.Client.Get(context.Background(), lockKeyPrefix+key).Result()
	if err != nil || holder != "someone-else" {
		t.Errorf("foreign lock must survive, got %q, %v", holder, err)
	}
}
