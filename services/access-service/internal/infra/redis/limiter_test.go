package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// fakeScripter answers EVALSHA like a server that already cached the script.
type fakeScripter struct {
	goredis.Scripter
	counts map[string]int64
	keys   []string
	args   []interface{}
	err    error
}

func (f *fakeScripter) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *goredis.Cmd {
	cmd := goredis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.keys, f.args = keys, args
	f.counts[keys[0]]++
	cmd.SetVal(f.counts[keys[0]])
	return cmd
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	fake := &fakeScripter{counts: map[string]int64{}}
	l := NewLimiter(fake, 2, 90*time.Second)

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "login:email:a@example.com")
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if ok != want {
			t.Errorf("attempt %d: allowed=%v, want %v", i+1, ok, want)
		}
	}
	if len(fake.keys) != 1 || fake.keys[0] != "rl:login:email:a@example.com" {
		t.Errorf("unexpected keys %v", fake.keys)
	}
	if len(fake.args) != 1 || fake.args[0] != int64(90000) {
		t.Errorf("expected window of 90000ms, got %v", fake.args)
	}

	// Other keys keep their own window.
	if ok, _ := l.Allow(ctx, "login:ip:10.0.0.1"); !ok {
		t.Error("separate key should not be limited")
	}
}

func TestLimiter_FailsOpen(t *testing.T) {
	l := NewLimiter(&fakeScripter{err: errors.New("connection refused")}, 1, time.Minute)
	ok, err := l.Allow(context.Background(), "login:email:a@example.com")
	if err == nil || !ok {
		t.Fatalf("expected allowed with error, got ok=%v err=%v", ok, err)
	}
}

// Runs against a real server when REDIS_TEST_URL is set (e.g. in CI with a redis service).
func TestLimiter_Integration(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()
	client, err := NewClient(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	l := NewLimiter(client, 2, time.Minute)
	key := "test:" + uuid.NewString()
	defer client.Del(ctx, "rl:"+key)

	for i := 0; i < 2; i++ {
		if ok, err := l.Allow(ctx, key); err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, key); ok {
		t.Fatal("3rd attempt should be limited")
	}
	ttl, err := client.TTL(ctx, "rl:"+key).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected ttl %v (err %v)", ttl, err)
	}

	// A counter that lost its TTL gets one back on the next attempt.
	if err := client.Persist(ctx, "rl:"+key).Err(); err != nil {
		t.Fatalf("persist: %v", err)
	}
	_, _ = l.Allow(ctx, key)
	if ttl, _ := client.TTL(ctx, "rl:"+key).Result(); ttl <= 0 {
		t.Errorf("expected ttl to be restored, got %v", ttl)
	}
}

func TestNewClient_BadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "not a url"); err == nil {
		t.Fatal("expected parse error")
	}
}
