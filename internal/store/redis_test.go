package store

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestRedisClearRequiresPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	kv := NewRedisKV(client, "")
	if _, err := kv.Clear(context.Background()); err == nil {
		t.Fatal("expected an error without a prefix")
	}
}

func TestRedisKeyIsPrefixed(t *testing.T) {
	kv := NewRedisKV(nil, "kmatcher:")
	if got := kv.key("7-grade"); got != "kmatcher:7-grade" {
		t.Errorf("key = %q", got)
	}
}
