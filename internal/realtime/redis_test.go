package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test"), mr
}

func TestRedisStoreContract(t *testing.T) {
	store, _ := newMiniRedisStore(t)
	runStoreContract(t, store)
}

func TestRedisStoreLayout(t *testing.T) {
	store, mr := newMiniRedisStore(t)
	ctx := context.Background()

	key, err := store.Push(ctx, "images", map[string]any{"title": "Sunset", "likes": 0})
	require.NoError(t, err)

	members, err := mr.SMembers("test:images")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, members)
	assert.Equal(t, `"Sunset"`, mr.HGet("test:images:doc:"+key, "title"))
	assert.Equal(t, "0", mr.HGet("test:images:doc:"+key, "likes"))
}

func TestRedisStoreSubscribeUnavailable(t *testing.T) {
	store, mr := newMiniRedisStore(t)
	mr.Close()

	_, err := store.Subscribe(context.Background(), "images", func(Snapshot) {}, func(error) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
