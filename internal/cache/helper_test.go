package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMiniredis points the package client at a miniredis instance for the
// duration of one test.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	prev := GetClient()
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(prev) })
	return mr
}

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetAndGetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "thing:1", cachedThing{Name: "a", Count: 2}, time.Minute))

	var got cachedThing
	found, err := GetJSON(ctx, "thing:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedThing{Name: "a", Count: 2}, got)
}

func TestGetJSONMiss(t *testing.T) {
	withMiniredis(t)

	var got cachedThing
	found, err := GetJSON(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSONNilClient(t *testing.T) {
	prev := GetClient()
	SetClient(nil)
	t.Cleanup(func() { SetClient(prev) })

	var got cachedThing
	found, err := GetJSON(context.Background(), "anything", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(context.Background(), "anything", got, time.Minute))
}

func TestAsideFetchesOnMissThenServesFromCache(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			*dest = cachedThing{Name: "fresh", Count: fetches}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "aside:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "fresh", first.Name)

	var second cachedThing
	require.NoError(t, Aside(ctx, "aside:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read must be served from cache")
	assert.Equal(t, first, second)
}

func TestAsideExpiry(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var got cachedThing
	fetch := func() error {
		fetches++
		got = cachedThing{Name: "v", Count: fetches}
		return nil
	}

	require.NoError(t, Aside(ctx, "aside:ttl", &got, time.Second, fetch))
	mr.FastForward(2 * time.Second)
	require.NoError(t, Aside(ctx, "aside:ttl", &got, time.Second, fetch))
	assert.Equal(t, 2, fetches)
}

func TestInvalidate(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(1), cachedThing{Name: "u"}, time.Minute))
	require.NoError(t, SetJSON(ctx, PostsListKey(), cachedThing{Name: "l"}, time.Minute))
	require.NoError(t, SetJSON(ctx, UserPostsKey(1), cachedThing{Name: "p"}, time.Minute))
	require.NoError(t, SetJSON(ctx, PostCommentsKey(9), cachedThing{Name: "c"}, time.Minute))

	InvalidatePost(ctx, 9, 1)

	var got cachedThing
	for _, key := range []string{PostsListKey(), UserPostsKey(1), PostCommentsKey(9)} {
		found, err := GetJSON(ctx, key, &got)
		require.NoError(t, err)
		assert.False(t, found, "key %s should be gone", key)
	}

	// The user profile itself is untouched by post invalidation.
	found, err := GetJSON(ctx, UserKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKeyInventory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "user:7:posts", UserPostsKey(7))
	assert.Equal(t, "user:7:comments", UserCommentsKey(7))
	assert.Equal(t, "post:3:comments", PostCommentsKey(3))
	assert.Equal(t, "posts:recent", PostsListKey())
}
