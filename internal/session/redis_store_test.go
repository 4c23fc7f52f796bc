package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestCreateIfAbsent(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	info := Info{Token: "aabbccdd", CreatedAt: 1000}

	ok, err := store.CreateIfAbsent(ctx, "1234", info, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same code again must lose, whatever the value.
	ok, err = store.CreateIfAbsent(ctx, "1234", Info{Token: "other", CreatedAt: 2000}, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl := mr.TTL("session:1234")
	assert.Equal(t, time.Hour, ttl)
}

func TestCreateIfAbsentRejectsBadInput(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.CreateIfAbsent(ctx, "", Info{Token: "t"}, time.Hour)
	assert.Error(t, err)

	_, err = store.CreateIfAbsent(ctx, "1234", Info{}, time.Hour)
	assert.Error(t, err)

	_, err = store.CreateIfAbsent(ctx, "1234", Info{Token: "t"}, 0)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	got, err := store.Get(ctx, "0000")
	require.NoError(t, err)
	assert.Nil(t, got)

	info := Info{Token: "aabbccdd", CreatedAt: 1234}
	ok, err := store.CreateIfAbsent(ctx, "5678", info, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = store.Get(ctx, "5678")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, info, *got)
}

func TestSessionExpires(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := store.CreateIfAbsent(ctx, "1234", Info{Token: "t", CreatedAt: 1}, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "1234")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRenewRefreshesTTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	info := Info{Token: "aabbccdd", CreatedAt: 1234}
	ok, err := store.CreateIfAbsent(ctx, "1234", info, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(30 * time.Minute)

	require.NoError(t, store.Renew(ctx, "1234", info, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("session:1234"))

	got, err := store.Get(ctx, "1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, info, *got)
}

func TestRenewConflictOnChangedValue(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	info := Info{Token: "aabbccdd", CreatedAt: 1234}
	ok, err := store.CreateIfAbsent(ctx, "1234", info, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate the code being reclaimed and reused by another session
	// between the authenticating read and the renewal write.
	require.NoError(t, mr.Set("session:1234", `{"token":"eeff0011","createdAt":9999}`))

	err = store.Renew(ctx, "1234", info, time.Hour)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRenewConflictOnDeletedSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	info := Info{Token: "aabbccdd", CreatedAt: 1234}
	ok, err := store.CreateIfAbsent(ctx, "1234", info, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	mr.Del("session:1234")

	err = store.Renew(ctx, "1234", info, time.Hour)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteIfUnchanged(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	info := Info{Token: "aabbccdd", CreatedAt: 1234}
	ok, err := store.CreateIfAbsent(ctx, "1234", info, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.DeleteIfUnchanged(ctx, "1234", info))
	assert.False(t, mr.Exists("session:1234"))

	// Deleting a code now owned by a different session must not succeed.
	other := Info{Token: "eeff0011", CreatedAt: 9999}
	ok, err = store.CreateIfAbsent(ctx, "1234", other, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	err = store.DeleteIfUnchanged(ctx, "1234", info)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, mr.Exists("session:1234"))
}

func TestStateRoundtrip(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	got, err := store.GetState(ctx, "sometoken")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := PresentationState{TotalPages: 5, CurrentPage: 2, UpdateTime: 12345}
	require.NoError(t, store.SetState(ctx, "sometoken", state))

	got, err = store.GetState(ctx, "sometoken")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state, *got)

	// Last writer wins, no optimistic check.
	newer := PresentationState{TotalPages: 5, CurrentPage: 3, UpdateTime: 12346}
	require.NoError(t, store.SetState(ctx, "sometoken", newer))

	got, err = store.GetState(ctx, "sometoken")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer, *got)
}
