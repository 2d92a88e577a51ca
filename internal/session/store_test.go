package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

// storeContract runs the compare-and-set rules every Store must follow.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	s1 := New("s-1")
	require.NoError(t, store.Save(ctx, s1))
	assert.ErrorIs(t, store.Save(ctx, s1), ErrVersionConflict, "creating twice")

	s2, err := s1.BeginLookup(testSite())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s2))

	// a second writer that also started from s1
	s2b := s1.Back()
	assert.ErrorIs(t, store.Save(ctx, s2b), ErrVersionConflict)

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, s2.Version(), got.Version())
	assert.Equal(t, s2.PendingRequestID(), got.PendingRequestID())

	orphan := New("s-2").Back()
	assert.ErrorIs(t, store.Save(ctx, orphan), ErrNotFound)

	require.NoError(t, store.Delete(ctx, "s-1"))
	_, err = store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContract(t, NewMemoryStore(0))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("s-1")))

	time.Sleep(40 * time.Millisecond)

	_, err := store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Contract(t *testing.T) {
	client, _ := setupRedis(t)
	storeContract(t, NewRedisStore(client, time.Hour))
}

func TestRedisStore_TTL(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewRedisStore(client, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("s-1")))
	assert.Equal(t, 30*time.Minute, mr.TTL(DefaultKeyPrefix+"s-1"))

	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	client, mr := setupRedis(t)
	require.NoError(t, mr.Set(DefaultKeyPrefix+"s-1", "not-json"))

	_, err := NewRedisStore(client, time.Hour).Get(context.Background(), "s-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(DefaultKeyPrefix + "s-1").SetErr(errors.New("connection reset"))

	_, err := NewRedisStore(client, time.Hour).Get(context.Background(), "s-1")

	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(DefaultKeyPrefix + "s-1").RedisNil()

	_, err := NewRedisStore(client, time.Hour).Get(context.Background(), "s-1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectDel(DefaultKeyPrefix + "s-1").SetVal(1)

	assert.NoError(t, NewRedisStore(client, time.Hour).Delete(context.Background(), "s-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
