// ABOUTME: Tests for the KV-backed store with badger and redis drivers
// ABOUTME: Runs the shared store contract against each driver
package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/harperreed/quotedesk/store"
	"github.com/harperreed/quotedesk/store/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (store.Store, storetest.Corrupter) {
		kv, err := store.OpenBadger(t.TempDir())
		require.NoError(t, err)
		s := store.NewKVStore(kv, nil)
		t.Cleanup(func() { _ = s.Close() })

		return s, func(t *testing.T, raw []byte) {
			require.NoError(t, kv.Set(context.Background(), store.KeyCustomers, raw))
		}
	})
}

func TestRedisStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (store.Store, storetest.Corrupter) {
		mr := miniredis.RunT(t)
		kv, err := store.OpenRedis(context.Background(), "redis://"+mr.Addr())
		require.NoError(t, err)
		s := store.NewKVStore(kv, nil)
		t.Cleanup(func() { _ = s.Close() })

		return s, func(t *testing.T, raw []byte) {
			require.NoError(t, mr.Set(store.DefaultRedisPrefix+store.KeyCustomers, string(raw)))
		}
	})
}

func TestRedisKeysArePrefixed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := store.NewRedisKV(client, "shop1:")
	defer func() { _ = kv.Close() }()

	require.NoError(t, kv.Set(context.Background(), store.KeyTheme, []byte("dark")))

	got, err := mr.Get("shop1:theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
}

func TestRedisMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}), store.DefaultRedisPrefix)
	defer func() { _ = kv.Close() }()

	_, err := kv.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenRedisBadURL(t *testing.T) {
	_, err := store.OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestAutosaveKey(t *testing.T) {
	assert.Equal(t, "autosave:quote", store.AutosaveKey("quote"))
}

type unreachableKV struct {
	store.KV
}

func (unreachableKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection reset by peer")
}

func TestKVStoreReadFailureIsNotRecovery(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}), store.DefaultRedisPrefix)
	s := store.NewKVStore(unreachableKV{KV: kv}, nil)
	defer func() { _ = s.Close() }()

	result := s.Load(context.Background())
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "connection reset")
	assert.False(t, result.Recovered)
}
