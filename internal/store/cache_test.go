package store

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

func newTestCache(t *testing.T) (*LeadCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLeadCache(client, 5*time.Minute), mr
}

func TestLeadCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	_, found, err := cache.Get(ctx, "L1")
	require.NoError(t, err)
	assert.False(t, found)

	lead := createTestLead("L1")
	require.NoError(t, cache.Set(ctx, lead))
	assert.Equal(t, 5*time.Minute, mr.TTL("lead:L1"))

	got, found, err := cache.Get(ctx, "L1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, lead.ClientName, got.ClientName)
	assert.Equal(t, "main", *got.BranchID)

	require.NoError(t, cache.Invalidate(ctx, "L1"))
	assert.False(t, mr.Exists("lead:L1"))
}

func TestLeadCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Set(ctx, createTestLead("L1")))
	mr.FastForward(6 * time.Minute)

	_, found, err := cache.Get(ctx, "L1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLeadCache_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, mr.Set("lead:L1", "{not json"))

	_, found, err := cache.Get(ctx, "L1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("lead:L1"))
}

func TestLeadCache_RedisErrors(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewLeadCache(client, time.Minute)

	mock.ExpectGet("lead:L1").SetErr(errors.New("connection reset"))
	mock.ExpectDel("lead:L1").SetErr(errors.New("connection reset"))

	_, found, err := cache.Get(ctx, "L1")
	assert.Error(t, err)
	assert.False(t, found)

	assert.ErrorContains(t, cache.Invalidate(ctx, "L1"), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
