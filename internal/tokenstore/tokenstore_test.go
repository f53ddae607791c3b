package tokenstore

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	revoked, err := m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	claimed, err := m.Revoke(ctx, "a", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, claimed)

	revoked, err = m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	claimed, err = m.Revoke(ctx, "a", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, claimed, "an id is claimed once")
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory()
	m.now = func() time.Time { return now }

	claimed, err := m.Revoke(ctx, "short", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = m.Revoke(ctx, "past", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)

	revoked, _ := m.IsRevoked(ctx, "past")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = m.IsRevoked(ctx, "short")
	assert.False(t, revoked)
	assert.Empty(t, m.entries)
}

func TestMemoryRevokeConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	exp := time.Now().Add(time.Hour)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := m.Revoke(ctx, "shared", exp)
			assert.NoError(t, err)
			if claimed {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestRedisRevoke(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis denylist test")
	}
	ctx := context.Background()
	r := NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer r.Close()
	require.NoError(t, r.Ping(ctx))

	jti := uuid.NewString()
	revoked, err := r.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	claimed, err := r.Revoke(ctx, jti, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)

	revoked, err = r.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	claimed, err = r.Revoke(ctx, jti, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)
}
