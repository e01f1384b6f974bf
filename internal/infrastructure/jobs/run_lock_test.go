package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Faitltd/FAIT-sub005/pkg/redis"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { redis.SetClient(nil) })
	return srv
}

func TestNewRunLock_FallsBackToLocal(t *testing.T) {
	redis.SetClient(nil)
	_, ok := NewRunLock("sweep", time.Minute).(*LocalRunLock)
	require.True(t, ok)
}

func TestRedisRunLock_Lease(t *testing.T) {
	srv := useMiniredis(t)
	ctx := context.Background()

	lock, ok := NewRunLock("verification:sweep", time.Minute).(*RedisRunLock)
	require.True(t, ok)

	release, acquired, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)
	require.True(t, srv.Exists("verification:sweep"))
	require.Equal(t, time.Minute, srv.TTL("verification:sweep"))

	_, again, err := NewRedisRunLock("verification:sweep", time.Minute).TryAcquire(ctx)
	require.NoError(t, err)
	require.False(t, again, "second replica must skip")

	release()
	require.False(t, srv.Exists("verification:sweep"))
}

func TestRedisRunLock_ReleaseKeepsForeignLease(t *testing.T) {
	srv := useMiniredis(t)
	ctx := context.Background()
	lock := NewRedisRunLock("verification:sweep", time.Second)

	release, acquired, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	// lease expired and another replica took over
	srv.FastForward(2 * time.Second)
	_, acquired, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)
	holder, err := srv.Get("verification:sweep")
	require.NoError(t, err)

	release()
	got, err := srv.Get("verification:sweep")
	require.NoError(t, err)
	require.Equal(t, holder, got)
}

func TestRedisRunLock_Error(t *testing.T) {
	redis.SetClient(nil)
	_, ok, err := NewRedisRunLock("k", time.Minute).TryAcquire(context.Background())
	require.ErrorIs(t, err, redis.ErrNotConfigured)
	require.False(t, ok)
}
