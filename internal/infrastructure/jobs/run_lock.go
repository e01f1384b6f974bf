package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/pkg/redis"
)

// RunLock keeps overlapping sweeps from running. TryAcquire returns ok=false when another run holds it.
type RunLock interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

var (
	lockSetNX   = redis.SetNX
	lockRelease = redis.ReleaseIfOwner
)

// RedisRunLock is a SETNX lease shared by every replica
type RedisRunLock struct {
	key string
	ttl time.Duration
}

func NewRedisRunLock(key string, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{key: key, ttl: ttl}
}

func (l *RedisRunLock) TryAcquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := lockSetNX(ctx, l.key, token, l.ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		// the lease expires on its own if this fails
		_, _ = lockRelease(context.WithoutCancel(ctx), l.key, token)
	}, true, nil
}

// LocalRunLock serialises runs inside one process
type LocalRunLock struct {
	mu sync.Mutex
}

func (l *LocalRunLock) TryAcquire(context.Context) (func(), bool, error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}
	return l.mu.Unlock, true, nil
}

// NewRunLock picks the redis lease when redis is configured.
func NewRunLock(key string, ttl time.Duration) RunLock {
	if redis.Enabled() {
		return NewRedisRunLock(key, ttl)
	}
	return &LocalRunLock{}
}
