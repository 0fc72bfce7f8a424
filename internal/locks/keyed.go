package locks

import (
	"context"
	"errors"
	"time"

	"github.com/lynk-ai/lynk-backend/pkg/redis"
)

const (
	defaultRetryInterval = 50 * time.Millisecond
	releaseTimeout       = 2 * time.Second
)

// KeyedLocker hands out RedisLocks for ids within one scope, e.g. one lock per contact email.
type KeyedLocker struct {
	store redis.LockStore
	scope string
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

// KeyedLockerParams configures a KeyedLocker.
type KeyedLockerParams struct {
	Store redis.LockStore
	Scope string
	TTL   time.Duration
	// Wait bounds how long Lock polls for a held key. Zero means a single attempt.
	Wait          time.Duration
	RetryInterval time.Duration
}

func NewKeyedLocker(params KeyedLockerParams) (*KeyedLocker, error) {
	if params.Store == nil {
		return nil, errors.New("lock store required")
	}
	if params.Scope == "" {
		return nil, errors.New("lock scope required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	retry := params.RetryInterval
	if retry <= 0 {
		retry = defaultRetryInterval
	}
	return &KeyedLocker{
		store: params.Store,
		scope: params.Scope,
		ttl:   ttl,
		wait:  params.Wait,
		retry: retry,
	}, nil
}

// Lock blocks until the id is owned, the wait budget runs out (ErrNotAcquired) or ctx is done.
// The returned unlock func is safe to call once; it releases with a detached context.
func (k *KeyedLocker) Lock(ctx context.Context, id string) (func(), error) {
	lock, err := NewRedisLock(k.store, k.store.LockKey(k.scope, id), k.ttl)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(k.wait)
	for {
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { release(ctx, lock) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		timer := time.NewTimer(k.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// TryLock makes a single acquisition attempt.
func (k *KeyedLocker) TryLock(ctx context.Context, id string) (func(), error) {
	lock, err := NewRedisLock(k.store, k.store.LockKey(k.scope, id), k.ttl)
	if err != nil {
		return nil, err
	}
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return func() { release(ctx, lock) }, nil
}

func release(ctx context.Context, lock *RedisLock) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	// an expired or stolen lock is not an error for the caller
	_ = lock.Release(releaseCtx)
}
