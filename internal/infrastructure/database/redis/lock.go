package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// unlock and extend must only touch the key when the stored token matches,
// otherwise a slow worker could release a lock another worker now holds.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

const extendScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

// RunLock serializes execution of a single discovery run across workers.
type RunLock struct {
	client *Client
	logger logging.Logger
	key    string
	token  string
	ttl    time.Duration
}

type LockOption func(*RunLock)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(l *RunLock) { l.ttl = ttl }
}

// NewRunLock builds a lock for the named resource.  The token is unique per
// lock instance so only the acquiring worker can release it.
func NewRunLock(client *Client, log logging.Logger, name string, opts ...LockOption) *RunLock {
	if log == nil {
		log = logging.NewNopLogger()
	}
	l := &RunLock{
		client: client,
		logger: log,
		key:    "combirx:lock:" + name,
		token:  uuid.NewString(),
		ttl:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryLock attempts a single non-blocking acquisition.
func (l *RunLock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.GetUnderlyingClient().SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "lock acquisition failed")
	}
	if ok {
		l.logger.Debug("acquired run lock", logging.String("key", l.key))
	}
	return ok, nil
}

// Lock blocks until the lock is acquired or the context is done.
func (l *RunLock) Lock(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "gave up waiting for lock")
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock if this instance still owns it.
func (l *RunLock) Unlock(ctx context.Context) error {
	n, err := l.client.GetUnderlyingClient().Eval(ctx, unlockScript, []string{l.key}, l.token).Int64()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "lock release failed")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	l.logger.Debug("released run lock", logging.String("key", l.key))
	return nil
}

// Extend renews the TTL while a long run is still executing.
func (l *RunLock) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := l.client.GetUnderlyingClient().Eval(ctx, extendScript, []string{l.key}, l.token, ttl.Milliseconds()).Int64()
	if err != nil && err != redis.Nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "lock extension failed")
	}
	return n == 1, nil
}

//Personal.AI order the ending
