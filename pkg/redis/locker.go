package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// releaseScript deletes the lock only if it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// LockClient is the subset of the go-redis client used by Locker.
type LockClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// Locker is a token-based mutual exclusion lock over SET NX PX. It makes
// upload destinations exclusive across hosts sharing a volume or bucket.
type Locker struct {
	client LockClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

var _ upload.Locker = (*Locker)(nil)

// NewLocker creates a Locker from the lock settings of cfg.
func NewLocker(client LockClient, cfg Config) *Locker {
	l := &Locker{
		client: client,
		prefix: cfg.LockPrefix,
		ttl:    cfg.LockTTL,
		retry:  cfg.LockRetryInterval,
	}
	if l.ttl <= 0 {
		l.ttl = 2 * time.Minute
	}
	if l.retry <= 0 {
		l.retry = 50 * time.Millisecond
	}
	return l
}

// Lock polls until key is acquired or ctx is done. The lock expires after the
// configured TTL even if never released.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	key = l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Join(upload.ErrLockNotAcquired, ctxErr)
			}
			return nil, errors.Join(ErrLockFailed, err)
		}
		if ok {
			return l.release(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(upload.ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) release(key, token string) func(context.Context) error {
	return func(ctx context.Context) error {
		n, err := l.client.Eval(ctx, releaseScript, []string{key}, token).Int64()
		if err != nil {
			return errors.Join(ErrLockFailed, err)
		}
		if n == 0 {
			return ErrLockLost
		}
		return nil
	}
}
