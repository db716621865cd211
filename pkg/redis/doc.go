// Package redis connects to Redis with retries and provides a distributed
// Locker for upload destinations.
//
// # Usage
//
//	import "github.com/dmitrymomot/uploadkit/pkg/redis"
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	u := upload.New(policy, upload.WithLocker(redis.NewLocker(client, cfg)))
//
// Register the health check with the readiness probe:
//
//	httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)}
//
// # Locking
//
// Locker stores a random token under prefix+key with SET NX PX and releases
// it with a compare-and-delete script, so an expired lock taken over by
// another holder is never deleted. Lock polls at LockRetryInterval until the
// caller's context is done, then fails with upload.ErrLockNotAcquired.
//
// # Errors
//
// Sentinel errors such as ErrRedisNotReady wrap the underlying go-redis
// errors using errors.Join and can be matched with errors.Is.
package redis
