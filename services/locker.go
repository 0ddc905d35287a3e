package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/queue-app/utils"
)

// Locker is the single-writer boundary around the queue and the table roster.
// Every operation that reads and then writes allocation state (numbers,
// positions, table status) holds it for its whole duration.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// LocalLocker serialises writers inside one process.
type LocalLocker struct {
	sem chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

func (l *LocalLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
	}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises writers across processes sharing one database.
// The key expires after TTL so a crashed holder cannot wedge the queue.
type RedisLocker struct {
	Client        *redis.Client
	Key           string
	TTL           time.Duration
	RetryInterval time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		Client:        client,
		Key:           "queueapp:lock:queue",
		TTL:           10 * time.Second,
		RetryInterval: 25 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	owner := uuid.NewString()
	for {
		ok, err := l.Client.SetNX(ctx, l.Key, owner, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire redis lock: %w", err)
		}
		if ok {
			return func() {
				if err := releaseScript.Run(context.Background(), l.Client, []string{l.Key}, owner).Err(); err != nil {
					utils.ErrorLogger.Printf("release redis lock %s: %v", l.Key, err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.RetryInterval):
		}
	}
}
