// Package locker serialises work per key, across processes when Redis is available.
package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"learning_system_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrLockTimeout = errors.New("timed out waiting for lock")

// Locker hands out exclusive locks by key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// New picks the Redis implementation when rdb is set and the local one otherwise.
func New(rdb *redis.Client, ttl time.Duration) Locker {
	if rdb == nil {
		return NewLocal()
	}
	return NewRedis(rdb, ttl)
}

type entry struct {
	ch   chan struct{}
	refs int
}

// Local is a keyed mutex for single-instance deployments.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e, false)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, e, true) })
	}, nil
}

func (l *Local) release(key string, e *entry, held bool) {
	if held {
		<-e.ch
	}
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// compare-and-delete so a lock that expired and was re-acquired is never released by the old holder
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

var refreshScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)

// Redis is a SET NX PX lock with a per-holder token. While held, the expiry is
// pushed back every ttl/3, so ttl only bounds how long a crashed holder blocks others.
type Redis struct {
	rdb        *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{rdb: rdb, ttl: ttl, retryDelay: 50 * time.Millisecond}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	key = "lock:" + key
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrLockTimeout
			}
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(r.retryDelay):
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			if err := unlockScript.Run(context.Background(), r.rdb, []string{key}, token).Err(); err != nil {
				logger.Log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

func (r *Redis) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			held, err := refreshScript.Run(context.Background(), r.rdb, []string{key}, token, r.ttl.Milliseconds()).Int()
			if err != nil {
				logger.Log.Warn("Failed to extend lock", zap.String("key", key), zap.Error(err))
				continue
			}
			if held == 0 {
				logger.Log.Warn("Lock lost before release", zap.String("key", key))
				return
			}
		}
	}
}
