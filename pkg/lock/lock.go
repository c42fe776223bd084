package lock

//go:generate mockgen -source=lock.go -destination=mock_lock.go -package=lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 30 * time.Second

var ErrNotObtained = errors.New("lock not obtained")

type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Releaser, error)
}

type Releaser interface {
	Release(ctx context.Context) error
}

// RedisLocker serialises work on a key across every running instance.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Releaser, error) {
	lk, err := l.client.Obtain(ctx, "lock:"+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return lk, nil
}

// LocalLocker serialises work on a key inside one process. Used when no redis address is configured.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]chan struct{}
	retry time.Duration
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]chan struct{}), retry: 10 * time.Millisecond}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Releaser, error) {
	ctx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()
	for {
		l.mu.Lock()
		done, busy := l.held[key]
		if !busy {
			done = make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			return &localLock{owner: l, key: key, done: done}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", key, ErrNotObtained)
		case <-done:
		}
	}
}

type localLock struct {
	owner *LocalLocker
	key   string
	done  chan struct{}
	once  sync.Once
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() {
		l.owner.mu.Lock()
		delete(l.owner.held, l.key)
		l.owner.mu.Unlock()
		close(l.done)
	})
	return nil
}

// With runs fn while holding key. The database transaction inside fn stays the
// authority; the lock only keeps concurrent callers from queueing on row locks.
func With(ctx context.Context, locker Locker, key string, fn func(ctx context.Context) error) error {
	lk, err := locker.Obtain(ctx, key, DefaultTTL)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := lk.Release(context.WithoutCancel(ctx)); relErr != nil {
			zap.L().Warn("failed to release lock", zap.String("key", key), zap.Error(relErr))
		}
	}()
	return fn(ctx)
}
