package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrScopeLockNotAcquired is returned when a queue scope stays contended past
// the retry budget.
var ErrScopeLockNotAcquired = errors.New("queue scope lock not acquired")

// Locker runs a function while holding a queue scope's lock.
type Locker interface {
	WithLock(ctx context.Context, scope entity.QueueScope, fn func() error) error
}

// releaseLockScript deletes the lock key only when it still holds the token
// the caller set. Redis Go client automatically uses EVALSHA after the first
// call, so the script body is not resent per invocation.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	redisLockKeyPrefix = "queue:lock:"

	// Retry budget for a contended scope
	lockMaxAttempts   = 40
	lockRetryInterval = 50 * time.Millisecond

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// ScopeLocker serializes queue mutations per scope. Two layers:
// an in-process mutex keyed by scope short-circuits local contention, and a
// Redis SET NX lock with a TTL covers concurrent instances. The TTL bounds
// how long a crashed holder can block a scope.
//
// Lock ordering: local mutex first, then the Redis lock. Release runs in
// reverse via a compare-and-delete script so an expired holder cannot free a
// lock someone else has since taken.
type ScopeLocker struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration

	scopeMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewScopeLocker creates a ScopeLocker holding locks for ttl at most.
// Starts background goroutine for mutex cleanup. Call Stop() during graceful
// shutdown.
func NewScopeLocker(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *ScopeLocker {
	l := &ScopeLocker{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
		stopChan:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupMutexMapLoop()

	return l
}

// Stop gracefully shuts down the locker. Safe to call multiple times.
func (l *ScopeLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("ScopeLocker stopped")
	}
}

// WithLock runs fn while holding the scope's lock. Returns
// ErrScopeLockNotAcquired when the retry budget runs out, otherwise fn's
// error.
func (l *ScopeLocker) WithLock(ctx context.Context, scope entity.QueueScope, fn func() error) error {
	key := scope.Key()

	mt := l.getScopeMutex(key)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	token, err := l.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer l.release(key, token)

	return fn()
}

func (l *ScopeLocker) acquire(ctx context.Context, key string) (string, error) {
	lockKey := redisLockKeyPrefix + key
	token := uuid.NewString()

	for attempt := 0; attempt < lockMaxAttempts; attempt++ {
		ok, err := l.redisClient.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			l.log.Warnf("Failed to acquire scope lock %s: %+v", key, err)
			return "", err
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	l.log.Warnf("Scope lock %s still contended after %d attempts", key, lockMaxAttempts)
	return "", ErrScopeLockNotAcquired
}

func (l *ScopeLocker) release(key, token string) {
	// Release is detached from the caller's context so a cancelled request
	// still frees the lock.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lockKey := redisLockKeyPrefix + key
	if err := releaseLockScript.Run(ctx, l.redisClient, []string{lockKey}, token).Err(); err != nil {
		l.log.Warnf("Failed to release scope lock %s: %+v", key, err)
	}
}

// getScopeMutex returns the mutex for a specific scope key
func (l *ScopeLocker) getScopeMutex(key string) *mutexWithTimestamp {
	mt, _ := l.scopeMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (l *ScopeLocker) cleanupMutexMapLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety.
// The lastUsed check happens inside the lock so a concurrent user cannot
// refresh the timestamp between check and delete.
func (l *ScopeLocker) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	l.scopeMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				l.scopeMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale scope mutexes", cleaned)
	}
}
