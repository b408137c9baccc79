package reservations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/logger"
	"github.com/tablenow/tablenow-backend/pkg/redis"
)

// SlotLocker serializes the validate-then-write sequence for one store slot.
// WithSlot runs fn while holding the slot and releases it afterwards.
type SlotLocker interface {
	WithSlot(ctx context.Context, storeID uuid.UUID, slot time.Time, fn func(ctx context.Context) error) error
}

// slotKey truncates to the grid so every request that could conflict maps
// to the same key.
func slotKey(storeID uuid.UUID, slot time.Time) string {
	return storeID.String() + ":" + slot.UTC().Truncate(GridGranularity).Format("200601021504")
}

// LocalSlotLocker is an in-process keyed mutex. It only protects a single
// running instance.
type LocalSlotLocker struct {
	mu    sync.Mutex
	slots map[string]*slotEntry
}

type slotEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocalSlotLocker() *LocalSlotLocker {
	return &LocalSlotLocker{slots: make(map[string]*slotEntry)}
}

func (l *LocalSlotLocker) WithSlot(ctx context.Context, storeID uuid.UUID, slot time.Time, fn func(ctx context.Context) error) error {
	key := slotKey(storeID, slot)
	entry := l.acquire(key)
	defer l.release(key, entry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (l *LocalSlotLocker) acquire(key string) *slotEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.slots[key]
	if !ok {
		entry = &slotEntry{}
		l.slots[key] = entry
	}
	entry.refs++
	return entry
}

func (l *LocalSlotLocker) release(key string, entry *slotEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys currently have waiters or holders.
func (l *LocalSlotLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

type lockBackend interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(parts ...string) string
}

// RedisSlotLocker guards slots across instances with a SETNX lock per key.
// Failing to take the lock within the wait budget means another request is
// booking the same slot, so it is reported as ErrSlotConflict. The lease is
// taken once per WithSlot and never extended, so ttl bounds how long fn may
// run before the slot is open to another request.
type RedisSlotLocker struct {
	backend lockBackend
	ttl     time.Duration
	wait    time.Duration
	logg    *logger.Logger
}

func NewRedisSlotLocker(backend lockBackend, ttl, wait time.Duration, logg *logger.Logger) (*RedisSlotLocker, error) {
	if backend == nil {
		return nil, errors.New("redis backend required for slot locker")
	}
	if ttl <= 0 {
		return nil, errors.New("slot lock ttl must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RedisSlotLocker{backend: backend, ttl: ttl, wait: wait, logg: logg}, nil
}

func (l *RedisSlotLocker) WithSlot(ctx context.Context, storeID uuid.UUID, slot time.Time, fn func(ctx context.Context) error) error {
	lock, err := redis.NewLock(l.backend, l.backend.LockKey("slot", slotKey(storeID, slot)), l.ttl)
	if err != nil {
		return err
	}
	if err := lock.AcquireWait(ctx, l.wait); err != nil {
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return slotConflict(slot)
		}
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	defer func() {
		if relErr := lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			l.logg.Error(l.logg.WithField(ctx, "lock_key", lock.Key()), "failed to release slot lock", relErr)
		}
	}()
	return fn(ctx)
}
