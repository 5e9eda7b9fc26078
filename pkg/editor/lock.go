package editor

import (
	"sync"
	"time"
)

// DefaultLockTTL is the lifetime of a path lock when the caller does not
// supply one.
const DefaultLockTTL = 60 * time.Second

// pathLock records an exclusive hold on a path.
type pathLock struct {
	userID     string
	acquiredAt time.Time
	ttl        time.Duration
}

// LockTable manages exclusive, time-bounded path locks.
//
// At most one live lock exists per path. Expiry is lazy: expired entries
// are treated as absent and removed when touched; no background sweeper
// runs.
//
// LockTable is safe for concurrent use by multiple goroutines.
type LockTable struct {
	mu         sync.Mutex
	locks      map[string]pathLock
	defaultTTL time.Duration

	now func() time.Time
}

// NewLockTable creates a lock table. A non-positive defaultTTL selects
// DefaultLockTTL.
func NewLockTable(defaultTTL time.Duration) *LockTable {
	if defaultTTL <= 0 {
		defaultTTL = DefaultLockTTL
	}
	return &LockTable{
		locks:      make(map[string]pathLock),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Acquire takes (or renews) the exclusive lock on path for userID.
//
// A live lock held by a different user rejects the acquire with a Locked
// error naming the holder. Re-acquiring by the same user renews the lock:
// acquiredAt resets and the new TTL applies. A non-positive ttl selects
// the table default.
func (lt *LockTable) Acquire(path, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = lt.defaultTTL
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	if l, ok := lt.locks[path]; ok && lt.live(l, now) && l.userID != userID {
		return NewLockedError(path, l.userID)
	}

	lt.locks[path] = pathLock{userID: userID, acquiredAt: now, ttl: ttl}
	return nil
}

// Release drops the lock on path if it is held by userID. Returns true
// when a live lock was released.
func (lt *LockTable) Release(path, userID string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	l, ok := lt.locks[path]
	if !ok {
		return false
	}
	if !lt.live(l, lt.now()) {
		delete(lt.locks, path)
		return false
	}
	if l.userID != userID {
		return false
	}
	delete(lt.locks, path)
	return true
}

// Holder returns the user currently holding a live lock on path.
func (lt *LockTable) Holder(path string) (string, bool) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	l, ok := lt.locks[path]
	if !ok {
		return "", false
	}
	if !lt.live(l, lt.now()) {
		delete(lt.locks, path)
		return "", false
	}
	return l.userID, true
}

// Len returns the number of entries currently tracked, including any that
// have expired but not yet been touched.
func (lt *LockTable) Len() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.locks)
}

// live reports whether a lock is still within its TTL at the given time.
func (lt *LockTable) live(l pathLock, now time.Time) bool {
	return now.Sub(l.acquiredAt) < l.ttl
}
