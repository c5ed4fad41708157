package web

import (
	"sync"
	"time"

	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/google/uuid"
)

// SnapshotStore keeps the snapshot each rendered grid was built from, so a
// later save can be reconciled against exactly what the user saw.
type SnapshotStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	entries  map[string]storeEntry
}

type storeEntry struct {
	snap    *domain.Snapshot
	expires time.Time
}

// NewSnapshotStore creates a store whose entries live for ttl. At most
// capacity entries are held; the one closest to expiry is evicted first.
func NewSnapshotStore(ttl time.Duration, capacity int) *SnapshotStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &SnapshotStore{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		entries:  make(map[string]storeEntry),
	}
}

// Put stores snap and returns the token that retrieves it.
func (s *SnapshotStore) Put(snap *domain.Snapshot) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpiredLocked(now)
	for len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}

	token := uuid.NewString()
	s.entries[token] = storeEntry{snap: snap, expires: now.Add(s.ttl)}
	return token
}

// Get returns the snapshot for token unless it is unknown or expired.
func (s *SnapshotStore) Get(token string) (*domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, token)
		return nil, false
	}
	return e.snap, true
}

func (s *SnapshotStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

func (s *SnapshotStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SnapshotStore) evictExpiredLocked(now time.Time) {
	for token, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, token)
		}
	}
}

func (s *SnapshotStore) evictOldestLocked() {
	var oldest string
	var oldestExp time.Time
	for token, e := range s.entries {
		if oldest == "" || e.expires.Before(oldestExp) {
			oldest, oldestExp = token, e.expires
		}
	}
	delete(s.entries, oldest)
}
