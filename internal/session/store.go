package session

import (
	"context"
	"sync"
	"time"
)

// Store persists snapshots with compare-and-set on the version. Save accepts a
// snapshot only when the stored version is exactly one behind it; version 1 means
// the session must not exist yet. Stores return the bare ErrNotFound and
// ErrVersionConflict sentinels.
type Store interface {
	Get(ctx context.Context, id string) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. A zero ttl never expires.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(id)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return entry.snap, nil
}

func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(snap.id)
	switch {
	case !ok && snap.version != 1:
		return ErrNotFound
	case ok && entry.snap.version != snap.version-1:
		return ErrVersionConflict
	}

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = time.Now().Add(m.ttl)
	}
	m.entries[snap.id] = memoryEntry{snap: snap, expiresAt: expiresAt}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// live must be called with mu held.
func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := m.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, id)
		return memoryEntry{}, false
	}
	return entry, true
}
