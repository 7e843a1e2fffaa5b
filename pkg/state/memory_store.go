package state

import (
	"context"
	"sync"
	"time"

	filterbox "github.com/goliatone/go-filterbox"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store keyed by Ref.Identifier. Snapshots are
// copied on the way in and out. Every save issues a fresh ETag; a snapshot
// keeps the SnapshotID it was first saved with.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	snapshot *filterbox.Selections
	meta     Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[string]memoryRecord{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (*filterbox.Selections, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return record.snapshot.Clone(), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, snapshot *filterbox.Selections, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneMeta(meta)
	if previous, ok := s.records[key]; ok && stored.SnapshotID == "" {
		stored.SnapshotID = previous.meta.SnapshotID
	}
	if stored.SnapshotID == "" {
		stored.SnapshotID = uuid.NewString()
	}
	stored.ETag = uuid.NewString()
	stored.UpdatedAt = s.now()

	s.records[key] = memoryRecord{snapshot: snapshot.Clone(), meta: stored}
	return cloneMeta(stored), nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
