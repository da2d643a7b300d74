package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
)

type AnonymizationStore struct {
	mu   sync.RWMutex
	data map[string]store.AnonymizationRecord
}

func NewAnonymizationStore() *AnonymizationStore {
	return &AnonymizationStore{data: make(map[string]store.AnonymizationRecord)}
}

func (s *AnonymizationStore) InsertIfAbsent(_ context.Context, rec store.AnonymizationRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[rec.ID]; ok {
		return false, nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.PreservedData != nil {
		rec.PreservedData = append([]byte(nil), rec.PreservedData...)
	}
	s.data[rec.ID] = rec
	return true, nil
}

func (s *AnonymizationStore) List(_ context.Context) ([]store.AnonymizationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.AnonymizationRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnonymizedAt.Equal(out[j].AnonymizedAt) {
			return out[i].AnonymizedAt.After(out[j].AnonymizedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len returns the number of stored records. Test-only helper.
func (s *AnonymizationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
