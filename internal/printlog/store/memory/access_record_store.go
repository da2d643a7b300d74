package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
)

// AccessRecordStore keeps access records in a map keyed by id. Intended for
// tests and PRINTLOG_STORE=memory dev runs.
type AccessRecordStore struct {
	mu   sync.RWMutex
	data map[string]store.AccessRecord

	// FailOn, when set, makes InsertIfAbsent return its error for matching
	// records. Test-only hook.
	FailOn func(rec store.AccessRecord) error
}

func NewAccessRecordStore() *AccessRecordStore {
	return &AccessRecordStore{data: make(map[string]store.AccessRecord)}
}

func (s *AccessRecordStore) InsertIfAbsent(_ context.Context, rec store.AccessRecord) (bool, error) {
	if s.FailOn != nil {
		if err := s.FailOn(rec); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[rec.ID]; ok {
		return false, nil
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	s.data[rec.ID] = rec
	return true, nil
}

func (s *AccessRecordStore) List(_ context.Context) ([]store.AccessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.AccessRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *AccessRecordStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rec := range s.data {
		if rec.ReceivedAt.Before(cutoff) {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of stored records. Test-only helper.
func (s *AccessRecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
