package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/types"
)

// AccessSyncService ingests access records replayed by offline clients.
type AccessSyncService struct {
	store  store.AccessRecordStore
	logger *log.Logger
}

func NewAccessSyncService(st store.AccessRecordStore, logger *log.Logger) *AccessSyncService {
	return &AccessSyncService{store: st, logger: logger}
}

// Sync persists every record of batch at most once and reports a result
// per record, in order.
func (s *AccessSyncService) Sync(ctx context.Context, batch []json.RawMessage) []types.SyncResult {
	results, sum := Ingest[types.AccessRecord](ctx, batch, accessSink{s})
	logSummary(s.logger, "acessos", sum)
	return results
}

func (s *AccessSyncService) List(ctx context.Context) ([]types.AccessRecord, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.AccessRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.AccessRecord{
			ID:           types.FlexString(r.ID),
			StudentID:    types.FlexString(r.StudentID),
			MovementType: types.MovementType(r.MovementType),
			Timestamp:    types.MillisPtr(r.Timestamp),
			Synced:       true,
		})
	}
	return out, nil
}

type accessSink struct{ s *AccessSyncService }

func (accessSink) RecordID(rec types.AccessRecord) string { return rec.ID.String() }

func (accessSink) Validate(rec types.AccessRecord) error {
	if strings.TrimSpace(rec.ID.String()) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(rec.StudentID.String()) == "" {
		return ErrInvalidStudentID
	}
	if !rec.MovementType.Valid() {
		return ErrInvalidMovementType
	}
	if rec.Timestamp == nil {
		return ErrInvalidTimestamp
	}
	return nil
}

func (a accessSink) Persist(ctx context.Context, rec types.AccessRecord) (bool, error) {
	return a.s.store.InsertIfAbsent(ctx, store.AccessRecord{
		ID:           rec.ID.String(),
		StudentID:    rec.StudentID.String(),
		MovementType: string(rec.MovementType),
		Timestamp:    rec.Timestamp.Time(),
		ReceivedAt:   time.Now().UTC(),
	})
}

func logSummary(logger *log.Logger, kind string, sum types.SyncSummary) {
	if logger == nil {
		return
	}
	logger.Printf("sync %s: received=%d inserted=%d duplicate=%d failed=%d",
		kind, sum.Received, sum.Inserted, sum.Duplicate, sum.Failed)
}
