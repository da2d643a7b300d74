package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/types"
)

// AnonymizationSyncService ingests LGPD anonymization records.
type AnonymizationSyncService struct {
	store  store.AnonymizationStore
	logger *log.Logger
}

func NewAnonymizationSyncService(st store.AnonymizationStore, logger *log.Logger) *AnonymizationSyncService {
	return &AnonymizationSyncService{store: st, logger: logger}
}

func (s *AnonymizationSyncService) Sync(ctx context.Context, batch []json.RawMessage) []types.SyncResult {
	results, sum := Ingest[types.AnonymizationRecord](ctx, batch, anonymizationSink{s})
	logSummary(s.logger, "anonimizacoes", sum)
	return results
}

func (s *AnonymizationSyncService) List(ctx context.Context) ([]types.AnonymizationRecord, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.AnonymizationRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.AnonymizationRecord{
			ID:               types.FlexString(r.ID),
			EntityType:       r.EntityType,
			OriginalEntityID: types.FlexString(r.OriginalEntityID),
			HashedEntityID:   r.HashedEntityID,
			AnonymizedAt:     types.MillisPtr(r.AnonymizedAt),
			Reason:           r.Reason,
			PerformedBy:      r.PerformedBy,
			PreservedData:    json.RawMessage(r.PreservedData),
			CreatedAt:        types.MillisFrom(r.CreatedAt),
		})
	}
	return out, nil
}

type anonymizationSink struct{ s *AnonymizationSyncService }

func (anonymizationSink) RecordID(rec types.AnonymizationRecord) string { return rec.ID.String() }

func (anonymizationSink) Validate(rec types.AnonymizationRecord) error {
	required := []struct {
		v   string
		err error
	}{
		{rec.ID.String(), ErrInvalidID},
		{rec.EntityType, ErrInvalidEntityType},
		{rec.OriginalEntityID.String(), ErrInvalidOriginalEntityID},
		{rec.HashedEntityID, ErrInvalidHashedEntityID},
		{rec.Reason, ErrInvalidReason},
		{rec.PerformedBy, ErrInvalidPerformedBy},
	}
	for _, r := range required {
		if strings.TrimSpace(r.v) == "" {
			return r.err
		}
	}
	if rec.AnonymizedAt == nil {
		return ErrInvalidAnonymizedAt
	}
	return nil
}

func (a anonymizationSink) Persist(ctx context.Context, rec types.AnonymizationRecord) (bool, error) {
	createdAt := time.Now().UTC()
	if !rec.CreatedAt.IsZero() {
		createdAt = rec.CreatedAt.Time()
	}

	var preserved []byte
	if p := bytes.TrimSpace(rec.PreservedData); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
		preserved = p
	}

	return a.s.store.InsertIfAbsent(ctx, store.AnonymizationRecord{
		ID:               rec.ID.String(),
		EntityType:       rec.EntityType,
		OriginalEntityID: rec.OriginalEntityID.String(),
		HashedEntityID:   rec.HashedEntityID,
		AnonymizedAt:     rec.AnonymizedAt.Time(),
		Reason:           rec.Reason,
		PerformedBy:      rec.PerformedBy,
		PreservedData:    preserved,
		CreatedAt:        createdAt,
	})
}
