package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/types"
)

// RecordSink is the typed half of a sync endpoint: how to name, check and
// persist one record of kind T.
type RecordSink[T any] interface {
	RecordID(rec T) string
	Validate(rec T) error
	// Persist must be insert-if-absent: an existing id returns
	// (false, nil), never an error and never an overwrite.
	Persist(ctx context.Context, rec T) (inserted bool, err error)
}

// Ingest processes batch in order, one record at a time, and returns one
// result per element in the same order. A record that fails to decode,
// validate or persist is reported as an error entry; it never stops the
// rest of the batch. Replayed ids are reported exactly like new ones.
func Ingest[T any](ctx context.Context, batch []json.RawMessage, sink RecordSink[T]) ([]types.SyncResult, types.SyncSummary) {
	results := make([]types.SyncResult, 0, len(batch))
	sum := types.SyncSummary{Received: len(batch)}

	for _, raw := range batch {
		res, inserted, err := ingestOne(ctx, raw, sink)
		switch {
		case err != nil:
			res.Status = types.StatusError
			res.Error = err.Error()
			sum.Failed++
		case inserted:
			res.Status = types.StatusSynced
			sum.Inserted++
		default:
			res.Status = types.StatusSynced
			sum.Duplicate++
		}
		results = append(results, res)
	}

	return results, sum
}

func ingestOne[T any](ctx context.Context, raw json.RawMessage, sink RecordSink[T]) (types.SyncResult, bool, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.SyncResult{ID: probeID(raw)}, false, fmt.Errorf("invalid record: %w", err)
	}

	res := types.SyncResult{ID: sink.RecordID(rec)}
	if err := sink.Validate(rec); err != nil {
		return res, false, err
	}

	inserted, err := sink.Persist(ctx, rec)
	if err != nil {
		return res, false, err
	}
	return res, inserted, nil
}

// probeID recovers the id of a record that failed to decode, so the
// client can still match the error to its buffered entry.
func probeID(raw json.RawMessage) string {
	var probe struct {
		ID types.FlexString `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID.String()
}
