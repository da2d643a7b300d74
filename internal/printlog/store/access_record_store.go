package store

import (
	"context"
	"time"
)

// AccessRecord is an access movement as persisted. ID is the
// client-generated token.
type AccessRecord struct {
	ID           string
	StudentID    string
	MovementType string
	Timestamp    time.Time
	ReceivedAt   time.Time // server clock at first arrival
}

// AccessRecordStore persists access records keyed by ID. Inserting an ID
// that already exists is a no-op and reports inserted=false.
type AccessRecordStore interface {
	InsertIfAbsent(ctx context.Context, rec AccessRecord) (inserted bool, err error)
	List(ctx context.Context) ([]AccessRecord, error)
	// PruneOlderThan deletes records received before cutoff. The client
	// timestamp is never used: offline clocks are not trusted.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
