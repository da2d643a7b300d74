package store

import (
	"context"
	"time"
)

// AnonymizationRecord is one row of the LGPD anonymization trail.
// PreservedData holds the client payload verbatim; nil means absent.
type AnonymizationRecord struct {
	ID               string
	EntityType       string
	OriginalEntityID string
	HashedEntityID   string
	AnonymizedAt     time.Time
	Reason           string
	PerformedBy      string
	PreservedData    []byte
	CreatedAt        time.Time
}

// AnonymizationStore has the same insert-if-absent contract as
// AccessRecordStore. Rows are never pruned.
type AnonymizationStore interface {
	InsertIfAbsent(ctx context.Context, rec AnonymizationRecord) (inserted bool, err error)
	List(ctx context.Context) ([]AnonymizationRecord, error)
}
