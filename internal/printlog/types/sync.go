package types

// SyncStatus is the per-record outcome reported back to the client.
type SyncStatus string

const (
	// StatusSynced covers both a fresh insert and a replayed id; the client
	// cannot and need not tell them apart.
	StatusSynced SyncStatus = "sincronizado"
	StatusError  SyncStatus = "erro"
)

type SyncResult struct {
	ID     string     `json:"id"`
	Status SyncStatus `json:"status"`
	Error  string     `json:"erro,omitempty"`
}

// SyncSummary counts what a single batch did. It is logged, never returned.
type SyncSummary struct {
	Received  int
	Inserted  int
	Duplicate int
	Failed    int
}
