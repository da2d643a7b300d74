package types

type MovementType string

const (
	MovementEntry MovementType = "entrada"
	MovementExit  MovementType = "saida"
)

func (m MovementType) Valid() bool {
	return m == MovementEntry || m == MovementExit
}

// AccessRecord is one entry/exit captured by a client, possibly offline.
// Synced is ignored on input; stored rows are always synced. Timestamp is
// nil when the client omitted it or sent null; an explicit 0 is kept.
type AccessRecord struct {
	ID           FlexString   `json:"id"`
	StudentID    FlexString   `json:"aluno_matricula"`
	MovementType MovementType `json:"tipo_movimentacao"`
	Timestamp    *Millis      `json:"timestamp"`
	Synced       bool         `json:"sincronizado"`
}
