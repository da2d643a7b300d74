package types

import "encoding/json"

// AnonymizationRecord documents one LGPD anonymization performed by a
// client. PreservedData is opaque and stored verbatim. AnonymizedAt is nil
// when absent, so an explicit epoch 0 still counts as present.
type AnonymizationRecord struct {
	ID               FlexString      `json:"id"`
	EntityType       string          `json:"tipo_entidade"`
	OriginalEntityID FlexString      `json:"id_entidade_original"`
	HashedEntityID   string          `json:"hash_entidade"`
	AnonymizedAt     *Millis         `json:"data_anonimizacao"`
	Reason           string          `json:"motivo"`
	PerformedBy      string          `json:"realizado_por"`
	PreservedData    json.RawMessage `json:"dados_preservados,omitempty"`
	CreatedAt        Millis          `json:"criado_em"`
}
