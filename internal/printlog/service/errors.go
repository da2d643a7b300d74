package service

import "errors"

var (
	ErrInvalidID = errors.New("id is required")

	ErrInvalidStudentID    = errors.New("aluno_matricula is required")
	ErrInvalidMovementType = errors.New("tipo_movimentacao must be entrada or saida")
	ErrInvalidTimestamp    = errors.New("timestamp is required")

	ErrInvalidEntityType       = errors.New("tipo_entidade is required")
	ErrInvalidOriginalEntityID = errors.New("id_entidade_original is required")
	ErrInvalidHashedEntityID   = errors.New("hash_entidade is required")
	ErrInvalidAnonymizedAt     = errors.New("data_anonimizacao is required")
	ErrInvalidReason           = errors.New("motivo is required")
	ErrInvalidPerformedBy      = errors.New("realizado_por is required")
)
