package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/madebycotrim/printlog-v2-sub004/internal/db"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
)

type AnonymizationStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAnonymizationStore(db *sql.DB, writer *dbpkg.Worker) *AnonymizationStore {
	return &AnonymizationStore{db: db, writer: writer}
}

func (s *AnonymizationStore) InsertIfAbsent(ctx context.Context, rec store.AnonymizationRecord) (bool, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var preserved any
	if rec.PreservedData != nil {
		preserved = string(rec.PreservedData)
	}

	var inserted bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO anonimizacoes(
  id, tipo_entidade, id_entidade_original, hash_entidade,
  data_anonimizacao_ms, motivo, realizado_por, dados_preservados, criado_em_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;
`,
			rec.ID, rec.EntityType, rec.OriginalEntityID, rec.HashedEntityID,
			rec.AnonymizedAt.UTC().UnixMilli(), rec.Reason, rec.PerformedBy,
			preserved, rec.CreatedAt.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert anonimizacao %s: %w", rec.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// List returns the anonymization trail, most recent anonymization first.
func (s *AnonymizationStore) List(ctx context.Context) ([]store.AnonymizationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, tipo_entidade, id_entidade_original, hash_entidade,
       data_anonimizacao_ms, motivo, realizado_por, dados_preservados, criado_em_ms
FROM anonimizacoes
ORDER BY data_anonimizacao_ms DESC, id;
`)
	if err != nil {
		return nil, fmt.Errorf("list anonimizacoes: %w", err)
	}
	defer rows.Close()

	out := []store.AnonymizationRecord{}
	for rows.Next() {
		var (
			rec            store.AnonymizationRecord
			anonMs, creaMs int64
			preserved      sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.EntityType, &rec.OriginalEntityID, &rec.HashedEntityID,
			&anonMs, &rec.Reason, &rec.PerformedBy, &preserved, &creaMs,
		); err != nil {
			return nil, fmt.Errorf("scan anonimizacao: %w", err)
		}
		rec.AnonymizedAt = time.UnixMilli(anonMs).UTC()
		rec.CreatedAt = time.UnixMilli(creaMs).UTC()
		if preserved.Valid {
			rec.PreservedData = []byte(preserved.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
