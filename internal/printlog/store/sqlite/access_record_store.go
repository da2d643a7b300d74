package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/madebycotrim/printlog-v2-sub004/internal/db"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
)

type AccessRecordStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessRecordStore(db *sql.DB, writer *dbpkg.Worker) *AccessRecordStore {
	return &AccessRecordStore{db: db, writer: writer}
}

// InsertIfAbsent writes rec unless a row with the same id exists. The
// primary key on acessos.id makes the check and the write one atomic step.
//
// ON CONFLICT(id) rather than INSERT OR IGNORE: OR IGNORE would also
// swallow CHECK and NOT NULL violations and report a malformed row as done.
func (s *AccessRecordStore) InsertIfAbsent(ctx context.Context, rec store.AccessRecord) (bool, error) {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	var inserted bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO acessos(
  id, aluno_matricula, tipo_movimentacao, timestamp_ms, sincronizado, recebido_em_ms
) VALUES (?, ?, ?, ?, 1, ?)
ON CONFLICT(id) DO NOTHING;
`,
			rec.ID, rec.StudentID, rec.MovementType,
			rec.Timestamp.UTC().UnixMilli(), rec.ReceivedAt.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert acesso %s: %w", rec.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// List returns every access record, newest movement first.
func (s *AccessRecordStore) List(ctx context.Context) ([]store.AccessRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, aluno_matricula, tipo_movimentacao, timestamp_ms, recebido_em_ms
FROM acessos
ORDER BY timestamp_ms DESC, id;
`)
	if err != nil {
		return nil, fmt.Errorf("list acessos: %w", err)
	}
	defer rows.Close()

	out := []store.AccessRecord{}
	for rows.Next() {
		var (
			rec        store.AccessRecord
			tsMs, rcMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.MovementType, &tsMs, &rcMs); err != nil {
			return nil, fmt.Errorf("scan acesso: %w", err)
		}
		rec.Timestamp = time.UnixMilli(tsMs).UTC()
		rec.ReceivedAt = time.UnixMilli(rcMs).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PruneOlderThan deletes access records first received before cutoff and
// returns how many rows went away.
func (s *AccessRecordStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM acessos
WHERE recebido_em_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
