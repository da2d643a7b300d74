package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/madebycotrim/printlog-v2-sub004/internal/db"
)

func newScratch(t *testing.T) (*sql.DB, *db.Worker) {
	t.Helper()
	conn := openMemory(t)
	if _, err := conn.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL);`); err != nil {
		t.Fatalf("create: %v", err)
	}
	return conn, db.NewWorker(conn)
}

func TestWorker_CommitsAndRollsBack(t *testing.T) {
	conn, w := newScratch(t)
	defer w.Close()
	ctx := context.Background()

	if err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('a', '1');`)
		return err
	}); err != nil {
		t.Fatalf("Do commit: %v", err)
	}

	boom := errors.New("boom")
	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('b', '2');`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected only the committed row, got %d rows", n)
	}
}

func TestWorker_DoAfterCloseFails(t *testing.T) {
	_, w := newScratch(t)
	w.Close()
	w.Close() // second Close must not panic

	err := w.Do(context.Background(), func(context.Context, *sql.Tx) error { return nil })
	if !errors.Is(err, db.ErrWorkerClosed) {
		t.Fatalf("expected ErrWorkerClosed, got %v", err)
	}
}

func TestWorker_CancelledContext(t *testing.T) {
	_, w := newScratch(t)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := w.Do(ctx, func(context.Context, *sql.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("fn must not run for an already-cancelled context")
	}
}
