package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
	sqlitestore "github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store/sqlite"
)

// ═══════════════════════════════════════════════════════════════════════════
// InsertIfAbsent
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessRecordStore_InsertIfAbsent_InsertsRow(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	ts := time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC)
	recv := ts.Add(2 * time.Hour)

	inserted, err := s.InsertIfAbsent(ctx, store.AccessRecord{
		ID:           "a1",
		StudentID:    "123",
		MovementType: "entrada",
		Timestamp:    ts,
		ReceivedAt:   recv,
	})
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("expected inserted=true for a new id")
	}

	var (
		student, movement string
		tsMs, recvMs      int64
		synced            int
	)
	err = conn.QueryRowContext(ctx, `
SELECT aluno_matricula, tipo_movimentacao, timestamp_ms, recebido_em_ms, sincronizado
FROM acessos WHERE id = ?`, "a1",
	).Scan(&student, &movement, &tsMs, &recvMs, &synced)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if student != "123" {
		t.Errorf("expected aluno_matricula=123, got %q", student)
	}
	if movement != "entrada" {
		t.Errorf("expected tipo_movimentacao=entrada, got %q", movement)
	}
	if tsMs != ts.UnixMilli() {
		t.Errorf("expected timestamp_ms=%d, got %d", ts.UnixMilli(), tsMs)
	}
	if recvMs != recv.UnixMilli() {
		t.Errorf("expected recebido_em_ms=%d, got %d", recv.UnixMilli(), recvMs)
	}
	if synced != 1 {
		t.Errorf("expected sincronizado=1, got %d", synced)
	}
}

func TestAccessRecordStore_InsertIfAbsent_DuplicateIsNoop(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	first := store.AccessRecord{
		ID:           "a1",
		StudentID:    "123",
		MovementType: "entrada",
		Timestamp:    time.UnixMilli(1234).UTC(),
	}
	if _, err := s.InsertIfAbsent(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same id, different payload: must neither fail nor overwrite.
	replay := first
	replay.StudentID = "999"
	replay.MovementType = "saida"
	inserted, err := s.InsertIfAbsent(ctx, replay)
	if err != nil {
		t.Fatalf("replay insert: %v", err)
	}
	if inserted {
		t.Error("expected inserted=false for a replayed id")
	}

	if n := countRows(t, conn, "acessos"); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}

	var student, movement string
	if err := conn.QueryRowContext(ctx,
		`SELECT aluno_matricula, tipo_movimentacao FROM acessos WHERE id = ?`, "a1",
	).Scan(&student, &movement); err != nil {
		t.Fatalf("query: %v", err)
	}
	if student != "123" || movement != "entrada" {
		t.Errorf("row was overwritten: aluno_matricula=%q tipo_movimentacao=%q", student, movement)
	}
}

func TestAccessRecordStore_InsertIfAbsent_RejectsUnknownMovement(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))

	_, err := s.InsertIfAbsent(context.Background(), store.AccessRecord{
		ID:           "bad",
		StudentID:    "123",
		MovementType: "teleporte",
		Timestamp:    time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected CHECK constraint error")
	}
	if n := countRows(t, conn, "acessos"); n != 0 {
		t.Errorf("expected no rows after failed insert, got %d", n)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// List
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessRecordStore_List_NewestFirst(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if _, err := s.InsertIfAbsent(ctx, store.AccessRecord{
			ID:           id,
			StudentID:    "123",
			MovementType: "entrada",
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	got := []string{recs[0].ID, recs[1].ID, recs[2].ID}
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if !recs[2].Timestamp.Equal(base) {
		t.Errorf("expected timestamp %s, got %s", base, recs[2].Timestamp)
	}
}

func TestAccessRecordStore_List_EmptyIsNotNil(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))

	recs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", recs)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// PruneOlderThan
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessRecordStore_PruneOlderThan(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	now := time.Now().UTC()
	for id, recv := range map[string]time.Time{
		"old":    now.AddDate(-2, 0, 0),
		"older":  now.AddDate(-3, 0, 0),
		"recent": now.AddDate(0, 0, -1),
	} {
		if _, err := s.InsertIfAbsent(ctx, store.AccessRecord{
			ID: id, StudentID: "1", MovementType: "saida", Timestamp: now, ReceivedAt: recv,
		}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	deleted, err := s.PruneOlderThan(ctx, now.AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 pruned, got %d", deleted)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "recent" {
		t.Errorf("expected only 'recent' to survive, got %+v", recs)
	}
}

func TestAccessRecordStore_PruneIgnoresClientTimestamp(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewAccessRecordStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	// Offline clock far in the past, received just now.
	if _, err := s.InsertIfAbsent(ctx, store.AccessRecord{
		ID: "a1", StudentID: "2024001", MovementType: "entrada", Timestamp: time.UnixMilli(1234).UTC(),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	deleted, err := s.PruneOlderThan(ctx, time.Now().UTC().AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected nothing pruned, got %d", deleted)
	}
	if n := countRows(t, conn, "acessos"); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}
