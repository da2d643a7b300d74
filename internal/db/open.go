package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultPath = "./data/printlog.db"

type Config struct {
	Path string // e.g. "./data/printlog.db"
	Env  string // "dev" | "prod"

	// BusyTimeout bounds how long SQLite waits on a locked database.
	// Zero means 5s.
	BusyTimeout time.Duration
}

// pragmas are applied on every connection opened by the driver.
//   - foreign_keys ON
//   - WAL so listing reads do not block the writer
//   - synchronous NORMAL, durable enough under WAL
func pragmas(busy time.Duration) []string {
	return []string{
		"foreign_keys(1)",
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()),
	}
}

// DSN builds a modernc.org/sqlite DSN for path with the server PRAGMAs.
// extra query parameters (e.g. mode=memory) are appended verbatim.
func DSN(path string, busy time.Duration, extra ...string) string {
	if busy <= 0 {
		busy = 5 * time.Second
	}
	q := make([]string, 0, len(extra)+4)
	q = append(q, extra...)
	for _, p := range pragmas(busy) {
		q = append(q, "_pragma="+p)
	}
	return "file:" + path + "?" + strings.Join(q, "&")
}

// Open opens the SQLite database at cfg.Path, creating the parent
// directory when needed, and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", DSN(cfg.Path, cfg.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// One connection: every write already goes through Worker, and SQLite
	// serialises writers anyway.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}
