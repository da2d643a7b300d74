package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string // empty disables the gRPC health server

	Env   string // "dev" | "prod"
	Store string // "sqlite" | "memory"

	// DB
	DBPath string // e.g. "./data/printlog.db"

	MaxBodyBytes int64

	// Access record retention
	AccessRetentionDays int // 0 (default) = keep forever
	PruneIntervalHours  int
}

// Load reads a .env file from the working directory when present and then
// builds the Config from the environment. Variables already set in the
// environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("PRINTLOG_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	st := strings.ToLower(getenvDefault("PRINTLOG_STORE", "sqlite"))
	if st != "sqlite" && st != "memory" {
		st = "sqlite"
	}
	// Compliance records must survive restarts in prod.
	if env == "prod" {
		st = "sqlite"
	}

	return Config{
		HTTPAddr: getenvDefault("PRINTLOG_HTTP_ADDR", ":8080"),
		GRPCAddr: strings.TrimSpace(os.Getenv("PRINTLOG_GRPC_ADDR")),

		Env:   env,
		Store: st,

		DBPath: getenvDefault("PRINTLOG_DB_PATH", "./data/printlog.db"),

		MaxBodyBytes: int64(getenvInt("PRINTLOG_MAX_BODY_BYTES", 1<<20)),

		AccessRetentionDays: getenvInt("PRINTLOG_ACCESS_RETENTION_DAYS", 0),
		PruneIntervalHours:  getenvInt("PRINTLOG_PRUNE_INTERVAL_HOURS", 6),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
