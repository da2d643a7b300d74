package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/service"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/types"
)

// DefaultMaxBodyBytes caps a sync batch body. A few hundred records of
// either kind fit comfortably.
const DefaultMaxBodyBytes = 1 << 20

var (
	errNotArray     = errors.New("invalid body: expected a JSON array of records")
	errBodyTooLarge = errors.New("request body too large")
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Logger       *log.Logger
	Addr         string
	MaxBodyBytes int64

	AccessSync        *service.AccessSyncService
	AnonymizationSync *service.AnonymizationSyncService

	// DB is optional; when set /healthz pings it.
	DB Pinger
}

type Server struct {
	httpServer        *http.Server
	logger            *log.Logger
	mux               *http.ServeMux
	maxBody           int64
	accessSync        *service.AccessSyncService
	anonymizationSync *service.AnonymizationSyncService
	db                Pinger
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	maxBody := d.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	s := &Server{
		logger:            d.Logger,
		mux:               mux,
		maxBody:           maxBody,
		accessSync:        d.AccessSync,
		anonymizationSync: d.AnonymizationSync,
		db:                d.DB,
	}

	mux.HandleFunc("POST /api/sync/acessos", s.handleSync(s.accessSync.Sync))
	mux.HandleFunc("POST /api/sync/anonimizacoes", s.handleSync(s.anonymizationSync.Sync))
	mux.HandleFunc("GET /api/acessos", s.handleListAccess)
	mux.HandleFunc("GET /api/anonimizacoes", s.handleListAnonymizations)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	handler := requestIDMiddleware(loggingMiddleware(d.Logger, mux))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type syncFunc func(ctx context.Context, batch []json.RawMessage) []types.SyncResult

// handleSync serves one batch endpoint. Batch-level failures answer in
// plain text and persist nothing; past that point the answer is always 200
// with one result per record.
func (s *Server) handleSync(sync syncFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, status, err := s.readBatch(r)
		if err != nil {
			if status >= http.StatusInternalServerError {
				s.logger.Printf("%s: %v (req=%s)", r.URL.Path, err, RequestID(r.Context()))
			}
			http.Error(w, err.Error(), status)
			return
		}

		results := sync(r.Context(), batch)

		if isProtobuf(r) {
			list, err := resultsToProto(results)
			if err != nil {
				s.logger.Printf("%s: encode results: %v", r.URL.Path, err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeProto(w, http.StatusOK, list)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// readBatch returns the records of the body, or the status to fail with:
// 400 for well-formed JSON that is not an array, 413 over the size cap,
// 500 for anything that cannot be parsed at all.
func (s *Server) readBatch(r *http.Request) ([]json.RawMessage, int, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > s.maxBody {
		return nil, http.StatusRequestEntityTooLarge, errBodyTooLarge
	}

	if isProtobuf(r) {
		batch, err := batchFromProto(body)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return batch, http.StatusOK, nil
	}

	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		var v any
		err := json.Unmarshal(body, &v)
		if err == nil {
			err = errors.New("invalid JSON body")
		}
		return nil, http.StatusInternalServerError, err
	}
	if body[0] != '[' {
		return nil, http.StatusBadRequest, errNotArray
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if batch == nil {
		batch = []json.RawMessage{}
	}
	return batch, http.StatusOK, nil
}

func (s *Server) handleListAccess(w http.ResponseWriter, r *http.Request) {
	recs, err := s.accessSync.List(r.Context())
	if err != nil {
		s.logger.Printf("list acessos error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleListAnonymizations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.anonymizationSync.List(r.Context())
	if err != nil {
		s.logger.Printf("list anonimizacoes error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Printf("healthz: db ping: %v", err)
			writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
