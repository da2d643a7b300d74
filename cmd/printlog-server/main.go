package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madebycotrim/printlog-v2-sub004/internal/config"
	"github.com/madebycotrim/printlog-v2-sub004/internal/db"
	"github.com/madebycotrim/printlog-v2-sub004/internal/grpcapi"
	"github.com/madebycotrim/printlog-v2-sub004/internal/httpapi"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/service"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store"
	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store/memory"
	sqlitestore "github.com/madebycotrim/printlog-v2-sub004/internal/printlog/store/sqlite"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "printlog-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	var (
		conn         *sql.DB
		writer       *db.Worker
		accessStore  store.AccessRecordStore
		anonStore    store.AnonymizationStore
		healthPinger httpapi.Pinger
	)
	switch cfg.Store {
	case "memory":
		logger.Printf("using in-memory stores; records are lost on restart")
		accessStore = memory.NewAccessRecordStore()
		anonStore = memory.NewAnonymizationStore()
	default:
		var err error
		conn, err = db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			logger.Fatalf("open db: %v", err)
		}
		writer = db.NewWorker(conn)
		accessStore = sqlitestore.NewAccessRecordStore(conn, writer)
		anonStore = sqlitestore.NewAnonymizationStore(conn, writer)
		healthPinger = conn
	}

	// Services
	accessSync := service.NewAccessSyncService(accessStore, logger)
	anonSync := service.NewAnonymizationSyncService(anonStore, logger)

	pruner := service.NewRetentionPruner(accessStore, service.PrunerConfig{
		RetentionDays: cfg.AccessRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		AccessSync:        accessSync,
		AnonymizationSync: anonSync,
		DB:                healthPinger,
	})

	go func() {
		logger.Printf("listening on %s (env=%s store=%s)", cfg.HTTPAddr, cfg.Env, cfg.Store)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	// gRPC health
	var grpcSrv *grpcapi.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatalf("grpc listen %s: %v", cfg.GRPCAddr, err)
		}
		var dbPinger grpcapi.Pinger
		if conn != nil {
			dbPinger = conn
		}
		grpcSrv = grpcapi.NewServer(logger, dbPinger)
		go grpcSrv.Watch(ctx, 15*time.Second)
		go func() {
			logger.Printf("grpc health listening on %s", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Printf("grpc server error: %v", err)
				stop()
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.Stop()
	}
	_ = srv.Shutdown(shutdownCtx)
	pruner.Stop()
	if writer != nil {
		writer.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
