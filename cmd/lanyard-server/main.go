package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lanyardhq/lanyard/internal/api"
	"github.com/lanyardhq/lanyard/internal/catalog"
	"github.com/lanyardhq/lanyard/internal/config"
	"github.com/lanyardhq/lanyard/internal/linkcheck"
	"github.com/lanyardhq/lanyard/internal/search"
	"github.com/lanyardhq/lanyard/internal/store"
	"github.com/lanyardhq/lanyard/internal/tangle"
	"github.com/lanyardhq/lanyard/internal/ws"
)

func main() {
	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Stores
	noteStore := store.NewNoteStore(db)
	linkStore := store.NewLinkStore(db)
	snippetStore := store.NewSnippetStore(db)
	searchStore := store.NewSearchStore(db)

	// Event stream
	broadcaster := ws.NewBroadcaster(db, logger)

	// Services
	catalogSvc := catalog.NewService(
		noteStore, linkStore, snippetStore,
		cfg.NoteDirs, cfg.IndexPath, broadcaster, logger,
	)
	searcher := search.NewSearcher(
		searchStore, cfg.DefaultMinScore, cfg.DefaultMaxResults, cfg.RecencyBoost,
	)
	checker := linkcheck.New(
		linkStore, catalogSvc.Locate,
		cfg.CheckWorkers, time.Duration(cfg.CheckTimeoutSec)*time.Second, logger,
	)
	tangler := tangle.New(snippetStore, logger)

	// Router
	router := api.NewRouter(
		db, catalogSvc, searcher, checker, tangler,
		noteStore, snippetStore, broadcaster, cfg, logger,
	)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("lanyard server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Auto-scan the notebook on startup
	if cfg.AutoScan {
		go func() {
			result, err := catalogSvc.Sync()
			if err != nil {
				logger.Error("startup scan failed", "error", err)
				return
			}
			logger.Info("startup scan complete",
				"found", result.Found,
				"added", result.Added,
				"updated", result.Updated,
				"removed", result.Removed,
			)
		}()
	}

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
