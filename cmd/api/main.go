package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questline-rpg/engine/internal/config"
	"github.com/questline-rpg/engine/internal/dispatch"
	"github.com/questline-rpg/engine/internal/handlers"
	"github.com/questline-rpg/engine/internal/logger"
	"github.com/questline-rpg/engine/internal/middleware"
	"github.com/questline-rpg/engine/internal/store"
	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Questline Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	tables, err := content.Load(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load content tables", "error", err)
		os.Exit(1)
	}
	if errs := tables.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Error("Content validation failed", "error", e)
		}
		os.Exit(1)
	}
	log.Info("Content tables loaded",
		"classes", len(tables.Classes),
		"locations", len(tables.Locations),
		"enemies", len(tables.Enemies)+len(tables.Bosses))

	sessions := store.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storeCancel()
	if err := sessions.WaitForConnection(storeCtx); err != nil {
		log.Error("Failed to connect to session store", "error", err)
		os.Exit(1)
	}

	eng := engine.New(tables, log, engine.WithRecoveryDelay(cfg.RecoveryDelay))
	dispatcher := dispatch.New(eng, sessions, log)
	defer dispatcher.Close()

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(sessions, log)
	mux.Handle("/health", healthHandler)

	eventHandler := handlers.NewEventHandler(dispatcher, log)
	mux.Handle("/v1/event", eventHandler)

	sessionHandler := handlers.NewSessionHandler(sessions, dispatcher, log)
	mux.Handle("/v1/session", sessionHandler)
	mux.Handle("/v1/session/", sessionHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := sessions.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
