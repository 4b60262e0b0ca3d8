package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alienxp03/panelist/internal/config"
	"github.com/alienxp03/panelist/internal/persona"
	"github.com/alienxp03/panelist/internal/session"
	"github.com/alienxp03/panelist/internal/storage"
	"github.com/alienxp03/panelist/web/handlers"
)

// getPersonasForConfig layers a config's custom personas and any stored
// ones over the built-in roster.
func getPersonasForConfig(cfg *config.Config, store storage.Storage) *persona.Registry {
	extras := cfg.CustomPersonas()
	if store != nil {
		if stored, err := store.ListPersonas(); err == nil {
			for _, p := range stored {
				extras = append(extras, *p)
			}
		}
	}
	return persona.NewRegistry(extras...)
}

// runServer wires storage, personas, and the coordinator into the HTTP API
// and serves it until interrupted.
func runServer(cfg *config.Config, dbPathOverride string, port int) error {
	path := dbPathOverride
	if path == "" {
		path = cfg.DefaultDBPath()
	}

	slog.Info("Initializing storage", "path", path)
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	gen, err := cfg.CreateGenerator(cfg.Defaults.Provider, cfg.Defaults.Model)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	personas := getPersonasForConfig(cfg, store)
	coordinator := session.New(personas, gen, session.WithStorage(store))
	providers := cfg.CreateRegistry()

	h := handlers.New(coordinator, personas, providers, store)

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:    addr,
		Handler: h.Router(),
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("Shutting down...")
		server.Close()
	}()

	slog.Info("Starting panelist server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
