package main

import (
	"flag"
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

func main() {
	port := flag.Int("port", 0, "Server port (default from config)")
	dbPath := flag.String("db", "", "Database path (default: ~/.panelist/panelist.db)")
	cfgPath := flag.String("config", "", "Config file path (default: ~/.panelist/config.yaml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Initialize slog
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if *debug {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	// Load config
	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.LoadFrom(*cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	path := *dbPath
	if path == "" {
		path = cfg.DefaultDBPath()
	}

	slog.Info("Initializing storage", "path", path)
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Wire the session engine
	gen, err := cfg.CreateGenerator(cfg.Defaults.Provider, cfg.Defaults.Model)
	if err != nil {
		slog.Error("Failed to create generator", "error", err)
		os.Exit(1)
	}

	extras := cfg.CustomPersonas()
	if stored, err := store.ListPersonas(); err == nil {
		for _, p := range stored {
			extras = append(extras, *p)
		}
	}
	personas := persona.NewRegistry(extras...)

	coordinator := session.New(personas, gen, session.WithStorage(store))
	h := handlers.New(coordinator, personas, cfg.CreateRegistry(), store)

	// Start server
	listenPort := *port
	if listenPort == 0 {
		listenPort = cfg.Server.Port
	}
	addr := fmt.Sprintf(":%d", listenPort)
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

	slog.Info("Starting panelist web server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
