package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/walnut-media/backend/internal/api"
	"github.com/walnut-media/backend/internal/config"
	"github.com/walnut-media/backend/internal/db"
	"github.com/walnut-media/backend/internal/engine"
	"github.com/walnut-media/backend/internal/media"
	"github.com/walnut-media/backend/internal/scratch"
	"github.com/walnut-media/backend/internal/session"
	"github.com/walnut-media/backend/internal/token"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	files, err := media.NewStore(cfg.UploadPath)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}
	renders, err := scratch.NewStore(cfg.ScratchPath)
	if err != nil {
		log.Fatalf("Failed to initialize scratch store: %v", err)
	}

	ledger := token.NewLedger(cfg.InitialTokens)
	log.Printf("Token ledger seeded with %d tokens", cfg.InitialTokens)

	engineClient := engine.New(cfg.EngineURL, cfg.EngineTimeout)
	log.Printf("Processing engine: %s (timeout %s)", cfg.EngineURL, cfg.EngineTimeout)

	events := session.NewEventBus(200)
	sess := session.New(session.Config{
		Files:         files,
		Scratch:       renders,
		Ledger:        ledger,
		Engine:        engineClient,
		EngineTimeout: cfg.EngineTimeout,
		Events:        events,
	})

	// Create router
	router := api.NewRouter(cfg, sess, ledger, database, events)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
