package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/xisscag-ops/rr4world/internal/config"
	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/logger"
	"github.com/xisscag-ops/rr4world/internal/session"
	"github.com/xisscag-ops/rr4world/internal/storage"
	"github.com/xisscag-ops/rr4world/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("rr4world: %v", err)
	}
}

func run() error {
	// Local development keeps secrets in .env; absence is not an error.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	graph := flow.NewGraph()
	if err := graph.Validate(); err != nil {
		return err
	}

	var store session.Store = session.NewMemory()
	if cfg.Database.Enabled() {
		if err := storage.Migrate(cfg.Database); err != nil {
			return err
		}
		db, err := storage.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		store = storage.NewSessions(db)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go session.Reaper(ctx, store, cfg.Session.IdleTimeout())

	return telegram.Run(ctx, telegram.App{
		Config: cfg,
		Store:  store,
		Graph:  graph,
	})
}
