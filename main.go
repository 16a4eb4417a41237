package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"dataprism/adapters/api"
	"dataprism/adapters/llm"
	"dataprism/adapters/memory"
	"dataprism/adapters/postgres"
	"dataprism/app"
	"dataprism/internal/config"
	"dataprism/internal/errors"
	"dataprism/ports"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	datasets, analyses, cleanup, err := buildStores(cfg)
	if err != nil {
		log.Fatalf("store initialization failed: %v", err)
	}
	defer cleanup()

	generator, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	})
	if err != nil {
		log.Fatalf("LLM client initialization failed: %v", err)
	}

	service := app.NewService(datasets, analyses, generator)
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewServer(service).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[Main] listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("[Main] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// buildStores selects the persistence backend: Postgres when DATABASE_URL
// is set, the in-memory store otherwise.
func buildStores(cfg *config.Config) (ports.DatasetStore, ports.AnalysisStore, func(), error) {
	if cfg.Database.URL == "" {
		log.Printf("[Main] DATABASE_URL not set, using in-memory store")
		store := memory.NewStore()
		return store, store, func() {}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	log.Printf("[Main] using PostgreSQL store")
	store := postgres.NewStore(db)
	return store, store, func() { db.Close() }, nil
}
