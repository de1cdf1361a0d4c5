package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finaipro/colombiagpt/db"
	"github.com/finaipro/colombiagpt/internal/config"
	"github.com/finaipro/colombiagpt/internal/googleai"
	"github.com/finaipro/colombiagpt/internal/knowledge"
	"github.com/finaipro/colombiagpt/internal/log"
	"github.com/finaipro/colombiagpt/internal/rag"
)

func newLogger() log.Logger {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return log.New(log.Config{Level: level, JSON: logJSON})
}

// app bundles the wired components a command needs. Close releases the
// database pool.
type app struct {
	cfg    *config.Config
	logger log.Logger
	pool   *pgxpool.Pool
	client *googleai.Client
	store  *knowledge.Store
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// newApp loads configuration, runs migrations and wires the shared
// components: database pool, Gemini client and knowledge store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ValidateAPIKey(); err != nil {
		return nil, err
	}

	logger := newLogger()

	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	client, err := googleai.New(ctx, googleai.Config{
		APIKey:        config.APIKey(),
		ModelName:     cfg.ModelName,
		EmbedderModel: cfg.EmbedderModel,
		EmbedderDim:   cfg.EmbedderDim,
		Temperature:   cfg.Temperature,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	store, err := knowledge.New(pool, client, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating knowledge store: %w", err)
	}

	return &app{cfg: cfg, logger: logger, pool: pool, client: client, store: store}, nil
}

// newPipeline wires the online answer pipeline on top of the app.
func (a *app) newPipeline() (*rag.Pipeline, error) {
	rewriter, err := rag.NewRewriter(a.client, a.logger)
	if err != nil {
		return nil, err
	}
	retriever, err := rag.NewRetriever(a.store, a.cfg.TopK, a.logger)
	if err != nil {
		return nil, err
	}

	var opts []rag.PipelineOption
	if a.cfg.SourceDetail {
		opts = append(opts, rag.WithSourceDetail())
	}
	return rag.NewPipeline(rewriter, retriever, rag.NewComposer(""), a.client, a.logger, opts...)
}
