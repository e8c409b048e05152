package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guiacidadao/guia/db"
	"github.com/guiacidadao/guia/internal/chat"
	"github.com/guiacidadao/guia/internal/config"
	"github.com/guiacidadao/guia/internal/extract"
	"github.com/guiacidadao/guia/internal/knowledge"
	"github.com/guiacidadao/guia/internal/observability"
	"github.com/guiacidadao/guia/internal/places"
	"github.com/guiacidadao/guia/internal/session"
)

// Setup builds the application. Tracing is registered before genkit starts
// so flow spans reach the exporter. On error everything already acquired is
// released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Otel.Endpoint,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Otel.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	a.otelShutdown = shutdown

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	a.Genkit = g
	logger.Info("genkit initialized", "model", cfg.FullModelName())

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	store, err := knowledge.NewStore(pool, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge store: %w", err)
	}
	a.Knowledge = store

	a.Sessions = session.NewStore(cfg.SessionTTL())

	agent, err := provideAgent(a, g, store)
	if err != nil {
		return nil, err
	}
	a.Agent = agent
	a.Flow = chat.NewFlow(g, agent)

	return a, nil
}

// provideDBPool runs migrations and opens the connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideAgent wires the chat pipeline: generator, extractor, retriever and
// the static maps resolver.
func provideAgent(a *App, g *genkit.Genkit, store *knowledge.Store) (*chat.Agent, error) {
	generator, err := chat.NewGenerator(chat.GeneratorConfig{
		Genkit:    g,
		ModelName: a.Config.FullModelName(),
		Logger:    a.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	extractor := extract.New(g, a.Config.FullModelName(), a.Logger)

	agent, err := chat.New(chat.Config{
		Sessions:  a.Sessions,
		Retriever: store.Retriever(a.Config.TopK),
		Generator: generator,
		Extractor: extractor,
		Resolver:  places.MapsResolver{},
		Logger:    a.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat agent: %w", err)
	}
	return agent, nil
}
