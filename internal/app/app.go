// Package app assembles the application from its parts: configuration,
// tracing, the database pool, genkit, the knowledge store, sessions and the
// chat pipeline. Both the serve and ingest commands build their dependencies
// through Setup so wiring lives in exactly one place.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guiacidadao/guia/internal/chat"
	"github.com/guiacidadao/guia/internal/config"
	"github.com/guiacidadao/guia/internal/knowledge"
	"github.com/guiacidadao/guia/internal/session"
)

// App is the assembled application.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool

	Knowledge *knowledge.Store
	Sessions  *session.Store
	Agent     *chat.Agent
	Flow      *chat.Flow

	otelShutdown func(context.Context) error
}

// Close releases everything Setup acquired. Safe to call on a partially
// initialized App; Setup relies on that for its own error path.
func (a *App) Close() error {
	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Debug("database pool closed")
	}

	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Logger.Warn("shutting down tracer provider", "error", err)
		}
	}

	return nil
}
