package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guiacidadao/guia/internal/app"
	"github.com/guiacidadao/guia/internal/config"
	"github.com/guiacidadao/guia/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Load the document corpus into the knowledge base",
	Long: `Ingest walks a directory of .txt and .md files, splits each document
into chunks, embeds them and stores the result in PostgreSQL. Re-running
after editing a document replaces its stored passages.

Without an argument the configured corpus directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	dir := cfg.CorpusDir
	if len(args) == 1 {
		dir = args[0]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	ing, err := ingest.New(a.Knowledge, logger)
	if err != nil {
		return fmt.Errorf("creating ingester: %w", err)
	}

	res, err := ing.Directory(ctx, dir)
	if err != nil {
		if errors.Is(err, ingest.ErrLocked) {
			return fmt.Errorf("another ingest run is already in progress for %s", dir)
		}
		return fmt.Errorf("ingesting %s: %w", dir, err)
	}

	fmt.Printf("Ingest complete: %d files added, %d skipped, %d failed, %d chunks in %s\n",
		res.FilesAdded, res.FilesSkipped, res.FilesFailed, res.Chunks, res.Duration.Round(10*time.Millisecond))

	if res.FilesFailed > 0 {
		return fmt.Errorf("%d files failed to ingest", res.FilesFailed)
	}
	return nil
}
