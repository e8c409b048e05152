// Package cmd provides the guia CLI commands.
//
// Commands:
//   - serve: HTTP API server with SSE streaming
//   - ingest: load the document corpus into the knowledge base
//   - version: build and configuration information
//
// All commands handle SIGINT/SIGTERM via context cancellation and shut
// down gracefully.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guia",
	Short: "Guia Cidadão - assistente de serviços públicos brasileiros",
	Long: `Guia Cidadão é um assistente conversacional para serviços públicos
brasileiros: emissão de RG e CPF e acesso ao Bolsa Família.

As respostas são geradas a partir de um corpus de documentos oficiais
carregado com o comando ingest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return rootCmd.Execute()
}
