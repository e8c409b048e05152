package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

// GeneratorConfig configures the model-backed Generator.
type GeneratorConfig struct {
	Genkit    *genkit.Genkit
	ModelName string
	Logger    *slog.Logger

	// Retry defaults to DefaultRetryConfig when zero.
	Retry RetryConfig

	// RateLimit and RateBurst default to 10 req/s with burst 30.
	RateLimit rate.Limit
	RateBurst int
}

// modelGenerator produces answers through a genkit model with rate limiting
// and retry. Answers never carry the "*" character; the model is told not to
// emit it but occasionally does anyway, so every chunk is scrubbed.
type modelGenerator struct {
	g         *genkit.Genkit
	modelName string
	limiter   *rate.Limiter
	retry     RetryConfig
	logger    *slog.Logger
}

// NewGenerator creates the production Generator.
func NewGenerator(cfg GeneratorConfig) (Generator, error) {
	if cfg.Genkit == nil {
		return nil, errors.New("genkit instance is required")
	}
	if cfg.ModelName == "" {
		return nil, errors.New("model name is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 30
	}
	return &modelGenerator{
		g:         cfg.Genkit,
		modelName: cfg.ModelName,
		limiter:   rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		retry:     cfg.Retry,
		logger:    cfg.Logger,
	}, nil
}

func (m *modelGenerator) Generate(ctx context.Context, prompt string, callback StreamCallback) (string, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName(m.modelName),
		ai.WithPrompt(prompt),
	}

	var streamed strings.Builder
	if callback != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			clean := scrubChunk(chunk)
			streamed.WriteString(chunkText(clean))
			return callback(ctx, clean)
		}))
	}

	var resp *ai.ModelResponse
	err := executeWithRetry(ctx, m.retry, m.limiter, m.logger, func() error {
		streamed.Reset()
		var genErr error
		resp, genErr = genkit.Generate(ctx, m.g, opts...)
		return genErr
	})
	if err != nil {
		// Whatever was streamed before the failure already reached the
		// client, so report it alongside the error.
		return streamed.String(), err
	}

	if callback != nil {
		return streamed.String(), nil
	}
	return strings.ReplaceAll(resp.Text(), "*", ""), nil
}

// scrubChunk strips the "*" character from a streaming chunk.
func scrubChunk(chunk *ai.ModelResponseChunk) *ai.ModelResponseChunk {
	if chunk == nil {
		return chunk
	}
	clean := *chunk
	clean.Content = make([]*ai.Part, len(chunk.Content))
	for i, part := range chunk.Content {
		if part != nil && part.IsText() && strings.Contains(part.Text, "*") {
			p := *part
			p.Text = strings.ReplaceAll(part.Text, "*", "")
			clean.Content[i] = &p
		} else {
			clean.Content[i] = part
		}
	}
	return &clean
}

func chunkText(chunk *ai.ModelResponseChunk) string {
	if chunk == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range chunk.Content {
		if part != nil && part.IsText() {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
