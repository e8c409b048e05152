// Package ingest loads the document corpus into the knowledge store. It
// walks a directory of .txt and .md files, chunks each document, and
// replaces the document's stored passages atomically per file.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

// maxFileSize guards against accidentally ingesting huge files.
const maxFileSize = 4 * 1024 * 1024

// maxConcurrentFiles bounds parallel embedding work.
const maxConcurrentFiles = 4

// lockFileName is created inside the corpus directory while an ingest run
// holds it, so two concurrent runs cannot interleave delete and insert.
const lockFileName = ".guia-ingest.lock"

// ErrLocked is returned when another ingest run holds the corpus lock.
var ErrLocked = errors.New("corpus is locked by another ingest run")

var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Store is the storage surface ingestion needs, satisfied by
// knowledge.Store.
type Store interface {
	Add(ctx context.Context, docID string, chunkIdx int, content string) error
	DeleteDoc(ctx context.Context, docID string) error
}

// Result summarizes one ingest run.
type Result struct {
	FilesAdded   int
	FilesSkipped int
	FilesFailed  int
	Chunks       int
	Duration     time.Duration
}

// Ingester walks a corpus directory and loads it into the store.
type Ingester struct {
	store  Store
	logger *slog.Logger

	chunkSize    int
	chunkOverlap int
}

// New creates an Ingester with default chunking parameters.
func New(store Store, logger *slog.Logger) (*Ingester, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:        store,
		logger:       logger,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}, nil
}

// Directory ingests every supported file under dir. Each file's passages
// are deleted and re-inserted, so re-running ingest after editing a
// document never leaves stale chunks behind. Files are processed
// concurrently; one failing file does not abort the run.
func (ing *Ingester) Directory(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving corpus directory: %w", err)
	}

	lock := flock.New(filepath.Join(absDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring corpus lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			ing.logger.Warn("releasing corpus lock", "error", unlockErr)
		}
	}()

	root, err := os.OpenRoot(absDir)
	if err != nil {
		return nil, fmt.Errorf("opening corpus directory: %w", err)
	}
	defer func() {
		_ = root.Close()
	}()

	var result Result
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)

	walkErr := filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			mu.Lock()
			result.FilesFailed++
			mu.Unlock()
			return nil
		}
		if info.IsDir() || filepath.Base(path) == lockFileName {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtensions[ext] || info.Size() > maxFileSize {
			mu.Lock()
			result.FilesSkipped++
			mu.Unlock()
			return nil
		}

		relPath, err := filepath.Rel(absDir, path)
		if err != nil {
			mu.Lock()
			result.FilesFailed++
			mu.Unlock()
			return nil
		}

		g.Go(func() error {
			chunks, err := ing.ingestFile(gctx, root, relPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Context errors abort the whole run; file errors are
				// recorded and skipped.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				ing.logger.Warn("ingesting file", "file", relPath, "error", err)
				result.FilesFailed++
				return nil
			}
			result.FilesAdded++
			result.Chunks += chunks
			return nil
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking corpus directory: %w", walkErr)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	ing.logger.Info("ingest finished",
		"files_added", result.FilesAdded,
		"files_skipped", result.FilesSkipped,
		"files_failed", result.FilesFailed,
		"chunks", result.Chunks,
		"duration", result.Duration,
	)
	return &result, nil
}

// ingestFile reads, chunks, and stores one file. The relative path is the
// document ID, so re-ingesting the same tree targets the same documents.
func (ing *Ingester) ingestFile(ctx context.Context, root *os.Root, relPath string) (int, error) {
	content, err := root.ReadFile(relPath)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	chunks := Chunk(string(content), ing.chunkSize, ing.chunkOverlap)
	if len(chunks) == 0 {
		return 0, errors.New("file has no content")
	}

	docID := filepath.ToSlash(relPath)
	if err := ing.store.DeleteDoc(ctx, docID); err != nil {
		return 0, fmt.Errorf("clearing previous passages: %w", err)
	}
	for i, chunk := range chunks {
		if err := ing.store.Add(ctx, docID, i, chunk); err != nil {
			return 0, fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}

	ing.logger.Debug("ingested document", "doc_id", docID, "chunks", len(chunks))
	return len(chunks), nil
}
