package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"
)

func TestChunkEmpty(t *testing.T) {
	if got := Chunk("", 1200, 200); got != nil {
		t.Errorf("Chunk(empty) = %v, want nil", got)
	}
	if got := Chunk("   \n\n  ", 1200, 200); got != nil {
		t.Errorf("Chunk(whitespace) = %v, want nil", got)
	}
}

func TestChunkShortTextIsOneChunk(t *testing.T) {
	text := "O CPF é gratuito.\n\nProcure a Receita Federal."
	got := Chunk(text, 1200, 200)
	if len(got) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(got))
	}
	if got[0] != text {
		t.Errorf("chunk = %q, want original text", got[0])
	}
}

func TestChunkPacksParagraphs(t *testing.T) {
	paras := make([]string, 6)
	for i := range paras {
		paras[i] = strings.Repeat(fmt.Sprintf("p%d ", i), 100) // ~300 runes each
	}
	text := strings.Join(paras, "\n\n")

	got := Chunk(text, 1200, 200)
	if len(got) < 2 {
		t.Fatalf("len(chunks) = %d, want at least 2", len(got))
	}
	for i, c := range got {
		if n := len([]rune(c)); n > 1200 {
			t.Errorf("chunk %d has %d runes, want <= 1200", i, n)
		}
	}
	// No paragraph content may be lost.
	joined := strings.Join(got, "\n\n")
	for i := range paras {
		if !strings.Contains(joined, fmt.Sprintf("p%d", i)) {
			t.Errorf("paragraph %d missing from chunks", i)
		}
	}
}

func TestChunkOversizedParagraphOverlaps(t *testing.T) {
	text := strings.Repeat("a", 3000)
	got := Chunk(text, 1200, 200)
	if len(got) < 3 {
		t.Fatalf("len(chunks) = %d, want at least 3", len(got))
	}
	for i, c := range got {
		if n := len([]rune(c)); n > 1200 {
			t.Errorf("chunk %d has %d runes, want <= 1200", i, n)
		}
	}
	// Consecutive windows share the overlap region.
	total := 0
	for _, c := range got {
		total += len([]rune(c))
	}
	if total <= 3000 {
		t.Errorf("total chunk runes = %d, want > 3000 due to overlap", total)
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("frase sobre documentos. ", 200)
	first := Chunk(text, 1200, 200)
	second := Chunk(text, 1200, 200)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

// fakeStore records Add and DeleteDoc calls in memory.
type fakeStore struct {
	mu      sync.Mutex
	chunks  map[string][]string
	deletes []string
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{chunks: make(map[string][]string)}
}

func (f *fakeStore) Add(_ context.Context, docID string, _ int, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && docID == f.failOn {
		return fmt.Errorf("simulated failure for %s", docID)
	}
	f.chunks[docID] = append(f.chunks[docID], content)
	return nil
}

func (f *fakeStore) DeleteDoc(_ context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, docID)
	delete(f.chunks, docID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDirectoryIngestsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cpf.txt", "Como emitir o CPF.\n\nProcure a Receita Federal.")
	writeFile(t, dir, "rg.md", "# Novo RG\n\nA CIN substitui o RG antigo.")
	writeFile(t, dir, "notas.json", `{"ignorado": true}`)

	store := newFakeStore()
	ing, err := New(store, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := ing.Directory(context.Background(), dir)
	if err != nil {
		t.Fatalf("Directory() error = %v", err)
	}

	if result.FilesAdded != 2 {
		t.Errorf("FilesAdded = %d, want 2", result.FilesAdded)
	}
	if result.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", result.FilesSkipped)
	}
	if _, ok := store.chunks["cpf.txt"]; !ok {
		t.Error("cpf.txt not ingested")
	}
	if _, ok := store.chunks["rg.md"]; !ok {
		t.Error("rg.md not ingested")
	}
	if _, ok := store.chunks["notas.json"]; ok {
		t.Error("notas.json ingested, want skipped")
	}
}

func TestDirectoryDeletesBeforeInserting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sus.txt", "O cartão SUS é gratuito.")

	store := newFakeStore()
	ing, err := New(store, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := ing.Directory(context.Background(), dir); err != nil {
		t.Fatalf("Directory() error = %v", err)
	}
	if _, err := ing.Directory(context.Background(), dir); err != nil {
		t.Fatalf("Directory() second run error = %v", err)
	}

	if len(store.deletes) != 2 {
		t.Errorf("DeleteDoc calls = %d, want 2", len(store.deletes))
	}
	if got := len(store.chunks["sus.txt"]); got != 1 {
		t.Errorf("stored chunks = %d, want 1 after re-ingest", got)
	}
}

func TestDirectoryContinuesPastFailedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bom.txt", "Documento válido.")
	writeFile(t, dir, "ruim.txt", "Documento que falha.")

	store := newFakeStore()
	store.failOn = "ruim.txt"
	ing, err := New(store, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := ing.Directory(context.Background(), dir)
	if err != nil {
		t.Fatalf("Directory() error = %v", err)
	}
	if result.FilesAdded != 1 {
		t.Errorf("FilesAdded = %d, want 1", result.FilesAdded)
	}
	if result.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", result.FilesFailed)
	}
}

func TestDirectoryLockExcludesConcurrentRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "conteúdo")

	// Hold the lock as another run would.
	other := flock.New(filepath.Join(dir, lockFileName))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = %v, %v", locked, err)
	}
	defer func() {
		_ = other.Unlock()
	}()

	ing, err := New(newFakeStore(), testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := ing.Directory(context.Background(), dir); err == nil {
		t.Error("Directory() error = nil, want lock error")
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil, testLogger()); err == nil {
		t.Error("New(nil) error = nil, want error")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
