package knowledge

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestNewStoreValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := NewStore(nil, nil, logger); err == nil {
		t.Error("NewStore(nil db) error = nil, want error")
	}
}

func TestJoinUnique(t *testing.T) {
	tests := []struct {
		name     string
		passages []Passage
		want     string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name:     "single passage",
			passages: []Passage{{Content: "O CPF é gratuito."}},
			want:     "O CPF é gratuito.",
		},
		{
			name: "joins with separator in order",
			passages: []Passage{
				{Content: "primeiro"},
				{Content: "segundo"},
			},
			want: "primeiro\n---\nsegundo",
		},
		{
			name: "drops exact duplicates",
			passages: []Passage{
				{Content: "repetido"},
				{Content: "outro"},
				{Content: "repetido"},
			},
			want: "repetido\n---\noutro",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinUnique(tt.passages); got != tt.want {
				t.Errorf("joinUnique() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinUniqueSeparatorCount(t *testing.T) {
	passages := []Passage{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	got := joinUnique(passages)
	if n := strings.Count(got, "\n---\n"); n != 2 {
		t.Errorf("separator count = %d, want 2", n)
	}
}
