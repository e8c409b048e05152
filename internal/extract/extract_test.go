package extract

import (
	"testing"

	"github.com/guiacidadao/guia/internal/profile"
)

func TestDecodeProfile(t *testing.T) {
	t.Run("numeric age", func(t *testing.T) {
		p, err := decodeProfile(`{"nome":"Maria","genero":"mulher","papel":"mae","idade":34,"localidade":"bahia","problema":"bolsa parou"}`)
		if err != nil {
			t.Fatalf("decodeProfile() error = %v", err)
		}
		want := profile.Profile{Name: "Maria", Gender: "mulher", Role: "mae", Age: 34, Locale: "bahia", Problem: "bolsa parou"}
		if p != want {
			t.Errorf("decodeProfile() = %+v, want %+v", p, want)
		}
	})

	t.Run("string age", func(t *testing.T) {
		p, err := decodeProfile(`{"nome":"","idade":"61","localidade":"sp"}`)
		if err != nil {
			t.Fatalf("decodeProfile() error = %v", err)
		}
		if p.Age != 61 {
			t.Errorf("Age = %d, want 61", p.Age)
		}
	})

	t.Run("age out of range dropped", func(t *testing.T) {
		p, err := decodeProfile(`{"idade":200}`)
		if err != nil {
			t.Fatalf("decodeProfile() error = %v", err)
		}
		if p.Age != 0 {
			t.Errorf("Age = %d, want 0", p.Age)
		}
	})

	t.Run("empty strings stay empty", func(t *testing.T) {
		p, err := decodeProfile(`{"nome":"","genero":"","papel":"","idade":"","localidade":"","problema":""}`)
		if err != nil {
			t.Fatalf("decodeProfile() error = %v", err)
		}
		if p != (profile.Profile{}) {
			t.Errorf("decodeProfile() = %+v, want zero profile", p)
		}
	})

	t.Run("repairs sloppy json", func(t *testing.T) {
		p, err := decodeProfile(`{nome: 'Ana', idade: 30,}`)
		if err != nil {
			t.Fatalf("decodeProfile() error = %v", err)
		}
		if p.Name != "Ana" || p.Age != 30 {
			t.Errorf("decodeProfile() = %+v, want repaired values", p)
		}
	})

	t.Run("unrecoverable input errors", func(t *testing.T) {
		if _, err := decodeProfile(`não sei responder`); err == nil {
			t.Error("decodeProfile() error = nil, want parse failure")
		}
	})
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain titular", "titular", profile.RoleTitular},
		{"plain responsavel", "responsavel", profile.RoleResponsavel},
		{"accented with punctuation", "Responsável.", profile.RoleResponsavel},
		{"chatty answer defaults to titular", "não tenho certeza", profile.RoleTitular},
		{"empty defaults to titular", "", profile.RoleTitular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRole(tt.text); got != tt.want {
				t.Errorf("parseRole(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"nome":"Ana"}`, `{"nome":"Ana"}`},
		{"json fence", "```json\n{\"nome\":\"Ana\"}\n```", `{"nome":"Ana"}`},
		{"bare fence", "```\n{}\n```", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceAge(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"float from json", float64(42), 42},
		{"string digits", "27", 27},
		{"padded string", " 27 ", 27},
		{"zero rejected", float64(0), 0},
		{"negative rejected", float64(-5), 0},
		{"130 rejected", float64(130), 0},
		{"nil", nil, 0},
		{"garbage string", "quarenta", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceAge(tt.in); got != tt.want {
				t.Errorf("coerceAge(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
