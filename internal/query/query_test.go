package query

import (
	"strings"
	"testing"

	"github.com/guiacidadao/guia/internal/profile"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		p         profile.Profile
		recent    []string
		want      string
	}{
		{
			name:      "long question passes through",
			utterance: "como tirar o cpf pela primeira vez",
			want:      "como tirar o cpf pela primeira vez",
		},
		{
			name:      "short follow-up gains axis",
			utterance: "sim",
			p:         profile.Profile{Axis: profile.AxisCPF},
			want:      "CPF sim",
		},
		{
			name:      "short follow-up gains axis and long intent",
			utterance: "sim",
			p:         profile.Profile{Axis: profile.AxisBolsa, Intent: "meu bolsa familia parou"},
			want:      "BOLSA meu bolsa familia parou sim",
		},
		{
			name:      "short intent is skipped",
			utterance: "sim",
			p:         profile.Profile{Axis: profile.AxisRG, Intent: "tirar rg"},
			want:      "RG sim",
		},
		{
			name:      "short follow-up gains history",
			utterance: "e agora?",
			recent:    []string{"como tirar passaporte"},
			want:      "como tirar passaporte e agora?",
		},
		{
			name:      "short follow-up without context unchanged",
			utterance: "sim",
			want:      "sim",
		},
		{
			name:      "locale appended",
			utterance: "como tirar rg",
			p:         profile.Profile{Locale: "bahia"},
			want:      "como tirar rg bahia",
		},
		{
			name:      "locale not duplicated",
			utterance: "como tirar rg na bahia",
			p:         profile.Profile{Locale: "bahia"},
			want:      "como tirar rg na bahia",
		},
		{
			name:      "brasilia locale normalized",
			utterance: "como tirar rg",
			p:         profile.Profile{Locale: "brasilia"},
			want:      "como tirar rg distrito federal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.utterance, tt.p, tt.recent); got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	p := profile.Profile{Axis: profile.AxisSUS, Locale: "ceara"}
	first := Build("ok", p, []string{"cartao sus"})
	second := Build("ok", p, []string{"cartao sus"})
	if first != second {
		t.Errorf("Build not deterministic: %q then %q", first, second)
	}
	if !strings.Contains(first, "ceara") {
		t.Errorf("Build = %q, want locale appended", first)
	}
}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name      string
		ctx       string
		utterance string
		axis      string
		want      bool
	}{
		{
			name:      "matching keyword",
			ctx:       "Para emitir o CPF procure a Receita Federal.",
			utterance: "como tirar cpf",
			want:      true,
		},
		{
			name:      "axis expansion matches synonym",
			ctx:       "A carteira de identidade é emitida pelo instituto do estado.",
			utterance: "como renovar",
			axis:      profile.AxisRG,
			want:      true,
		},
		{
			name:      "unrelated context rejected for cnpj question",
			ctx:       "O passaporte é emitido pela Polícia Federal.",
			utterance: "quero cnpj",
			want:      false,
		},
		{
			name:      "no terms never blocks",
			ctx:       "qualquer texto",
			utterance: "me ajuda com uma coisa",
			want:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRelevant(tt.ctx, tt.utterance, tt.axis); got != tt.want {
				t.Errorf("IsRelevant(%q, %q, %q) = %v, want %v", tt.ctx, tt.utterance, tt.axis, got, tt.want)
			}
		})
	}
}
