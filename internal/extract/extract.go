// Package extract fills profile fields the deterministic rules could not,
// using model calls with strict output contracts: a six-key JSON object for
// the full extraction and a single word for the role classifier.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/kaptinlin/jsonrepair"

	"github.com/guiacidadao/guia/internal/profile"
)

// maxResponseBytes limits model output size before JSON parsing.
const maxResponseBytes = 10 * 1024

const profilePrompt = `Extraia dados do perfil a partir do texto do cidadão.
Campos: nome (primeiro nome), genero (identidade de gênero), papel (mãe, pai, responsável, idoso), idade (número), localidade (estado/UF ou cidade), problema (frase curta do pedido).
Responda apenas em JSON com chaves: nome, genero, papel, idade, localidade, problema. Use string vazia se não souber.

Texto: %s`

const rolePrompt = `Analise a resposta do usuário e determine se o atendimento é para ele mesmo ou para alguém da família.

Exemplos de respostas que indicam "para si mesmo" (titular):
- "sou eu", "sou eu mesmo", "é pra mim", "para mim", "pra mim", "eu mesmo", "para mim mesmo", "é para mim", "eu", "para eu", "pra eu"

Exemplos de respostas que indicam "para alguém da família" (responsavel):
- "filho", "filha", "dependente", "para meu filho", "para minha filha", "para alguém da família", "para outro"

Resposta do usuário: "%s"

Responda APENAS com uma palavra: "titular" ou "responsavel"
Se não conseguir determinar com certeza, responda "titular".`

// Extractor runs the model-backed profile extraction stages.
type Extractor struct {
	g         *genkit.Genkit
	modelName string
	logger    *slog.Logger
}

// New creates an Extractor. The model name must be provider-qualified.
func New(g *genkit.Genkit, modelName string, logger *slog.Logger) *Extractor {
	return &Extractor{g: g, modelName: modelName, logger: logger}
}

// ProfileFields asks the model for the six profile fields and returns a
// partial profile with whatever it filled. Malformed JSON goes through a
// repair pass before being rejected.
func (e *Extractor) ProfileFields(ctx context.Context, utterance string) (profile.Profile, error) {
	resp, err := genkit.Generate(ctx, e.g,
		ai.WithModelName(e.modelName),
		ai.WithPrompt(fmt.Sprintf(profilePrompt, utterance)),
	)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("generating profile extraction: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return profile.Profile{}, nil
	}
	if len(text) > maxResponseBytes {
		return profile.Profile{}, fmt.Errorf("extraction response too large: %d bytes", len(text))
	}

	p, err := decodeProfile(stripCodeFences(text))
	if err != nil {
		return profile.Profile{}, fmt.Errorf("parsing extraction result: %w (raw: %q)", err, truncate(text, 200))
	}
	return p, nil
}

// ClassifyRole asks the model whether the service is for the citizen or a
// family member. Any answer that is not recognizably "responsavel" collapses
// to titular, matching the prompt's own fallback instruction.
func (e *Extractor) ClassifyRole(ctx context.Context, utterance string) (string, error) {
	resp, err := genkit.Generate(ctx, e.g,
		ai.WithModelName(e.modelName),
		ai.WithPrompt(fmt.Sprintf(rolePrompt, utterance)),
	)
	if err != nil {
		return "", fmt.Errorf("generating role classification: %w", err)
	}
	return parseRole(resp.Text()), nil
}

// decodeProfile parses the six-key JSON object. The model sometimes returns
// idade as a string or a JSON number, so that field is coerced.
func decodeProfile(text string) (profile.Profile, error) {
	var raw struct {
		Nome       string `json:"nome"`
		Genero     string `json:"genero"`
		Papel      string `json:"papel"`
		Idade      any    `json:"idade"`
		Localidade string `json:"localidade"`
		Problema   string `json:"problema"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return profile.Profile{}, err
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return profile.Profile{}, err
		}
	}

	return profile.Profile{
		Name:    strings.TrimSpace(raw.Nome),
		Gender:  strings.TrimSpace(raw.Genero),
		Role:    strings.TrimSpace(raw.Papel),
		Age:     coerceAge(raw.Idade),
		Locale:  strings.TrimSpace(raw.Localidade),
		Problem: strings.TrimSpace(raw.Problema),
	}, nil
}

func coerceAge(v any) int {
	switch n := v.(type) {
	case float64:
		age := int(n)
		if age > 0 && age < 130 {
			return age
		}
	case string:
		if age, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && age > 0 && age < 130 {
			return age
		}
	}
	return 0
}

// parseRole normalizes the one-word classifier answer. Punctuation and
// diacritics slips ("responsável.", "responsvel") still count.
func parseRole(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToLower(text))
	if strings.Contains(cleaned, "responsavel") || strings.Contains(cleaned, "responsvel") {
		return profile.RoleResponsavel
	}
	return profile.RoleTitular
}

// stripCodeFences removes ```json ... ``` wrapping from model output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
