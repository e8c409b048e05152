// Package query builds retrieval queries from the current utterance plus
// accumulated session state, and validates that retrieved context actually
// covers the subject being asked about.
package query

import (
	"strings"

	"github.com/guiacidadao/guia/internal/intent"
	"github.com/guiacidadao/guia/internal/profile"
)

// Build rewrites the utterance into the retrieval query. A short follow-up
// (two tokens or fewer) with a stored intent, axis, or recent history is
// treated as an answer to a previous question and gets that context
// prepended. The stored locale is appended when not already present so
// retrieval can prefer state-specific passages.
func Build(utterance string, p profile.Profile, recent []string) string {
	q := utterance
	lower := strings.ToLower(utterance)
	history := strings.Join(recent, " ")

	if len(strings.Fields(lower)) <= 2 && (p.Intent != "" || p.Axis != "" || history != "") {
		var terms []string
		if p.Axis != "" {
			terms = append(terms, p.Axis)
		}
		if p.Intent != "" && len(strings.Fields(p.Intent)) > 2 {
			terms = append(terms, p.Intent)
		}
		if history != "" {
			terms = append(terms, history)
		}
		if len(terms) > 0 {
			q = strings.Join(terms, " ") + " " + utterance
		}
	}

	if p.Locale != "" && !strings.Contains(strings.ToLower(q), strings.ToLower(p.Locale)) {
		locale := strings.ToLower(p.Locale)
		if locale == "brasilia" || locale == "brasília" {
			locale = "distrito federal"
		}
		q = q + " " + locale
	}

	return q
}

// axisTerms expands an axis into the vocabulary that retrieved context must
// touch for that axis to be considered covered.
var axisTerms = map[string][]string{
	profile.AxisCPF:        {"cpf"},
	profile.AxisRG:         {"rg", "identidade", "cin"},
	profile.AxisSUS:        {"sus", "cartao sus", "cartão sus", "cartao do sus", "sistema unico de saude"},
	profile.AxisBolsa:      {"bolsa", "auxilio", "auxílio", "cadunico", "cadúnico"},
	profile.AxisPassaporte: {"passaporte"},
	profile.AxisGovBR:      {"gov", "gov.br"},
	profile.AxisImposto:    {"imposto", "irpf", "imposto de renda", "ir"},
	profile.AxisCNPJ:       {"cnpj", "empresa", "mei", "abertura de empresa"},
}

// IsRelevant checks that the retrieved context mentions at least one term of
// the subject under discussion: document keywords found in the utterance plus
// the expansion of the stored axis. With no terms to check it never blocks.
// This keeps an IRPF passage from answering a CNPJ question.
func IsRelevant(contextText, utterance, axis string) bool {
	ctxLower := strings.ToLower(contextText)
	qLower := strings.ToLower(utterance)

	terms := make(map[string]bool)
	for _, kw := range intent.DocKeywords {
		if strings.Contains(qLower, kw) {
			terms[kw] = true
		}
	}
	for _, t := range axisTerms[axis] {
		terms[t] = true
	}

	if len(terms) == 0 {
		return true
	}
	for t := range terms {
		if strings.Contains(ctxLower, t) {
			return true
		}
	}
	return false
}
