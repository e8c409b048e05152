// Package intent classifies utterances: document-subject axis and subtrack,
// the clear-subject gate that keeps short acknowledgements from polluting the
// axis, and the small set of direct replies (greetings, thanks, closings)
// that never reach retrieval.
package intent

import (
	"strings"

	"github.com/guiacidadao/guia/internal/profile"
)

// Canned replies returned without consulting retrieval or generation.
const (
	GreetingReply = "Oi! Posso ajudar com RG, CPF, passaporte ou benefícios como Bolsa Família e SUS. Sobre o que você quer falar?"
	ThanksReply   = "De nada! Se precisar de mais alguma coisa sobre documentos ou serviços públicos, é só falar."
	ClosingReply  = "Posso detalhar prazos, taxas, documentos ou onde ir no seu estado. O que mais você precisa?"
)

// DocKeywords is the fixed document-subject vocabulary shared by the
// smalltalk guard and the context validator.
var DocKeywords = []string{
	"cpf", "rg", "identidade", "cin", "sus", "cartao sus", "cartão sus",
	"bolsa", "auxilio", "auxílio", "cadunico", "cadúnico", "passaporte",
	"gov", "gov.br", "imposto", "irpf", "ir", "cnpj", "mei", "empresa",
}

// HasDocSubject reports whether the utterance mentions any document keyword.
func HasDocSubject(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range DocKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var greetingOpeners = []string{
	"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "tudo bem", "como vai",
}

// Smalltalk returns the canned reply for greetings and thanks, or "" when
// the utterance is neither. A greeting that also carries a document subject
// ("oi, como tiro cpf") falls through to the pipeline.
func Smalltalk(text string) string {
	base := strings.ToLower(strings.TrimSpace(text))
	for _, g := range greetingOpeners {
		if strings.HasPrefix(base, g) && !HasDocSubject(base) {
			return GreetingReply
		}
	}
	if strings.Contains(base, "obrigado") || strings.Contains(base, "valeu") {
		return ThanksReply
	}
	return ""
}

var closingPhrases = map[string]bool{
	"só isso":   true,
	"so isso":   true,
	"mais nada": true,
	"acabou?":   true,
}

// IsClosing reports whether the utterance is one of the fixed closing
// phrases ("só isso", "mais nada", ...). Exact match on the lowered text.
func IsClosing(text string) bool {
	return closingPhrases[strings.ToLower(strings.TrimSpace(text))]
}

// ClassifyAxis maps an utterance to its document-subject axis. Checks are
// ordered: CNPJ before CPF so "cnpj" (which contains no "cpf") and company
// language win, and the broad "ir" check comes last.
func ClassifyAxis(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "cnpj"):
		return profile.AxisCNPJ
	case strings.Contains(t, "cpf"):
		return profile.AxisCPF
	case strings.Contains(t, "rg"), strings.Contains(t, "identidade"), strings.Contains(t, "cin"):
		return profile.AxisRG
	case strings.Contains(t, "sus"), strings.Contains(t, "sistema unico de saude"),
		strings.Contains(t, "sistema único de saúde"),
		strings.Contains(t, "cartao sus"), strings.Contains(t, "cartão sus"):
		return profile.AxisSUS
	case strings.Contains(t, "bolsa"), strings.Contains(t, "auxilio"), strings.Contains(t, "cadunico"):
		return profile.AxisBolsa
	case strings.Contains(t, "passaporte"):
		return profile.AxisPassaporte
	case strings.Contains(t, "gov"), strings.Contains(t, "gov.br"):
		return profile.AxisGovBR
	case strings.Contains(t, "imposto"), strings.Contains(t, "irpf"), strings.Contains(t, "ir"):
		return profile.AxisImposto
	}
	return profile.AxisOutro
}

// ClassifySubtrack maps an utterance to a status subtrack, or "" when no
// status language is present.
func ClassifySubtrack(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "bloque"), strings.Contains(t, "cort"), strings.Contains(t, "parou"):
		return profile.SubtrackBloqueado
	case strings.Contains(t, "pend"), strings.Contains(t, "diverg"):
		return profile.SubtrackPendencia
	case strings.Contains(t, "primeira"), strings.Contains(t, "primeiro"),
		strings.Contains(t, "emitir"), strings.Contains(t, "tirar"):
		return profile.SubtrackEmissao
	case strings.Contains(t, "renovar"), strings.Contains(t, "segunda"), strings.Contains(t, "2a via"):
		return profile.SubtrackSegundaVia
	}
	return ""
}

// subjectKeywords gate classification: an utterance with one of these
// always has a clear subject regardless of length.
var subjectKeywords = []string{
	"cpf", "rg", "sus", "bolsa", "auxilio", "cadunico", "passaporte", "gov", "imposto",
}

// shortAnswers are bare acknowledgements that must never trigger
// classification on their own.
var shortAnswers = map[string]bool{
	"sim": true, "ok": true, "blz": true, "beleza": true, "certo": true,
	"isso": true, "ss": true, "s": true, "nao": true, "não": true,
}

// HasClearSubject implements the classification gate: the utterance carries
// a subject keyword, OR has at least 3 tokens, OR has 2 tokens that are not
// all drawn from the short-answer set.
func HasClearSubject(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range subjectKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	words := strings.Fields(lower)
	if len(words) >= 3 {
		return true
	}
	if len(words) >= 2 {
		for _, w := range words {
			if !shortAnswers[w] {
				return true
			}
		}
	}
	return false
}

var subjectChangePhrases = []string{"outro assunto", "agora outro", "mudar de assunto"}

// WantsSubjectChange reports whether the utterance explicitly signals a
// topic change, which is the only way a stored axis gets replaced.
func WantsSubjectChange(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range subjectChangePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
