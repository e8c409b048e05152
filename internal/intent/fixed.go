package intent

import "strings"

// fixedAnswer is a curated reply matched by substring against the lowered
// utterance. Entries are checked in order; first match wins.
type fixedAnswer struct {
	patterns []string
	reply    string
}

var fixedAnswers = []fixedAnswer{
	{
		patterns: []string{
			"quais documentos preciso para bolsa familia",
			"documentos bolsa familia",
			"como entrar no bolsa familia",
		},
		reply: `
Para solicitar o Bolsa Família, você precisa:

Documentos necessários:
- CPF do responsável familiar
- Documento de identificação de todos da casa
- Comprovante de residência
- Comprovante de matrícula escolar das crianças

Onde ir:
- CRAS do seu município ou setor do Cadastro Único da prefeitura

Observação importante:
É obrigatório manter vacinação e frequência escolar em dia.
`,
	},
	{
		patterns: []string{
			"como tirar o novo rg",
			"como fazer a carteira de identidade nacional",
			"novo rg documentos",
		},
		reply: `
Para tirar a Carteira de Identidade Nacional (novo RG):

Documentos:
- Certidão de nascimento ou casamento
- CPF regularizado

Onde ir:
- Órgão de identificação do seu estado (Poupatempo, VIVA, etc.)

Observações:
- Primeira via é gratuita
- Geralmente é necessário agendar
`,
	},
}

// FixedAnswer returns the curated reply whose pattern appears inside the
// utterance, or "" when none matches. Curated replies bypass retrieval and
// generation entirely.
func FixedAnswer(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, fa := range fixedAnswers {
		for _, pat := range fa.patterns {
			if strings.Contains(lower, pat) {
				return strings.TrimSpace(fa.reply)
			}
		}
	}
	return ""
}
