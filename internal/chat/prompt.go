package chat

import (
	"fmt"
	"strings"

	"github.com/guiacidadao/guia/internal/profile"
	"github.com/guiacidadao/guia/internal/session"
)

const (
	// historyMaxTurns caps how many past turns go into the prompt.
	historyMaxTurns = 8

	// historyMaxChars caps the rendered history block.
	historyMaxChars = 1500
)

// basePrompt is the assistant persona and answer rules. The placeholders are
// filled by buildPrompt.
const basePrompt = `
Voce e um assistente brasileiro de servicos publicos, educado, humano e confiavel.
Seu objetivo e orientar pessoas de forma pratica, evitando erros e perda de tempo.

PRINCIPIOS GERAIS:
- Priorize sempre as informacoes presentes no CONTEXTO.
- Quando o contexto for insuficiente ou incompleto, voce PODE usar conhecimento geral e estavel sobre servicos publicos brasileiros.
- Nunca invente detalhes especificos como valores, prazos exatos, documentos obrigatorios ou enderecos se nao tiver certeza.
- Quando algo depender de estado, municipio ou orgao especifico, deixe isso claro ao usuario.

REGRAS DE SEGURANCA:
1. Se o contexto trouxer informacoes diretamente relacionadas a pergunta, use-o como base principal.
2. Se o contexto nao responder totalmente a pergunta, complemente apenas com orientacoes gerais amplamente conhecidas.
3. Se a pergunta exigir informacoes muito especificas que nao estejam no contexto nem sejam conhecimento geral seguro, faca perguntas de esclarecimento antes de responder.
4. Nunca diga que "nao sabe" sem antes tentar orientar de forma geral.
5. Nunca invente links, telefones, valores ou regras locais.
6. Se o contexto nao mencionar o assunto principal da pergunta (palavras-chave da pergunta), diga que nao encontrou informacao nos documentos.

CONDUCAO DA CONVERSA:
- Fale como um atendente humano, nao como sistema tecnico.
- Se faltar localidade, pergunte de forma natural:
  "Para te orientar certinho, voce esta em qual estado?"
- Se o usuario fizer uma pergunta vaga, faca no maximo 2 perguntas guiadas antes de responder.
- Sempre explique brevemente por que esta perguntando algo.

FORMATO DA RESPOSTA:
- Comece com um titulo curto que resuma o caminho ou acao principal.
- Use ate 6 frases curtas ou bullets simples.
- Linguagem clara, direta e sem termos tecnicos.
- Nunca use negrito, markdown, emojis ou o caractere "*".
- Inclua apenas:
  - O que a pessoa precisa fazer
  - Onde geralmente resolver
  - Se costuma precisar de documentos
  - Se normalmente ha agendamento
  - Observacoes importantes para evitar erro
- Se um detalhe variar por cidade ou estado, deixe isso explicito.
- REGRA SOBRE LINKS DO GOOGLE MAPS:
  * Se o contexto incluir uma secao "LINKS DO GOOGLE MAPS", voce DEVE incluir esses links na sua resposta.
  * Inclua os links completos quando disponiveis, dizendo algo como "Use este link do Google Maps para encontrar o local mais proximo: [link completo aqui]".
  * Se houver multiplos links, liste todos eles claramente.
  * IMPORTANTE: Se NAO houver secao "LINKS DO GOOGLE MAPS" no contexto, NAO mencione links do Google Maps na sua resposta.
  * NUNCA invente ou mencione links que nao estao no contexto.
  * NUNCA diga "use o link que enviei" ou "use o link do Google Maps" se nao houver links no contexto.

CONTEXTO DISPONIVEL:
%s

%s

PERGUNTA DO USUARIO:
%s

IMPORTANTE SOBRE O CONTEXTO DA CONVERSA:
- Se houver um "HISTORICO DA CONVERSA" acima, voce DEVE considerar as mensagens anteriores para manter a continuidade.
- Use o historico para entender o que o usuario ja perguntou e o que voce ja respondeu.
- Se o usuario fizer uma pergunta relacionada a algo que ja foi discutido, referencie o contexto anterior de forma natural.
- Mantenha a consistencia: se voce ja mencionou algo antes, nao contradiga ou repita desnecessariamente.
- Se o usuario perguntar sobre algo que ja foi explicado, voce pode fazer uma referencia breve ao que ja foi dito.

Responda de forma clara, calma e objetiva, ajudando a pessoa a dar o proximo passo com seguranca.
`

// buildPrompt assembles the final model prompt from the document context,
// the formatted conversation history, and the question.
func buildPrompt(contextText, history, utterance string) string {
	if strings.TrimSpace(contextText) == "" {
		contextText = "Nenhuma informação encontrada nos documentos."
	}
	return fmt.Sprintf(basePrompt, contextText, history, utterance)
}

// buildProfileBlock renders the known profile fields, the fields still
// missing, and the recent message window as prompt context.
func buildProfileBlock(p profile.Profile, recent []string) string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, "Nome: "+p.Name)
	}
	if p.Locale != "" {
		parts = append(parts, "Localidade: "+p.Locale)
	}
	if p.Role != "" {
		parts = append(parts, "Situação: "+p.Role)
	}
	if p.Axis != "" {
		parts = append(parts, "Assunto: "+p.Axis)
	}

	var block string
	if len(parts) > 0 {
		block = "INFORMAÇÕES DO USUÁRIO:\n- " + strings.Join(parts, "\n- ") + "\n\n"
	}

	var missing []string
	if p.Locale == "" {
		missing = append(missing, "Localidade não informada (responder de forma geral).")
	}
	if p.Role == "" {
		missing = append(missing, "Papel não informado (se é para você ou dependente).")
	}
	if p.Name == "" {
		missing = append(missing, "Nome não informado.")
	}
	if len(missing) > 0 {
		block += "DADOS FALTANTES PARA PERSONALIZAR MELHOR:\n- " + strings.Join(missing, "\n- ") + "\n\n"
	}

	if len(recent) > 0 {
		block += "HISTÓRICO RECENTE (últimas 5 mensagens):\n- " + strings.Join(recent, "\n- ") + "\n\n"
	}

	return block
}

// formatHistory renders past turns for the prompt, newest last. When the
// character budget is tight the newest turns win, so the model always sees
// the most recent exchange.
func formatHistory(turns []session.Turn, maxTurns, maxChars int) string {
	if len(turns) == 0 {
		return ""
	}
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	var kept []string
	total := 0
	for i := len(turns) - 1; i >= 0; i-- {
		entry := fmt.Sprintf("Usuario: %s\nAssistente: %s\n---\n", turns[i].Question, turns[i].Answer)
		if maxChars > 0 && total+len(entry) > maxChars && len(kept) > 0 {
			break
		}
		kept = append(kept, entry)
		total += len(entry)
	}

	var b strings.Builder
	b.WriteString("HISTORICO DA CONVERSA (mensagens anteriores):\n")
	for i := len(kept) - 1; i >= 0; i-- {
		b.WriteString(kept[i])
	}
	return b.String()
}
