package intent

import (
	"strings"
	"testing"

	"github.com/guiacidadao/guia/internal/profile"
)

func TestSmalltalk(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain greeting", "oi", GreetingReply},
		{"greeting with accent", "Olá, tudo bem?", GreetingReply},
		{"bom dia", "bom dia", GreetingReply},
		{"greeting with subject falls through", "oi, como tiro cpf?", ""},
		{"thanks", "obrigado!", ThanksReply},
		{"valeu", "valeu demais", ThanksReply},
		{"question is not smalltalk", "como tirar passaporte", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Smalltalk(tt.text); got != tt.want {
				t.Errorf("Smalltalk(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsClosing(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"só isso", true},
		{"so isso", true},
		{"mais nada", true},
		{"acabou?", true},
		{"Só Isso", true},
		{"só isso mesmo", false},
		{"quero mais", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsClosing(tt.text); got != tt.want {
				t.Errorf("IsClosing(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyAxis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"cnpj beats company talk", "quero abrir cnpj", profile.AxisCNPJ},
		{"cpf", "meu cpf está bloqueado", profile.AxisCPF},
		{"rg", "preciso do rg", profile.AxisRG},
		{"identidade", "carteira de identidade", profile.AxisRG},
		{"cin", "quero a cin", profile.AxisRG},
		{"sus", "cartão do sus", profile.AxisSUS},
		{"bolsa", "meu bolsa parou", profile.AxisBolsa},
		{"auxilio", "auxilio cortado", profile.AxisBolsa},
		{"cadunico", "atualizar cadunico", profile.AxisBolsa},
		{"passaporte", "tirar passaporte", profile.AxisPassaporte},
		{"govbr", "conta gov.br", profile.AxisGovBR},
		{"imposto", "declarar imposto", profile.AxisImposto},
		{"irpf", "irpf atrasado", profile.AxisImposto},
		{"outro", "quero falar de futebol", profile.AxisOutro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAxis(tt.text); got != tt.want {
				t.Errorf("ClassifyAxis(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifySubtrack(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bloqueado", "meu bolsa foi bloqueado", profile.SubtrackBloqueado},
		{"cortado", "cortaram meu auxilio", profile.SubtrackBloqueado},
		{"parou", "o pagamento parou", profile.SubtrackBloqueado},
		{"pendencia", "tem pendência no cadastro", profile.SubtrackPendencia},
		{"divergencia", "deu divergência de dados", profile.SubtrackPendencia},
		{"emissao", "quero tirar a primeira via", profile.SubtrackEmissao},
		{"emitir", "como emitir o documento", profile.SubtrackEmissao},
		{"segunda via", "preciso da 2a via", profile.SubtrackSegundaVia},
		{"renovar", "renovar meu passaporte", profile.SubtrackSegundaVia},
		{"none", "como funciona", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySubtrack(tt.text); got != tt.want {
				t.Errorf("ClassifySubtrack(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestHasClearSubject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"subject keyword", "cpf", true},
		{"keyword in sentence", "e o sus?", true},
		{"three tokens", "como faço isso", true},
		{"two non-ack tokens", "quero tirar", true},
		{"single ack", "sim", false},
		{"single ack ok", "ok", false},
		{"two acks", "sim ok", false},
		{"ack plus word", "sim quero", true},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasClearSubject(tt.text); got != tt.want {
				t.Errorf("HasClearSubject(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestWantsSubjectChange(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"quero falar de outro assunto", true},
		{"agora outro tema", true},
		{"vou mudar de assunto", true},
		{"continua no mesmo assunto", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := WantsSubjectChange(tt.text); got != tt.want {
				t.Errorf("WantsSubjectChange(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFixedAnswer(t *testing.T) {
	t.Run("bolsa familia documents", func(t *testing.T) {
		got := FixedAnswer("Quais documentos preciso para bolsa familia?")
		if !strings.Contains(got, "CRAS") {
			t.Errorf("FixedAnswer() = %q, want CRAS guidance", got)
		}
	})

	t.Run("novo rg", func(t *testing.T) {
		got := FixedAnswer("como tirar o novo rg")
		if !strings.Contains(got, "Carteira de Identidade Nacional") {
			t.Errorf("FixedAnswer() = %q, want CIN guidance", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if got := FixedAnswer("como declarar imposto"); got != "" {
			t.Errorf("FixedAnswer() = %q, want empty", got)
		}
	})
}
