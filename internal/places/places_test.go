package places

import (
	"strings"
	"testing"
)

func TestWantsLocation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"onde fica a receita federal?", true},
		{"me manda o endereço do detran", true},
		{"qual o endereço do poupatempo", true},
		{"tem algum posto mais perto?", true},
		{"onde ta o cartorio", true},
		{"locazação do inss", true},
		{"como tirar cpf", false},
		{"onde tirar o rg", false},
		{"quais documentos preciso", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := WantsLocation(tt.text); got != tt.want {
				t.Errorf("WantsLocation(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectOrgs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"direct mention", "onde fica a receita federal", []string{"receita_federal"}},
		{"cpf implies receita", "endereço para tirar cpf", []string{"receita_federal"}},
		{"rg direct term", "onde fica o lugar de tirar rg", []string{"instituto_identificacao"}},
		{"inferred detran", "onde renovo a cnh", []string{"detran"}},
		{"inferred caixa", "onde resolvo o bolsa familia", []string{"caixa_economica"}},
		{"nothing", "me ajuda com uma coisa", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectOrgs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("DetectOrgs(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DetectOrgs(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectOrgsStableOrder(t *testing.T) {
	text := "caixa ou receita, onde fica?"
	first := DetectOrgs(text)
	for i := 0; i < 10; i++ {
		again := DetectOrgs(text)
		if strings.Join(again, ",") != strings.Join(first, ",") {
			t.Fatalf("DetectOrgs order changed: %v then %v", first, again)
		}
	}
	if len(first) != 2 || first[0] != "receita_federal" || first[1] != "caixa_economica" {
		t.Errorf("DetectOrgs(%q) = %v, want table order", text, first)
	}
}

func TestExtractLocale(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"brasilia", "onde fica a receita em brasília", "Brasília, DF"},
		{"full state", "moro no maranhão", "MA"},
		{"city and state", "detran em fortaleza, ceara", "Fortaleza, CE"},
		{"compound state wins", "sou do mato grosso do sul", "MS"},
		{"bare sigla token", "receita federal em SP", "SP"},
		{"capital slip", "sou de são maranhão", "São Luís, MA"},
		{"none", "como tirar cpf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLocale(tt.text); got != tt.want {
				t.Errorf("ExtractLocale(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMapsURL(t *testing.T) {
	t.Run("sigla expands to state name", func(t *testing.T) {
		got := MapsURL("detran", "MA")
		want := "https://www.google.com/maps/search/?api=1&query=Detran+Maranh%C3%A3o+Brasil"
		if got != want {
			t.Errorf("MapsURL() = %q, want %q", got, want)
		}
	})

	t.Run("city and state pass through", func(t *testing.T) {
		got := MapsURL("receita_federal", "Fortaleza, CE")
		if !strings.Contains(got, "query=Receita+Federal+Fortaleza%2C+CE+Brasil") {
			t.Errorf("MapsURL() = %q, want city kept verbatim", got)
		}
	})

	t.Run("no locale", func(t *testing.T) {
		got := MapsURL("inss", "")
		if !strings.HasSuffix(got, "query=INSS+Brasil") {
			t.Errorf("MapsURL() = %q, want bare country query", got)
		}
	})

	t.Run("unknown org", func(t *testing.T) {
		if got := MapsURL("prefeitura", "SP"); got != "" {
			t.Errorf("MapsURL() = %q, want empty", got)
		}
	})
}

func TestResolverLinks(t *testing.T) {
	var r MapsResolver

	t.Run("forced generation for general question", func(t *testing.T) {
		links := r.Links("como tirar cpf", "bahia", true)
		if len(links) != 1 {
			t.Fatalf("Links() returned %d links, want 1", len(links))
		}
		if links[0].OrgID != "receita_federal" {
			t.Errorf("Links()[0].OrgID = %q, want %q", links[0].OrgID, "receita_federal")
		}
		if !strings.Contains(links[0].URL, "bahia") && !strings.Contains(links[0].URL, "Bahia") {
			t.Errorf("Links()[0].URL = %q, want profile locale used", links[0].URL)
		}
	})

	t.Run("not forced and no explicit request", func(t *testing.T) {
		if links := r.Links("como tirar cpf", "bahia", false); links != nil {
			t.Errorf("Links() = %v, want nil", links)
		}
	})

	t.Run("utterance locale beats profile locale", func(t *testing.T) {
		links := r.Links("onde fica o detran em fortaleza, ceara", "bahia", false)
		if len(links) != 1 {
			t.Fatalf("Links() returned %d links, want 1", len(links))
		}
		if !strings.Contains(links[0].URL, "Fortaleza") {
			t.Errorf("Links()[0].URL = %q, want Fortaleza", links[0].URL)
		}
	})
}

func TestBlock(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := Block(nil); got != "" {
			t.Errorf("Block(nil) = %q, want empty", got)
		}
	})

	t.Run("renders header and one line per link", func(t *testing.T) {
		got := Block([]Link{
			{OrgID: "detran", Name: "Detran", URL: "https://maps.example/1"},
			{OrgID: "inss", Name: "INSS", URL: "https://maps.example/2"},
		})
		if !strings.HasPrefix(got, "\n\nLINKS DO GOOGLE MAPS PARA ENCONTRAR OS ÓRGÃOS:\n") {
			t.Errorf("Block() = %q, want header prefix", got)
		}
		if !strings.Contains(got, "Detran: https://maps.example/1\n") {
			t.Errorf("Block() = %q, want Detran line", got)
		}
		if !strings.Contains(got, "INSS: https://maps.example/2\n") {
			t.Errorf("Block() = %q, want INSS line", got)
		}
	})
}
