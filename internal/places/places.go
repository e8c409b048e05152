// Package places maps document subjects to the public service offices that
// handle them and builds Google Maps search links for those offices. All
// detection is deterministic keyword work; no network calls are made, the
// links are handed to the citizen as-is.
package places

import (
	"net/url"
	"strings"
)

// Org is a public service office the assistant can point citizens to.
// Terms are matched as substrings of the lowered utterance.
type Org struct {
	ID    string
	Name  string
	terms []string
}

// orgs is ordered. Detection walks it front to back so output order is
// stable across runs for the same utterance.
var orgs = []Org{
	{
		ID:    "receita_federal",
		Name:  "Receita Federal",
		terms: []string{"receita federal", "receita", "rfb", "cpf", "imposto de renda"},
	},
	{
		ID:    "detran",
		Name:  "Detran",
		terms: []string{"detran", "cnh", "carteira de motorista", "habilitacao"},
	},
	{
		ID:    "poupatempo",
		Name:  "Poupatempo",
		terms: []string{"poupatempo", "poupa tempo", "posto de atendimento"},
	},
	{
		ID:    "instituto_identificacao",
		Name:  "Instituto de Identificação",
		terms: []string{"instituto de identificacao", "instituto identificacao", "rg", "identidade", "cin", "viva"},
	},
	{
		ID:    "policia_federal",
		Name:  "Polícia Federal",
		terms: []string{"policia federal", "pf", "passaporte"},
	},
	{
		ID:    "inss",
		Name:  "INSS",
		terms: []string{"inss", "previdencia", "aposentadoria", "beneficio"},
	},
	{
		ID:    "cartorio",
		Name:  "Cartório",
		terms: []string{"cartorio", "cartório", "certidao", "certidão", "registro civil"},
	},
	{
		ID:    "caixa_economica",
		Name:  "Caixa Econômica Federal",
		terms: []string{"caixa economica", "caixa", "cef", "bolsa familia", "cadunico"},
	},
}

var orgByID = func() map[string]Org {
	m := make(map[string]Org, len(orgs))
	for _, o := range orgs {
		m[o.ID] = o
	}
	return m
}()

// Explicit location request phrases, matched against the raw lowered text.
var locationPhrases = []string{
	"me manda", "me envie", "me mostra", "manda a", "envie a", "mostra a",
	"localização", "localizacao", "endereço", "endereco",
	"onde fica", "onde está", "qual o endereço", "qual endereço",
	"próximo", "proximo", "mais próximo", "mais proximo", "perto",
	"mais perto", "unidade mais", "posto mais", "agência mais", "agencia mais",
	"onde tem", "onde encontrar", "local de", "lugar de",
	"onde posso ir", "onde devo ir",
}

// Extra stems matched only against the diacritics-stripped text. These catch
// typos like "locazação" and bare "onde ta".
var locationStems = []string{
	"localiza", "localiz", "locaz", "loca", "onde fica", "onde esta", "onde ta",
}

// WantsLocation reports whether the utterance explicitly asks where to go.
// It is deliberately restrictive: "onde tirar cpf" is a general question and
// does not count, "onde fica a receita" does.
func WantsLocation(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range locationPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	stripped := stripDiacritics(lower)
	for _, p := range locationPhrases {
		if strings.Contains(stripped, stripDiacritics(p)) {
			return true
		}
	}
	for _, s := range locationStems {
		if strings.Contains(stripped, s) {
			return true
		}
	}
	return false
}

// DetectOrgs returns the IDs of offices mentioned in the utterance, in table
// order. When nothing is mentioned directly it falls back to inference from
// the document subject.
func DetectOrgs(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, o := range orgs {
		for _, term := range o.terms {
			if strings.Contains(lower, term) {
				found = append(found, o.ID)
				break
			}
		}
	}
	if len(found) > 0 {
		return found
	}
	return inferOrgs(lower)
}

// inferOrgs maps bare document subjects to the offices that handle them.
func inferOrgs(lower string) []string {
	switch {
	case strings.Contains(lower, "cpf"), strings.Contains(lower, "imposto"):
		return []string{"receita_federal"}
	case strings.Contains(lower, "rg"), strings.Contains(lower, "identidade"), strings.Contains(lower, "cin"):
		return []string{"instituto_identificacao", "poupatempo"}
	case strings.Contains(lower, "cnh"), strings.Contains(lower, "habilitacao"):
		return []string{"detran"}
	case strings.Contains(lower, "passaporte"):
		return []string{"policia_federal"}
	case strings.Contains(lower, "bolsa"), strings.Contains(lower, "cadunico"):
		return []string{"caixa_economica"}
	case strings.Contains(lower, "certidao"), strings.Contains(lower, "certidão"):
		return []string{"cartorio"}
	}
	return nil
}

// MapsURL builds a Google Maps search link for the office in the given
// locale. A two-letter locale is expanded to the full state name, brasilia
// variants become "Brasília, DF" upstream. Unknown org IDs yield "".
func MapsURL(orgID, locale string) string {
	org, ok := orgByID[orgID]
	if !ok {
		return ""
	}
	query := org.Name
	if locale = strings.TrimSpace(locale); locale != "" {
		if len(locale) == 2 {
			if full, ok := stateBySigla[strings.ToUpper(locale)]; ok {
				locale = full
			}
		}
		query += " " + locale
	}
	query += " Brasil"
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

// Link is one office suggestion rendered into the answer context.
type Link struct {
	OrgID string `json:"orgao"`
	Name  string `json:"nome"`
	URL   string `json:"link"`
}

// Resolver produces office map links for an utterance. The production
// implementation is MapsResolver; tests substitute their own.
type Resolver interface {
	Links(utterance, profileLocale string, force bool) []Link
}

// MapsResolver implements Resolver with the static office table and Google
// Maps search URLs.
type MapsResolver struct{}

// Links detects offices in the utterance and resolves one link per office.
// Without force it only fires on an explicit location request. The locale
// comes from the utterance when present, else from the stored profile.
func (MapsResolver) Links(utterance, profileLocale string, force bool) []Link {
	if !force && !WantsLocation(utterance) {
		return nil
	}
	ids := DetectOrgs(utterance)
	if len(ids) == 0 {
		return nil
	}
	locale := ExtractLocale(utterance)
	if locale == "" {
		locale = profileLocale
	}
	links := make([]Link, 0, len(ids))
	for _, id := range ids {
		if u := MapsURL(id, locale); u != "" {
			links = append(links, Link{OrgID: id, Name: orgByID[id].Name, URL: u})
		}
	}
	return links
}

// Block renders links as the context block appended to retrieved passages.
func Block(links []Link) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nLINKS DO GOOGLE MAPS PARA ENCONTRAR OS ÓRGÃOS:\n")
	for _, l := range links {
		b.WriteString(l.Name)
		b.WriteString(": ")
		b.WriteString(l.URL)
		b.WriteString("\n")
	}
	return b.String()
}
