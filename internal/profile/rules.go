package profile

import (
	"regexp"
	"strings"
)

// Full state names, checked before abbreviations so "rio grande do sul"
// never matches the "rs" token rule. The scan is longest-match so "paraiba"
// beats its prefix "para".
var stateNames = []string{
	"acre", "alagoas", "amapa", "amazonas", "bahia", "ceara",
	"distrito federal", "espirito santo", "goias", "maranhao",
	"mato grosso", "mato grosso do sul", "minas gerais", "para", "paraiba",
	"parana", "pernambuco", "piaui", "rio de janeiro", "rio grande do norte",
	"rio grande do sul", "rondonia", "roraima", "santa catarina",
	"sao paulo", "sergipe", "tocantins",
}

var stateAbbrevs = map[string]bool{
	"ac": true, "al": true, "ap": true, "am": true, "ba": true, "ce": true,
	"df": true, "es": true, "go": true, "ma": true, "mt": true, "ms": true,
	"mg": true, "pa": true, "pb": true, "pr": true, "pe": true, "pi": true,
	"rj": true, "rn": true, "rs": true, "ro": true, "rr": true, "sc": true,
	"sp": true, "se": true, "to": true,
}

var ageRe = regexp.MustCompile(`(\d{1,3})`)

// clauses splits an utterance on commas and newlines, trimming each part
// and dropping empties.
func clauses(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// FromUtterance applies the deterministic extraction rules to a single
// utterance and returns a partial profile with whatever could be inferred.
// It never consults a model and never fails.
func FromUtterance(text string) Profile {
	var p Profile
	parts := clauses(text)
	if len(parts) == 0 {
		return p
	}
	lower := strings.ToLower(text)

	// Name: "me chamo X" / "sou X" capture the trailing token,
	// "meu nome é X" captures the token after "nome".
	if strings.Contains(lower, "me chamo") || strings.HasPrefix(lower, "sou ") {
		tokens := strings.Fields(text)
		if len(tokens) >= 2 {
			p.Name = tokens[len(tokens)-1]
		}
	}
	if strings.Contains(lower, "meu nome") {
		cleaned := strings.NewReplacer("é", " ", "É", " ").Replace(text)
		tokens := strings.Fields(cleaned)
		for i, t := range tokens {
			if strings.ToLower(t) == "nome" && i+1 < len(tokens) {
				p.Name = tokens[i+1]
				break
			}
		}
	}

	// Age: first 1-3 digit run across clauses, accepted only in (0, 130).
	for _, part := range parts {
		m := ageRe.FindString(part)
		if m == "" {
			continue
		}
		age := 0
		for _, d := range m {
			age = age*10 + int(d-'0')
		}
		if age > 0 && age < 130 {
			p.Age = age
			break
		}
	}

	// Gender: fixed vocabulary, priority order. First match wins.
	switch {
	case strings.Contains(lower, "mulher") || strings.Contains(lower, "feminino"):
		p.Gender = "mulher"
	case strings.Contains(lower, "homem") || strings.Contains(lower, "masculino"):
		p.Gender = "homem"
	case strings.Contains(lower, "trans"):
		p.Gender = "trans"
	case strings.Contains(lower, "nb") || strings.Contains(lower, "nao bin") || strings.Contains(lower, "não bin"):
		p.Gender = "nao-binario"
	}

	// Role: keyword membership, priority order.
	switch {
	case strings.Contains(lower, "mãe") || strings.Contains(lower, "mae"):
		p.Role = RoleMae
	case strings.Contains(lower, "pai"):
		p.Role = RolePai
	case strings.Contains(lower, "respons"):
		p.Role = RoleResponsavel
	case strings.Contains(lower, "idos"):
		p.Role = RoleIdoso
	}

	p.Locale = localeFromText(text, lower)

	// Problem: last two clauses joined, or the whole utterance.
	if len(parts) >= 2 {
		p.Problem = strings.Join(parts[len(parts)-2:], ", ")
	} else {
		p.Problem = text
	}

	return p
}

// localeFromText normalizes brasilia to "distrito federal", then scans full
// state names, then individual tokens against the abbreviation set.
func localeFromText(text, lower string) string {
	if strings.Contains(lower, "brasilia") || strings.Contains(lower, "brasília") {
		return "distrito federal"
	}
	best := ""
	for _, estado := range stateNames {
		if strings.Contains(lower, estado) && len(estado) > len(best) {
			best = estado
		}
	}
	if best != "" {
		return best
	}
	for _, t := range strings.Fields(text) {
		t = strings.ToLower(strings.Trim(t, ",. "))
		if stateAbbrevs[t] {
			return t
		}
	}
	return ""
}

// Short-answer role indicators. The responsavel list takes priority when
// both match ("para meu filho" contains "para mim"-free family reference).
var (
	titularIndicators = []string{
		"pra mim", "para mim", "é pra mim", "é para mim", "para mim mesmo",
		"pra mim mesmo", "sou eu", "sou eu mesmo", "eu mesmo", "eu",
		"para eu", "pra eu", "para si", "pra si",
	}
	responsavelIndicators = []string{
		"filho", "filha", "dependente", "para meu filho", "para minha filha",
		"para alguém", "para alguem", "para outro", "para outra pessoa",
	}
)

// RoleFromShortAnswer tests an utterance against the explicit titular and
// responsavel indicator lists. Returns the matched role or "" when neither
// list matches (callers then fall through to the model classifier).
func RoleFromShortAnswer(text string) string {
	lower := strings.ToLower(text)
	for _, ind := range responsavelIndicators {
		if strings.Contains(lower, ind) {
			return RoleResponsavel
		}
	}
	for _, ind := range titularIndicators {
		if strings.Contains(lower, ind) {
			return RoleTitular
		}
	}
	return ""
}

// FillShortAnswer applies the cheap short-answer heuristics that do not need
// a model: a single alphabetic token is taken as a bare name, and locale is
// filled from brasilia normalization or a state abbreviation token. Role is
// handled separately (RoleFromShortAnswer plus the model classifier) so the
// orchestrator controls that precedence.
func FillShortAnswer(text string, p *Profile) {
	trimmed := strings.TrimSpace(text)
	if p.Name == "" {
		tokens := strings.Fields(trimmed)
		if len(tokens) == 1 && isAlpha(tokens[0]) {
			p.Name = tokens[0]
		}
	}
	if p.Locale == "" {
		p.Locale = localeFromShortAnswer(trimmed, strings.ToLower(trimmed))
	}
}

// localeFromShortAnswer checks only brasilia and bare state abbreviation
// tokens. Full state names are the free-text pass's job, not the
// short-answer one.
func localeFromShortAnswer(text, lower string) string {
	if strings.Contains(lower, "brasilia") || strings.Contains(lower, "brasília") {
		return "distrito federal"
	}
	for _, t := range strings.Fields(text) {
		t = strings.ToLower(strings.Trim(t, ",. "))
		if stateAbbrevs[t] {
			return t
		}
	}
	return ""
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= 'À' && r <= 'ÿ' && r != '×' && r != '÷')) {
			return false
		}
	}
	return true
}
