package places

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var siglaByState = map[string]string{
	"acre": "AC", "alagoas": "AL", "amapa": "AP", "amazonas": "AM",
	"bahia": "BA", "ceara": "CE", "distrito federal": "DF", "espirito santo": "ES",
	"goias": "GO", "maranhao": "MA", "mato grosso": "MT", "mato grosso do sul": "MS",
	"minas gerais": "MG", "para": "PA", "paraiba": "PB", "parana": "PR",
	"pernambuco": "PE", "piaui": "PI", "rio de janeiro": "RJ",
	"rio grande do norte": "RN", "rio grande do sul": "RS", "rondonia": "RO",
	"roraima": "RR", "santa catarina": "SC", "sao paulo": "SP",
	"sergipe": "SE", "tocantins": "TO",
}

var stateBySigla = map[string]string{
	"AC": "Acre", "AL": "Alagoas", "AP": "Amapá", "AM": "Amazonas",
	"BA": "Bahia", "CE": "Ceará", "DF": "Distrito Federal", "ES": "Espírito Santo",
	"GO": "Goiás", "MA": "Maranhão", "MT": "Mato Grosso", "MS": "Mato Grosso do Sul",
	"MG": "Minas Gerais", "PA": "Pará", "PB": "Paraíba", "PR": "Paraná",
	"PE": "Pernambuco", "PI": "Piauí", "RJ": "Rio de Janeiro",
	"RN": "Rio Grande do Norte", "RS": "Rio Grande do Sul", "RO": "Rondônia",
	"RR": "Roraima", "SC": "Santa Catarina", "SP": "São Paulo",
	"SE": "Sergipe", "TO": "Tocantins",
}

// Largest cities per state. Lets a link target "Fortaleza, CE" instead of
// the whole state when the citizen names the city.
var citiesBySigla = map[string][]string{
	"MA": {"São Luís", "Imperatriz", "Caxias", "Timon", "Codó"},
	"PA": {"Belém", "Ananindeua", "Marabá", "Paragominas", "Castanhal"},
	"SP": {"São Paulo", "Guarulhos", "Campinas", "São Bernardo", "Santo André"},
	"RJ": {"Rio de Janeiro", "São Gonçalo", "Duque de Caxias", "Nova Iguaçu", "Niterói"},
	"MG": {"Belo Horizonte", "Uberlândia", "Contagem", "Juiz de Fora", "Betim"},
	"RS": {"Porto Alegre", "Caxias do Sul", "Pelotas", "Canoas", "Santa Maria"},
	"PR": {"Curitiba", "Londrina", "Maringá", "Ponta Grossa", "Cascavel"},
	"BA": {"Salvador", "Feira de Santana", "Vitória da Conquista", "Camaçari", "Juazeiro"},
	"SC": {"Florianópolis", "Joinville", "Blumenau", "São José", "Chapecó"},
	"GO": {"Goiânia", "Aparecida de Goiânia", "Anápolis", "Rio Verde", "Luziânia"},
	"PE": {"Recife", "Jaboatão dos Guararapes", "Olinda", "Caruaru", "Petrolina"},
	"CE": {"Fortaleza", "Caucaia", "Juazeiro do Norte", "Maracanaú", "Sobral"},
	"PB": {"João Pessoa", "Campina Grande", "Santa Rita", "Patos", "Bayeux"},
	"AL": {"Maceió", "Arapiraca", "Rio Largo", "Palmeira dos Índios", "União dos Palmares"},
	"SE": {"Aracaju", "Nossa Senhora do Socorro", "Lagarto", "Itabaiana", "São Cristóvão"},
	"RN": {"Natal", "Mossoró", "Parnamirim", "São Gonçalo do Amarante", "Macaíba"},
	"PI": {"Teresina", "Parnaíba", "Picos", "Piripiri", "Campo Maior"},
	"TO": {"Palmas", "Araguaína", "Gurupi", "Porto Nacional", "Paraíso do Tocantins"},
}

var diacriticsStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsStripper, s)
	if err != nil {
		return s
	}
	return out
}

// ExtractLocale pulls a "Cidade, UF" or bare state sigla out of the
// utterance. Brasilia always resolves to the capital. Returns "" when no
// locale is mentioned.
func ExtractLocale(text string) string {
	lower := strings.ToLower(text)
	stripped := stripDiacritics(lower)

	if strings.Contains(stripped, "brasilia") {
		return "Brasília, DF"
	}
	// Frequent slips: the state named where the capital was meant.
	if strings.Contains(stripped, "sao maranhao") {
		return "São Luís, MA"
	}
	if strings.Contains(stripped, "sao para") {
		return "Belém, PA"
	}

	sigla, matched := "", ""
	for name, s := range siglaByState {
		if strings.Contains(stripped, name) && len(name) > len(matched) {
			sigla, matched = s, name
		}
	}
	if sigla == "" {
		for _, tok := range strings.Fields(stripped) {
			tok = strings.Trim(tok, "., ")
			if _, ok := stateBySigla[strings.ToUpper(tok)]; ok && len(tok) == 2 {
				sigla = strings.ToUpper(tok)
				break
			}
		}
	}
	if sigla == "" {
		return ""
	}

	for _, city := range citiesBySigla[sigla] {
		if strings.Contains(stripped, stripDiacritics(strings.ToLower(city))) {
			return city + ", " + sigla
		}
	}
	return sigla
}
