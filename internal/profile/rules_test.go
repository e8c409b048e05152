package profile

import "testing"

func TestFromUtteranceName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"me chamo", "me chamo Joana", "Joana"},
		{"sou prefix", "sou Carlos", "Carlos"},
		{"meu nome e", "meu nome é Maria", "Maria"},
		{"meu nome without verb", "meu nome Pedro", "Pedro"},
		{"no trigger", "quero tirar cpf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUtterance(tt.text)
			if got.Name != tt.want {
				t.Errorf("FromUtterance(%q).Name = %q, want %q", tt.text, got.Name, tt.want)
			}
		})
	}
}

func TestFromUtteranceAge(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain age", "tenho 34 anos", 34},
		{"age in second clause", "sou de sp, tenho 61 anos", 61},
		{"rejects 130 and above", "tenho 130 anos", 0},
		{"rejects zero", "tenho 0 anos", 0},
		{"no digits", "quero tirar rg", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUtterance(tt.text)
			if got.Age != tt.want {
				t.Errorf("FromUtterance(%q).Age = %d, want %d", tt.text, got.Age, tt.want)
			}
		})
	}
}

func TestFromUtteranceGender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"mulher", "sou mulher", "mulher"},
		{"feminino", "genero feminino", "mulher"},
		{"homem", "sou homem", "homem"},
		{"trans", "sou trans", "trans"},
		{"mulher wins over trans", "sou mulher trans", "mulher"},
		{"nao binario", "sou não binário", "nao-binario"},
		{"none", "quero cpf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUtterance(tt.text)
			if got.Gender != tt.want {
				t.Errorf("FromUtterance(%q).Gender = %q, want %q", tt.text, got.Gender, tt.want)
			}
		})
	}
}

func TestFromUtteranceRole(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"mae with accent", "sou mãe de dois", RoleMae},
		{"pai", "sou pai solteiro", RolePai},
		{"responsavel stem", "sou responsável pela minha avó", RoleResponsavel},
		{"idoso stem", "sou idosa", RoleIdoso},
		{"none", "quero tirar passaporte", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUtterance(tt.text)
			if got.Role != tt.want {
				t.Errorf("FromUtterance(%q).Role = %q, want %q", tt.text, got.Role, tt.want)
			}
		})
	}
}

func TestFromUtteranceLocale(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"brasilia normalizes", "moro em Brasilia", "distrito federal"},
		{"brasilia with accent", "moro em Brasília", "distrito federal"},
		{"full state name", "moro na bahia", "bahia"},
		{"longest match beats prefix", "sou da paraiba", "paraiba"},
		{"compound state", "rio grande do sul", "rio grande do sul"},
		{"abbreviation token", "moro em SP", "sp"},
		{"abbreviation with punctuation", "sou de MG.", "mg"},
		{"no locale", "quero tirar cpf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUtterance(tt.text)
			if got.Locale != tt.want {
				t.Errorf("FromUtterance(%q).Locale = %q, want %q", tt.text, got.Locale, tt.want)
			}
		})
	}
}

func TestFromUtteranceProblem(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single clause is whole text", "quero tirar cpf", "quero tirar cpf"},
		{"last two clauses joined", "sou Maria, moro em sp, meu bolsa parou", "moro em sp, meu bolsa parou"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUtterance(tt.text)
			if got.Problem != tt.want {
				t.Errorf("FromUtterance(%q).Problem = %q, want %q", tt.text, got.Problem, tt.want)
			}
		})
	}
}

func TestRoleFromShortAnswer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"titular pra mim", "é pra mim", RoleTitular},
		{"titular sou eu", "sou eu mesmo", RoleTitular},
		{"responsavel filho", "para meu filho", RoleResponsavel},
		{"responsavel wins when both match", "para mim e para meu filho", RoleResponsavel},
		{"inconclusive", "amanhã de manhã", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFromShortAnswer(tt.text); got != tt.want {
				t.Errorf("RoleFromShortAnswer(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFillShortAnswer(t *testing.T) {
	t.Run("bare name", func(t *testing.T) {
		var p Profile
		FillShortAnswer("Joana", &p)
		if p.Name != "Joana" {
			t.Errorf("Name = %q, want %q", p.Name, "Joana")
		}
	})

	t.Run("two tokens are not a name", func(t *testing.T) {
		var p Profile
		FillShortAnswer("Joana Silva", &p)
		if p.Name != "" {
			t.Errorf("Name = %q, want empty", p.Name)
		}
	})

	t.Run("digits are not a name", func(t *testing.T) {
		var p Profile
		FillShortAnswer("1234", &p)
		if p.Name != "" {
			t.Errorf("Name = %q, want empty", p.Name)
		}
	})

	t.Run("locale from abbreviation", func(t *testing.T) {
		var p Profile
		FillShortAnswer("sp", &p)
		if p.Locale != "sp" {
			t.Errorf("Locale = %q, want %q", p.Locale, "sp")
		}
	})

	t.Run("locale from brasilia", func(t *testing.T) {
		var p Profile
		FillShortAnswer("Brasília", &p)
		if p.Locale != "distrito federal" {
			t.Errorf("Locale = %q, want %q", p.Locale, "distrito federal")
		}
	})

	t.Run("full state name left to the free-text pass", func(t *testing.T) {
		var p Profile
		FillShortAnswer("moro na bahia", &p)
		if p.Locale != "" {
			t.Errorf("Locale = %q, want empty (short answers only scan siglas)", p.Locale)
		}
	})

	t.Run("does not overwrite existing name", func(t *testing.T) {
		p := Profile{Name: "Carlos"}
		FillShortAnswer("Joana", &p)
		if p.Name != "Carlos" {
			t.Errorf("Name = %q, want %q", p.Name, "Carlos")
		}
	})
}
