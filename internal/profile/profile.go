// Package profile defines the per-session citizen profile and the
// deterministic rules that fill it from free-form utterances.
//
// A profile accumulates across a conversation. Fields are only ever filled
// when empty; a value already present is never downgraded by a
// lower-confidence source. The axis field is the single exception and is
// managed by the turn orchestrator (it may be replaced on an explicit
// subject change).
package profile

import "strings"

// Axis values for the coarse document-subject classification.
const (
	AxisCPF        = "CPF"
	AxisRG         = "RG"
	AxisSUS        = "SUS"
	AxisBolsa      = "BOLSA"
	AxisPassaporte = "PASSAPORTE"
	AxisGovBR      = "GOVBR"
	AxisImposto    = "IMPOSTO_RENDA"
	AxisCNPJ       = "CNPJ"
	AxisOutro      = "OUTRO"
)

// Subtrack values for the finer-grained status within an axis.
const (
	SubtrackBloqueado = "bloqueado"
	SubtrackPendencia = "pendencia"
	SubtrackEmissao   = "emissao"
	SubtrackSegundaVia = "segunda_via"
)

// Role values.
const (
	RoleMae         = "mae"
	RolePai         = "pai"
	RoleResponsavel = "responsavel"
	RoleIdoso       = "idoso"
	RoleTitular     = "titular"
)

// Profile holds accumulated facts about the citizen. The zero value of every
// field means "unknown". A Profile is also used as a partial result from the
// extraction stages; Merge fills only what is still empty.
type Profile struct {
	Name     string `json:"nome,omitempty"`
	Age      int    `json:"idade,omitempty"`
	Gender   string `json:"genero,omitempty"`
	Role     string `json:"papel,omitempty"`
	Locale   string `json:"localidade,omitempty"`
	Problem  string `json:"problema,omitempty"`
	Intent   string `json:"intent,omitempty"`
	Axis     string `json:"eixo,omitempty"`
	Subtrack string `json:"subtrilha,omitempty"`
}

// Merge fills empty fields of p with values from src. Set fields are never
// overwritten, which gives the per-field precedence order: whatever wrote
// first wins. Axis and subtrack follow the same fill-only-empty rule here;
// explicit axis replacement on subject change is the orchestrator's job.
func (p *Profile) Merge(src Profile) {
	if p.Name == "" {
		p.Name = src.Name
	}
	if p.Age == 0 {
		p.Age = src.Age
	}
	if p.Gender == "" {
		p.Gender = src.Gender
	}
	if p.Role == "" {
		p.Role = src.Role
	}
	if p.Locale == "" {
		p.Locale = src.Locale
	}
	if p.Problem == "" {
		p.Problem = src.Problem
	}
	if p.Intent == "" {
		p.Intent = src.Intent
	}
	if p.Axis == "" {
		p.Axis = src.Axis
	}
	if p.Subtrack == "" {
		p.Subtrack = src.Subtrack
	}
}

// Complete reports whether every field the extraction stages try to fill
// (name, gender, role, age, problem, locale) is already set. When true, the
// extraction stages are skipped entirely.
func (p Profile) Complete() bool {
	return p.Name != "" && p.Gender != "" && p.Role != "" &&
		p.Age != 0 && p.Problem != "" && p.Locale != ""
}

// Summary renders the profile as comma-joined key=value tokens for the
// "meus dados" reply. Only set fields appear. Deterministic: identical
// profiles always render identically.
func (p Profile) Summary() string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, "nome="+p.Name)
	}
	if p.Locale != "" {
		parts = append(parts, "estado="+p.Locale)
	}
	if p.Role != "" {
		parts = append(parts, "para="+p.Role)
	}
	if p.Intent != "" {
		parts = append(parts, "assunto="+p.Intent)
	}
	if p.Problem != "" {
		parts = append(parts, "pedido="+p.Problem)
	}
	if p.Axis != "" {
		parts = append(parts, "eixo="+p.Axis)
	}
	if p.Subtrack != "" {
		parts = append(parts, "subtrilha="+p.Subtrack)
	}
	if len(parts) == 0 {
		return "ainda não tenho dados suficientes."
	}
	return strings.Join(parts, ", ")
}
