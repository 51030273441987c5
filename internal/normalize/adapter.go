// Package normalize maps heterogeneous raw job listings onto the
// canonical JobRecord schema.
package normalize

import (
	"strings"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// RawRecord is one unparsed row: column name to cell value, shape
// unknown until an adapter claims it.
type RawRecord map[string]string

// Fields is the canonical pre-parse shape every adapter maps onto.
// All values are still free text; the Normalizer does the parsing.
type Fields struct {
	Title       string
	Company     string
	Location    string
	Salary      string // combined salary expression, e.g. "30.000 - 40.000 € Bruto/año"
	SalaryMin   string // explicit numeric bound when the source provides one
	SalaryMax   string
	Contract    string
	Schedule    string // jornada: full/partial working hours
	Experience  string // e.g. "4-8 años"
	Level       string // e.g. "Senior"
	Description string
	Techs       string // pre-split technology list when the source has one
	Posted      string
	Source      model.Source
}

// Adapter maps one source's raw rows onto Fields. Each source gets
// exactly one adapter; the rest of the pipeline is source-agnostic.
type Adapter func(raw RawRecord) Fields

// SyntheticAdapter maps the Spanish-column synthetic offer files.
func SyntheticAdapter(raw RawRecord) Fields {
	return Fields{
		Title:       pick(raw, "titulo", "puesto", "title"),
		Company:     pick(raw, "empresa", "company"),
		Location:    pick(raw, "ubicacion", "location"),
		Salary:      pick(raw, "salario", "salary"),
		SalaryMin:   pick(raw, "salario_min"),
		SalaryMax:   pick(raw, "salario_max"),
		Contract:    pick(raw, "tipo_contrato"),
		Schedule:    pick(raw, "jornada"),
		Experience:  pick(raw, "experiencia"),
		Level:       pick(raw, "nivel"),
		Description: pick(raw, "descripcion", "description"),
		Techs:       pick(raw, "tecnologias", "requisitos"),
		Posted:      pick(raw, "fecha_publicacion"),
		Source:      model.SourceSynthetic,
	}
}

// AdzunaAdapter maps rows fetched from the Adzuna search API.
func AdzunaAdapter(raw RawRecord) Fields {
	return Fields{
		Title:       pick(raw, "title"),
		Company:     pick(raw, "company"),
		Location:    pick(raw, "location"),
		Salary:      pick(raw, "salary"),
		SalaryMin:   pick(raw, "salary_min"),
		SalaryMax:   pick(raw, "salary_max"),
		Contract:    pick(raw, "contract_type"),
		Schedule:    pick(raw, "contract_time"),
		Description: pick(raw, "description"),
		Posted:      pick(raw, "created"),
		Source:      model.SourceRealAPI,
	}
}

// JoobleAdapter maps rows fetched from the Jooble search API, which
// carries the salary as one free-text expression.
func JoobleAdapter(raw RawRecord) Fields {
	return Fields{
		Title:       pick(raw, "title"),
		Company:     pick(raw, "company"),
		Location:    pick(raw, "location"),
		Salary:      pick(raw, "salary"),
		Description: pick(raw, "snippet"),
		Posted:      pick(raw, "updated"),
		Source:      model.SourceRealAPI,
	}
}

// ForSource returns the adapter registered for a source.
func ForSource(src model.Source) Adapter {
	if src == model.SourceRealAPI {
		return AdzunaAdapter
	}
	return SyntheticAdapter
}

// pick returns the first non-empty value among the given keys.
func pick(raw RawRecord, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(raw[k]); v != "" {
			return v
		}
	}
	return ""
}
