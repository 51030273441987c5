package feature

import (
	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// Vector is one feature-extracted record: values aligned to the schema
// columns it was built against, plus the salary label.
type Vector struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
	Label   float64   `json:"label"`
}

// Extract derives one Vector per record with a usable salary label.
// Records lacking both salary bounds are excluded and counted; missing
// experience falls into the unknown bucket rather than being dropped.
func Extract(records []model.JobRecord, s *Schema) (vectors []Vector, excluded int) {
	cols := s.Columns()

	for _, rec := range records {
		label, ok := rec.SalaryMid()
		if !ok {
			excluded++
			continue
		}
		vectors = append(vectors, Vector{
			Columns: cols,
			Values:  encode(rec, s),
			Label:   label,
		})
	}

	zap.L().Info("feature: extraction complete",
		zap.Int("vectors", len(vectors)),
		zap.Int("excluded", excluded),
		zap.String("schema_version", s.Version),
	)
	return vectors, excluded
}

// Encode builds the schema-ordered value slice for a single record,
// without requiring a label. Used at inference time.
func Encode(rec model.JobRecord, s *Schema) Vector {
	return Vector{Columns: s.Columns(), Values: encode(rec, s)}
}

func encode(rec model.JobRecord, s *Schema) []float64 {
	values := make([]float64, 0, len(s.Columns()))

	for _, t := range s.Technologies {
		values = append(values, flag(rec.HasTech(t)))
	}
	for _, l := range s.Locations {
		values = append(values, flag(rec.LocationCat == l))
	}
	for _, c := range s.Contracts {
		values = append(values, flag(string(rec.Contract) == c))
	}
	for _, r := range s.RemoteModes {
		values = append(values, flag(string(rec.Remote) == r))
	}
	for _, e := range s.Experience {
		values = append(values, flag(string(rec.Experience) == e))
	}

	years, _ := rec.ExperienceProxy()
	values = append(values, years)

	return values
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
