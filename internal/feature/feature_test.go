package feature

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

func fptr(v float64) *float64 { return &v }

func TestColumnsStableOrder(t *testing.T) {
	s := DefaultSchema()
	cols := s.Columns()

	assert.Equal(t, "tech_python", cols[0])
	assert.Equal(t, "exp_years", cols[len(cols)-1])
	// Calling twice yields the identical slice.
	assert.Equal(t, cols, s.Columns())

	want := len(s.Technologies) + len(s.Locations) + len(s.Contracts) + len(s.RemoteModes) + len(s.Experience) + 1
	assert.Len(t, cols, want)
}

func TestSlugSymbolNames(t *testing.T) {
	assert.Equal(t, "csharp", slug("C#"))
	assert.Equal(t, "cpp", slug("C++"))
	assert.Equal(t, "vuejs", slug("Vue.js"))
	assert.Equal(t, "spring_boot", slug("Spring Boot"))
	assert.Equal(t, "full_time", slug("full-time"))
	assert.Equal(t, "las_palmas", slug("las palmas"))
}

func TestExtractExcludesUnlabeled(t *testing.T) {
	s := DefaultSchema()
	records := []model.JobRecord{
		{Title: "Backend Dev", SalaryMin: fptr(40000), SalaryMax: fptr(50000), Technologies: model.NewTechSet("Python")},
		{Title: "Frontend Dev", SalaryMin: fptr(35000), SalaryMax: fptr(45000), Technologies: model.NewTechSet("JavaScript")},
		{Title: "Unknown"},
	}

	vectors, excluded := Extract(records, s)

	assert.Len(t, vectors, 2)
	assert.Equal(t, 1, excluded)
	assert.Equal(t, 45000.0, vectors[0].Label)
	assert.Equal(t, 40000.0, vectors[1].Label)
}

func TestExtractEncodesFlags(t *testing.T) {
	s := DefaultSchema()
	rec := model.JobRecord{
		Title:        "Dev",
		SalaryMin:    fptr(30000),
		LocationCat:  "madrid",
		Contract:     model.ContractFullTime,
		Remote:       model.RemoteHybrid,
		Experience:   model.ExperienceSenior,
		ExpYears:     fptr(6),
		Technologies: model.NewTechSet("Python", "Docker"),
	}

	vectors, excluded := Extract([]model.JobRecord{rec}, s)
	require.Len(t, vectors, 1)
	assert.Zero(t, excluded)

	v := vectors[0]
	idx := columnIndex(t, v.Columns)

	assert.Equal(t, 1.0, v.Values[idx["tech_python"]])
	assert.Equal(t, 1.0, v.Values[idx["tech_docker"]])
	assert.Equal(t, 0.0, v.Values[idx["tech_go"]])
	assert.Equal(t, 1.0, v.Values[idx["loc_madrid"]])
	assert.Equal(t, 0.0, v.Values[idx["loc_barcelona"]])
	assert.Equal(t, 1.0, v.Values[idx["contract_full_time"]])
	assert.Equal(t, 1.0, v.Values[idx["remote_hybrid"]])
	assert.Equal(t, 1.0, v.Values[idx["exp_senior"]])
	assert.Equal(t, 6.0, v.Values[idx["exp_years"]])
}

func TestExtractUnknownExperienceBucket(t *testing.T) {
	s := DefaultSchema()
	rec := model.JobRecord{Title: "Dev", SalaryMin: fptr(30000), Experience: model.ExperienceUnknown}

	vectors, _ := Extract([]model.JobRecord{rec}, s)
	require.Len(t, vectors, 1)

	idx := columnIndex(t, vectors[0].Columns)
	assert.Equal(t, 1.0, vectors[0].Values[idx["exp_unknown"]])
	assert.Equal(t, 0.0, vectors[0].Values[idx["exp_years"]])
}

func TestSchemaArtifactRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "feature_schema.yaml")

	s := DefaultSchema()
	require.NoError(t, s.Save(path))

	loaded, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, s.Version, loaded.Version)
	assert.Equal(t, s.Columns(), loaded.Columns())
}

func TestLoadSchemaMissingArtifact(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))

	var missing *model.MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Path, "nope.yaml")
}

func columnIndex(t *testing.T, cols []string) map[string]int {
	t.Helper()
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx
}

func TestEncodeCanonicalizedContractSetsOneFlag(t *testing.T) {
	s := DefaultSchema()
	contract, ok := normalize.CanonicalContract("indefinido")
	require.True(t, ok)

	v := Encode(model.JobRecord{
		Title:      "Backend Developer",
		Contract:   contract,
		Remote:     model.RemoteUnknown,
		Experience: model.ExperienceUnknown,
	}, s)

	sum := 0.0
	for i, col := range v.Columns {
		if strings.HasPrefix(col, "contract_") {
			sum += v.Values[i]
		}
	}
	assert.Equal(t, 1.0, sum)
}
