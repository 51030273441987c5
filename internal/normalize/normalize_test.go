package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

func TestRunKeepsWellFormedDropsMalformed(t *testing.T) {
	n := New()
	rows := []RawRecord{
		{"titulo": "Backend Developer Senior", "salario": "40000 - 50000 € Bruto/año", "ubicacion": "Madrid"},
		{"titulo": "Frontend Developer", "salario": "35000 - 45000", "ubicacion": "Barcelona"},
		{"salario": "30000"}, // no title
		{"empresa": "DataMind"},
	}

	recs, rep := n.Run(rows, SyntheticAdapter)

	assert.Len(t, recs, 2)
	assert.Equal(t, 2, rep.Kept)
	assert.Equal(t, 2, rep.Dropped)
	assert.Equal(t, 2, rep.Reasons[ReasonMissingTitle])
}

func TestRunSalaryInvariant(t *testing.T) {
	n := New()
	rows := []RawRecord{
		{"titulo": "Dev", "salario": "50000 - 40000"},
		{"titulo": "Dev 2", "salario_min": "38000", "salario_max": "30000"},
	}

	recs, _ := n.Run(rows, SyntheticAdapter)
	require.Len(t, recs, 2)
	for _, r := range recs {
		require.NotNil(t, r.SalaryMin)
		require.NotNil(t, r.SalaryMax)
		assert.LessOrEqual(t, *r.SalaryMin, *r.SalaryMax)
	}
}

func TestRunKeepsRecordWithoutSalary(t *testing.T) {
	n := New()
	rows := []RawRecord{
		{"titulo": "Unknown"},
	}

	recs, rep := n.Run(rows, SyntheticAdapter)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, rep.Kept)
	assert.Nil(t, recs[0].SalaryMin)
	assert.Nil(t, recs[0].SalaryMax)
	assert.Equal(t, 1, rep.NoTech)
}

func TestOneSyntheticFull(t *testing.T) {
	n := New()
	rec, reason := n.One(Fields{
		Title:      "Desarrollador/a Python Senior",
		Company:    "TechSolutions",
		Location:   "Híbrido (Madrid)",
		Salary:     "45.000 - 60.000 € Bruto/año",
		Contract:   "Indefinido",
		Schedule:   "Completa",
		Experience: "4-8 años",
		Level:      "Senior",
		Techs:      "Python, Django, PostgreSQL, Docker",
		Posted:     "15/03/2026",
		Source:     model.SourceSynthetic,
	})

	require.Empty(t, reason)
	assert.Equal(t, "madrid", rec.LocationCat)
	assert.Equal(t, model.RemoteHybrid, rec.Remote)
	assert.Equal(t, model.ContractFullTime, rec.Contract)
	assert.Equal(t, model.ExperienceSenior, rec.Experience)
	require.NotNil(t, rec.ExpYears)
	assert.Equal(t, 6.0, *rec.ExpYears)
	require.NotNil(t, rec.SalaryMin)
	assert.Equal(t, 45000.0, *rec.SalaryMin)
	assert.Equal(t, 60000.0, *rec.SalaryMax)
	assert.Equal(t, model.TechSet{"Django", "Docker", "PostgreSQL", "Python"}, rec.Technologies)
	require.NotNil(t, rec.PostedDate)
	assert.Equal(t, 2026, rec.PostedDate.Year())
	assert.Equal(t, model.SourceSynthetic, rec.Source)
}

func TestOneAdzuna(t *testing.T) {
	n := New()
	rec, reason := n.One(AdzunaAdapter(RawRecord{
		"title":         "Data Engineer",
		"company":       "HyperData",
		"location":      "Barcelona, Cataluña",
		"salary_min":    "35000",
		"salary_max":    "48000",
		"contract_type": "permanent",
		"contract_time": "full_time",
		"description":   "Pipelines con Python, AWS y Kubernetes.",
		"created":       "2026-02-10",
	}))

	require.Empty(t, reason)
	assert.Equal(t, model.SourceRealAPI, rec.Source)
	assert.Equal(t, "barcelona", rec.LocationCat)
	assert.Equal(t, model.ContractFullTime, rec.Contract)
	assert.Equal(t, model.TechSet{"AWS", "Kubernetes", "Python"}, rec.Technologies)
	require.NotNil(t, rec.SalaryMin)
	assert.Equal(t, 35000.0, *rec.SalaryMin)
}

func TestParseContractBuckets(t *testing.T) {
	assert.Equal(t, model.ContractInternship, parseContract("Prácticas", ""))
	assert.Equal(t, model.ContractPartTime, parseContract("Indefinido", "Parcial (mañanas)"))
	assert.Equal(t, model.ContractContract, parseContract("Temporal", ""))
	assert.Equal(t, model.ContractContract, parseContract("Freelance", ""))
	assert.Equal(t, model.ContractFullTime, parseContract("Indefinido", "Completa"))
	assert.Equal(t, model.ContractUnknown, parseContract("", ""))
}

func TestParseExperiencePriority(t *testing.T) {
	// Level beats years.
	lvl, years := parseExperience("Junior", "4-8 años", "")
	assert.Equal(t, model.ExperienceJunior, lvl)
	require.NotNil(t, years)
	assert.Equal(t, 6.0, *years)

	// Years alone buckets.
	lvl, years = parseExperience("", "0-2 años", "")
	assert.Equal(t, model.ExperienceJunior, lvl)
	require.NotNil(t, years)
	assert.Equal(t, 1.0, *years)

	// Title keyword as last resort.
	lvl, years = parseExperience("", "", "Senior Backend Developer")
	assert.Equal(t, model.ExperienceSenior, lvl)
	assert.Nil(t, years)

	// No signal at all defaults to unknown.
	lvl, _ = parseExperience("", "", "Backend Developer")
	assert.Equal(t, model.ExperienceUnknown, lvl)
}

func TestParseExperienceSemisenior(t *testing.T) {
	lvl, _ := parseExperience("Semisenior", "", "")
	assert.Equal(t, model.ExperienceMid, lvl)
}

func TestParseExperienceOpenEndedYears(t *testing.T) {
	lvl, years := parseExperience("", "15+ años", "")
	assert.Equal(t, model.ExperienceSenior, lvl)
	require.NotNil(t, years)
	assert.Equal(t, 15.0, *years)
}

func assertContract(t *testing.T, text string, want model.ContractType) {
	t.Helper()
	got, ok := CanonicalContract(text)
	assert.True(t, ok, text)
	assert.Equal(t, want, got, text)
}

func TestCanonicalContract(t *testing.T) {
	assertContract(t, "", model.ContractUnknown)
	assertContract(t, "unknown", model.ContractUnknown)
	assertContract(t, "full-time", model.ContractFullTime)
	assertContract(t, "Indefinido", model.ContractFullTime)
	assertContract(t, "temporal", model.ContractContract)
	assertContract(t, "freelance", model.ContractContract)
	assertContract(t, "prácticas", model.ContractInternship)
	assertContract(t, "internship", model.ContractInternship)
	assertContract(t, "part time", model.ContractPartTime)

	_, ok := CanonicalContract("zero-hours")
	assert.False(t, ok)
}

func assertExperience(t *testing.T, text string, want model.ExperienceLevel) {
	t.Helper()
	got, ok := CanonicalExperience(text)
	assert.True(t, ok, text)
	assert.Equal(t, want, got, text)
}

func TestCanonicalExperience(t *testing.T) {
	assertExperience(t, "", model.ExperienceUnknown)
	assertExperience(t, "unknown", model.ExperienceUnknown)
	assertExperience(t, "mid", model.ExperienceMid)
	assertExperience(t, "Semisenior", model.ExperienceMid)
	assertExperience(t, "SENIOR", model.ExperienceSenior)
	assertExperience(t, "trainee", model.ExperienceJunior)

	_, ok := CanonicalExperience("ninja")
	assert.False(t, ok)
}

func TestOneScheduleRemoteWithoutLocation(t *testing.T) {
	n := New()
	rec, reason := n.One(Fields{Title: "Dev", Schedule: "Teletrabajo 100% remoto"})
	require.Empty(t, reason)
	assert.Equal(t, model.RemoteRemote, rec.Remote)

	rec, _ = n.One(Fields{Title: "Dev", Location: "Madrid", Schedule: "Jornada completa, modelo híbrido"})
	assert.Equal(t, model.RemoteHybrid, rec.Remote)

	// An explicit remote location verdict is not overwritten.
	rec, _ = n.One(Fields{Title: "Dev", Location: "Remoto (España)", Schedule: "modelo híbrido"})
	assert.Equal(t, model.RemoteRemote, rec.Remote)
}
