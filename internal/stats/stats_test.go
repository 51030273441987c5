package stats

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

func fptr(v float64) *float64 { return &v }

func labeled(loc string, salary float64, techs ...string) model.JobRecord {
	return model.JobRecord{
		Title:        "Dev",
		LocationCat:  loc,
		Contract:     model.ContractFullTime,
		SalaryMin:    fptr(salary),
		SalaryMax:    fptr(salary),
		Technologies: model.NewTechSet(techs...),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{30000, 40000, 50000, 60000})

	assert.Equal(t, 4, s.Count)
	assert.False(t, s.Insufficient)
	assert.Equal(t, 45000.0, s.Mean)
	assert.Equal(t, 30000.0, s.Min)
	assert.Equal(t, 60000.0, s.Max)
	assert.InDelta(t, 12909.9, s.StdDev, 0.1)
	assert.InDelta(t, 40000.0, s.Median, 10000.0)
}

func TestSummarizeInsufficientBelowTwo(t *testing.T) {
	s := Summarize([]float64{42000})
	assert.True(t, s.Insufficient)
	assert.Equal(t, 1, s.Count)

	s = Summarize(nil)
	assert.True(t, s.Insufficient)
	assert.Equal(t, 0, s.Count)
}

func TestSalaryByLocationSkipsUnlabeled(t *testing.T) {
	records := []model.JobRecord{
		labeled("madrid", 40000),
		labeled("madrid", 50000),
		{Title: "No salary", LocationCat: "madrid"},
	}

	groups := SalaryByLocation(records)
	require.Contains(t, groups, "madrid")
	assert.Equal(t, 2, groups["madrid"].Count)
	assert.Equal(t, 45000.0, groups["madrid"].Mean)
}

func TestSalaryByContract(t *testing.T) {
	records := []model.JobRecord{
		labeled("madrid", 40000),
		labeled("madrid", 42000),
	}
	groups := SalaryByContract(records)
	assert.Equal(t, 2, groups[string(model.ContractFullTime)].Count)
}

func TestWelchTTestDetectsDifference(t *testing.T) {
	a := []float64{52000, 54000, 55000, 56000, 58000, 53000}
	b := []float64{30000, 32000, 31000, 29000, 33000, 30000}

	res := WelchTTest(a, b)
	require.False(t, res.Insufficient)
	assert.Greater(t, res.T, 10.0)
	assert.Less(t, res.P, 0.001)
}

func TestWelchTTestNoDifference(t *testing.T) {
	a := []float64{40000, 41000, 39000, 40500}
	b := []float64{40200, 40800, 39100, 40400}

	res := WelchTTest(a, b)
	require.False(t, res.Insufficient)
	assert.Greater(t, res.P, 0.05)
}

func TestWelchTTestInsufficientGroup(t *testing.T) {
	res := WelchTTest([]float64{40000}, []float64{30000, 31000})
	assert.True(t, res.Insufficient)
	assert.Equal(t, 1, res.NA)
	assert.Equal(t, 2, res.NB)
	assert.False(t, math.IsNaN(res.T))
	assert.False(t, math.IsNaN(res.P))
}

func TestWelchTTestConstantSamples(t *testing.T) {
	res := WelchTTest([]float64{40000, 40000}, []float64{40000, 40000})
	require.False(t, res.Insufficient)
	assert.Equal(t, 0.0, res.T)
	assert.Equal(t, 1.0, res.P)

	res = WelchTTest([]float64{50000, 50000}, []float64{40000, 40000})
	assert.Equal(t, 0.0, res.P)
	assert.True(t, math.IsInf(res.T, 1))
}

func TestSalaryByTechComparison(t *testing.T) {
	records := []model.JobRecord{
		labeled("madrid", 50000, "Python"),
		labeled("madrid", 52000, "Python"),
		labeled("madrid", 30000, "JavaScript"),
		labeled("madrid", 31000, "JavaScript"),
	}

	comp := SalaryByTech(records, []string{"Python"})
	require.Contains(t, comp, "Python")
	assert.Equal(t, 2, comp["Python"].With.Count)
	assert.Equal(t, 2, comp["Python"].Without.Count)
	assert.False(t, comp["Python"].TTest.Insufficient)
	assert.Greater(t, comp["Python"].With.Mean, comp["Python"].Without.Mean)
}

func TestCorrelationPositive(t *testing.T) {
	var records []model.JobRecord
	for i := 1; i <= 6; i++ {
		r := labeled("madrid", float64(20000+i*5000))
		r.ExpYears = fptr(float64(i))
		records = append(records, r)
	}

	res := ExperienceSalaryCorrelation(records)
	require.False(t, res.Insufficient)
	assert.Equal(t, 6, res.N)
	assert.InDelta(t, 1.0, res.R, 0.001)
}

func TestCorrelationInsufficient(t *testing.T) {
	r := labeled("madrid", 40000)
	r.ExpYears = fptr(3)

	res := ExperienceSalaryCorrelation([]model.JobRecord{r})
	assert.True(t, res.Insufficient)
	assert.Equal(t, 1, res.N)
}

func TestCorrelationZeroVarianceInsufficient(t *testing.T) {
	var records []model.JobRecord
	for i := 0; i < 3; i++ {
		r := labeled("madrid", float64(30000+i*1000))
		r.ExpYears = fptr(5) // constant experience
		records = append(records, r)
	}

	res := ExperienceSalaryCorrelation(records)
	assert.True(t, res.Insufficient)
}

func TestRegressionRecoversLine(t *testing.T) {
	var records []model.JobRecord
	for i := 0; i <= 8; i++ {
		r := labeled("madrid", 20000+3000*float64(i))
		r.ExpYears = fptr(float64(i))
		records = append(records, r)
	}

	res := ExperienceSalaryRegression(records)
	require.False(t, res.Insufficient)
	assert.InDelta(t, 3000.0, res.Slope, 0.001)
	assert.InDelta(t, 20000.0, res.Intercept, 0.001)
	assert.InDelta(t, 1.0, res.R2, 0.001)
}

func TestRegressionInsufficient(t *testing.T) {
	res := ExperienceSalaryRegression(nil)
	assert.True(t, res.Insufficient)
	assert.Equal(t, 0, res.N)
}

func TestAnalyzeAndArtifactRoundTrip(t *testing.T) {
	records := []model.JobRecord{
		labeled("madrid", 40000, "Python"),
		labeled("madrid", 50000, "Python"),
		{Title: "Unlabeled"},
	}

	a := Analyze(records, []string{"Python"}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 3, a.Records)
	assert.Equal(t, 2, a.Labeled)

	path := filepath.Join(t.TempDir(), "reports", "stats.json")
	require.NoError(t, a.Save(path))

	back, err := LoadAnalysis(path)
	require.NoError(t, err)
	assert.Equal(t, a.Records, back.Records)
	assert.Equal(t, a.SalaryByLocation["madrid"].Mean, back.SalaryByLocation["madrid"].Mean)
}

func TestLoadAnalysisMissing(t *testing.T) {
	_, err := LoadAnalysis(filepath.Join(t.TempDir(), "stats.json"))
	var missing *model.MissingArtifactError
	assert.ErrorAs(t, err, &missing)
}
