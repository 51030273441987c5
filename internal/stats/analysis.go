package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// Analysis bundles every statistic the stage produces. Serialized to
// JSON for the dashboard.
type Analysis struct {
	GeneratedAt      time.Time                 `json:"generated_at"`
	Records          int                       `json:"records"`
	Labeled          int                       `json:"labeled"`
	SalaryByLocation map[string]Summary        `json:"salary_by_location"`
	SalaryByContract map[string]Summary        `json:"salary_by_contract"`
	SalaryByTech     map[string]TechComparison `json:"salary_by_tech"`
	Correlation      CorrelationResult         `json:"experience_salary_correlation"`
	Regression       RegressionResult          `json:"experience_salary_regression"`
}

// Analyze runs the full statistical pass over the normalized dataset.
func Analyze(records []model.JobRecord, vocab []string, now time.Time) *Analysis {
	labeled := 0
	for _, r := range records {
		if r.HasSalary() {
			labeled++
		}
	}

	a := &Analysis{
		GeneratedAt:      now,
		Records:          len(records),
		Labeled:          labeled,
		SalaryByLocation: SalaryByLocation(records),
		SalaryByContract: SalaryByContract(records),
		SalaryByTech:     SalaryByTech(records, vocab),
		Correlation:      ExperienceSalaryCorrelation(records),
		Regression:       ExperienceSalaryRegression(records),
	}

	zap.L().Info("stats: analysis complete",
		zap.Int("records", a.Records),
		zap.Int("labeled", a.Labeled),
		zap.Bool("correlation_insufficient", a.Correlation.Insufficient),
	)
	return a
}

// Save writes the analysis artifact.
func (a *Analysis) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return eris.Wrap(err, "stats: marshal analysis")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "stats: create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "stats: write %s", path)
	}
	return nil
}

// LoadAnalysis reads a previously saved analysis artifact.
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &model.MissingArtifactError{Path: path, Hint: "run the stats stage first"}
		}
		return nil, eris.Wrapf(err, "stats: read %s", path)
	}
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrapf(err, "stats: unmarshal %s", path)
	}
	return &a, nil
}
