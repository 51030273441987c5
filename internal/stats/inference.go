package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// CorrelationResult holds a Pearson correlation between the numeric
// experience proxy and salary.
type CorrelationResult struct {
	N            int     `json:"n"`
	R            float64 `json:"r"`
	Insufficient bool    `json:"insufficient,omitempty"`
}

// ExperienceSalaryCorrelation computes the Pearson correlation over
// the records that carry both an experience signal and a salary label.
func ExperienceSalaryCorrelation(records []model.JobRecord) CorrelationResult {
	xs, ys := experienceSalaryPairs(records)
	if len(xs) < minObservations {
		return CorrelationResult{N: len(xs), Insufficient: true}
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		// Zero variance on one side: correlation undefined.
		return CorrelationResult{N: len(xs), Insufficient: true}
	}
	return CorrelationResult{N: len(xs), R: r}
}

// TTestResult holds a Welch two-sample t-test outcome.
type TTestResult struct {
	NA           int     `json:"n_a"`
	NB           int     `json:"n_b"`
	T            float64 `json:"t"`
	P            float64 `json:"p"`
	DF           float64 `json:"df"`
	Insufficient bool    `json:"insufficient,omitempty"`
}

// WelchTTest compares two salary samples without assuming equal
// variances. Either sample below two observations yields an explicit
// insufficient result, never NaN.
func WelchTTest(a, b []float64) TTestResult {
	if len(a) < minObservations || len(b) < minObservations {
		return TTestResult{NA: len(a), NB: len(b), Insufficient: true}
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	se2 := varA/na + varB/nb
	if se2 == 0 {
		// Degenerate constant samples.
		if meanA == meanB {
			return TTestResult{NA: len(a), NB: len(b), T: 0, P: 1, DF: na + nb - 2}
		}
		return TTestResult{NA: len(a), NB: len(b), T: math.Inf(sign(meanA - meanB)), P: 0, DF: na + nb - 2}
	}

	t := (meanA - meanB) / math.Sqrt(se2)

	// Welch–Satterthwaite degrees of freedom.
	df := se2 * se2 / (varA*varA/(na*na*(na-1)) + varB*varB/(nb*nb*(nb-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	return TTestResult{NA: len(a), NB: len(b), T: t, P: p, DF: df}
}

// RegressionResult holds the simple linear baseline salary ~ experience.
type RegressionResult struct {
	N            int     `json:"n"`
	Slope        float64 `json:"slope"`
	Intercept    float64 `json:"intercept"`
	R2           float64 `json:"r2"`
	Insufficient bool    `json:"insufficient,omitempty"`
}

// ExperienceSalaryRegression fits ordinary least squares of salary on
// the experience proxy.
func ExperienceSalaryRegression(records []model.JobRecord) RegressionResult {
	xs, ys := experienceSalaryPairs(records)
	if len(xs) < minObservations || stat.Variance(xs, nil) == 0 {
		return RegressionResult{N: len(xs), Insufficient: true}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	estimates := make([]float64, len(xs))
	for i, x := range xs {
		estimates[i] = intercept + slope*x
	}
	r2 := stat.RSquaredFrom(estimates, ys, nil)

	return RegressionResult{N: len(xs), Slope: slope, Intercept: intercept, R2: r2}
}

func experienceSalaryPairs(records []model.JobRecord) (xs, ys []float64) {
	for _, r := range records {
		label, ok := r.SalaryMid()
		if !ok {
			continue
		}
		years, ok := r.ExperienceProxy()
		if !ok {
			continue
		}
		xs = append(xs, years)
		ys = append(ys, label)
	}
	return xs, ys
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
