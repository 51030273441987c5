// Package stats computes descriptive and inferential statistics over
// the normalized dataset. Every routine degrades to an explicit
// insufficient-data result instead of dividing by zero when a group
// has fewer than two observations.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// minObservations is the floor below which a statistic is not
// computable.
const minObservations = 2

// Summary holds descriptive statistics for one group of salaries.
// Insufficient is set when the group has fewer than two observations;
// the moment fields are zero in that case and must not be read.
type Summary struct {
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Insufficient bool    `json:"insufficient,omitempty"`
}

// Summarize computes descriptive statistics over a sample.
func Summarize(values []float64) Summary {
	if len(values) < minObservations {
		return Summary{Count: len(values), Insufficient: true}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return Summary{
		Count:  len(values),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// SalaryByLocation groups salary labels by location category.
func SalaryByLocation(records []model.JobRecord) map[string]Summary {
	return groupBy(records, func(r model.JobRecord) string { return r.LocationCat })
}

// SalaryByContract groups salary labels by contract type.
func SalaryByContract(records []model.JobRecord) map[string]Summary {
	return groupBy(records, func(r model.JobRecord) string { return string(r.Contract) })
}

// TechComparison compares the salary distribution of records
// mentioning a technology against those that do not.
type TechComparison struct {
	With    Summary     `json:"with"`
	Without Summary     `json:"without"`
	TTest   TTestResult `json:"t_test"`
}

// SalaryByTech runs the with/without comparison for every vocabulary
// entry, including the Welch t-test between both groups.
func SalaryByTech(records []model.JobRecord, vocab []string) map[string]TechComparison {
	out := make(map[string]TechComparison, len(vocab))
	for _, tech := range vocab {
		var with, without []float64
		for _, r := range records {
			label, ok := r.SalaryMid()
			if !ok {
				continue
			}
			if r.HasTech(tech) {
				with = append(with, label)
			} else {
				without = append(without, label)
			}
		}
		out[tech] = TechComparison{
			With:    Summarize(with),
			Without: Summarize(without),
			TTest:   WelchTTest(with, without),
		}
	}
	return out
}

func groupBy(records []model.JobRecord, key func(model.JobRecord) string) map[string]Summary {
	groups := make(map[string][]float64)
	for _, r := range records {
		label, ok := r.SalaryMid()
		if !ok {
			continue
		}
		k := key(r)
		groups[k] = append(groups[k], label)
	}

	out := make(map[string]Summary, len(groups))
	for k, values := range groups {
		out[k] = Summarize(values)
	}
	return out
}
