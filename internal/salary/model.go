package salary

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/laborlens/jobmarket-cli/internal/feature"
	"github.com/laborlens/jobmarket-cli/internal/model"
)

// TrainOptions configures a training run. Zero values fall back to the
// pipeline defaults applied in Train.
type TrainOptions struct {
	MinRecords   int
	Seed         int64
	TestFraction float64
	Params       GBMParams
}

// Metrics are held-out evaluation results for the ensemble and for the
// experience-only least-squares baseline it must beat to be useful.
type Metrics struct {
	TrainRecords int     `json:"train_records"`
	TestRecords  int     `json:"test_records"`
	MAE          float64 `json:"mae"`
	R2           float64 `json:"r2"`
	BaselineMAE  float64 `json:"baseline_mae"`
	BaselineR2   float64 `json:"baseline_r2"`
}

// Baseline is ordinary least squares on the experience-years column.
type Baseline struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Model is the persisted artifact: the ensemble, the feature columns it
// was trained against, and how it performed on the held-out split.
type Model struct {
	SchemaVersion string    `json:"schema_version"`
	Columns       []string  `json:"columns"`
	Seed          int64     `json:"seed"`
	TrainedAt     time.Time `json:"trained_at"`
	Params        GBMParams `json:"params"`
	Ensemble      *GBM      `json:"ensemble"`
	Baseline      Baseline  `json:"baseline"`
	Metrics       Metrics   `json:"metrics"`
}

// Train fits the ensemble on a deterministic shuffle-split of the
// vectors. Returns InsufficientDataError below the configured minimum.
func Train(vectors []feature.Vector, s *feature.Schema, opts TrainOptions) (*Model, error) {
	if opts.MinRecords <= 0 {
		opts.MinRecords = 30
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	if opts.Params.Trees == 0 {
		opts.Params = DefaultParams()
	}

	if len(vectors) < opts.MinRecords {
		return nil, &model.InsufficientDataError{
			Stage: "train",
			Have:  len(vectors),
			Need:  opts.MinRecords,
		}
	}

	cols := s.Columns()
	train, test := split(vectors, opts.Seed, opts.TestFraction)

	xs := make([][]float64, len(train))
	ys := make([]float64, len(train))
	for i, v := range train {
		xs[i] = v.Values
		ys[i] = v.Label
	}

	ensemble := trainGBM(xs, ys, opts.Params)
	baseline := fitBaseline(train, len(cols)-1)

	m := &Model{
		SchemaVersion: s.Version,
		Columns:       cols,
		Seed:          opts.Seed,
		TrainedAt:     time.Now().UTC(),
		Params:        opts.Params,
		Ensemble:      ensemble,
		Baseline:      baseline,
	}
	m.Metrics = evaluate(m, train, test, len(cols)-1)

	zap.L().Info("salary: training complete",
		zap.Int("train_records", m.Metrics.TrainRecords),
		zap.Int("test_records", m.Metrics.TestRecords),
		zap.Float64("mae", m.Metrics.MAE),
		zap.Float64("r2", m.Metrics.R2),
		zap.Float64("baseline_mae", m.Metrics.BaselineMAE),
	)
	return m, nil
}

// Predict encodes the record against the schema and runs the ensemble.
// The schema must match the one the model was trained with.
func (m *Model) Predict(rec model.JobRecord, s *feature.Schema) (float64, error) {
	if err := m.CheckSchema(s.Columns()); err != nil {
		return 0, err
	}
	v := feature.Encode(rec, s)
	return m.Ensemble.predict(v.Values), nil
}

// PredictVector runs the ensemble on already-encoded values.
func (m *Model) PredictVector(values []float64) (float64, error) {
	if len(values) != len(m.Columns) {
		return 0, &model.SchemaMismatchError{}
	}
	return m.Ensemble.predict(values), nil
}

// CheckSchema verifies the given columns line up with the columns the
// model was trained on, reporting which differ.
func (m *Model) CheckSchema(columns []string) error {
	trained := map[string]bool{}
	for _, c := range m.Columns {
		trained[c] = true
	}
	offered := map[string]bool{}
	for _, c := range columns {
		offered[c] = true
	}

	var missing, extra []string
	for _, c := range m.Columns {
		if !offered[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range columns {
		if !trained[c] {
			extra = append(extra, c)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return &model.SchemaMismatchError{Missing: missing, Extra: extra}
	}

	for i, c := range columns {
		if m.Columns[i] != c {
			return &model.SchemaMismatchError{}
		}
	}
	return nil
}

// split shuffles deterministically under the seed and carves off the
// test fraction, keeping at least one record on each side.
func split(vectors []feature.Vector, seed int64, testFraction float64) (train, test []feature.Vector) {
	shuffled := make([]feature.Vector, len(vectors))
	copy(shuffled, vectors)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTest := int(math.Round(float64(len(shuffled)) * testFraction))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= len(shuffled) {
		nTest = len(shuffled) - 1
	}
	return shuffled[nTest:], shuffled[:nTest]
}

func fitBaseline(train []feature.Vector, yearsCol int) Baseline {
	xs := make([]float64, len(train))
	ys := make([]float64, len(train))
	for i, v := range train {
		xs[i] = v.Values[yearsCol]
		ys[i] = v.Label
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) {
		// Constant experience column: fall back to the mean.
		return Baseline{Intercept: mean(ys)}
	}
	return Baseline{Slope: slope, Intercept: intercept}
}

func evaluate(m *Model, train, test []feature.Vector, yearsCol int) Metrics {
	labels := make([]float64, len(test))
	ensemblePreds := make([]float64, len(test))
	baselinePreds := make([]float64, len(test))

	var mae, baseMAE float64
	for i, v := range test {
		labels[i] = v.Label
		ensemblePreds[i] = m.Ensemble.predict(v.Values)
		baselinePreds[i] = m.Baseline.Intercept + m.Baseline.Slope*v.Values[yearsCol]
		mae += math.Abs(ensemblePreds[i] - labels[i])
		baseMAE += math.Abs(baselinePreds[i] - labels[i])
	}
	n := float64(len(test))

	return Metrics{
		TrainRecords: len(train),
		TestRecords:  len(test),
		MAE:          mae / n,
		R2:           rSquared(labels, ensemblePreds),
		BaselineMAE:  baseMAE / n,
		BaselineR2:   rSquared(labels, baselinePreds),
	}
}

func rSquared(labels, preds []float64) float64 {
	r2 := stat.RSquaredFrom(preds, labels, nil)
	if math.IsNaN(r2) {
		return 0
	}
	return r2
}
