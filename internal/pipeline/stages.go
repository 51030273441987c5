package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/laborlens/jobmarket-cli/internal/collect"
	"github.com/laborlens/jobmarket-cli/internal/config"
	"github.com/laborlens/jobmarket-cli/internal/dataset"
	"github.com/laborlens/jobmarket-cli/internal/feature"
	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/normalize"
	"github.com/laborlens/jobmarket-cli/internal/salary"
	"github.com/laborlens/jobmarket-cli/internal/stats"
)

// Paths is the on-disk artifact layout shared by stages and commands.
type Paths struct {
	RawDir       string
	RawSynthetic string
	RawAdzuna    string
	RawJooble    string
	Dataset      string
	Schema       string
	Vectors      string
	Stats        string
	Model        string
}

func NewPaths(data config.DataConfig) Paths {
	return Paths{
		RawDir:       data.RawDir,
		RawSynthetic: filepath.Join(data.RawDir, "synthetic_offers.csv"),
		RawAdzuna:    filepath.Join(data.RawDir, "adzuna_offers.csv"),
		RawJooble:    filepath.Join(data.RawDir, "jooble_offers.csv"),
		Dataset:      filepath.Join(data.ProcessedDir, "dataset.csv"),
		Schema:       filepath.Join(data.ProcessedDir, "feature_schema.yaml"),
		Vectors:      filepath.Join(data.ProcessedDir, "features.json"),
		Stats:        filepath.Join(data.ProcessedDir, "stats.json"),
		Model:        data.ModelPath,
	}
}

// defaultAdzunaLocations mirrors the collector's default search area.
var defaultAdzunaLocations = []string{"madrid", "barcelona"}

type stageOutcome struct {
	kept    int
	dropped int
	metrics model.Metrics
}

func (r *Runner) collect(ctx context.Context) (stageOutcome, error) {
	var total int

	if n := r.cfg.Collect.Synthetic; n > 0 {
		gen := collect.NewGenerator(r.cfg.Pipeline.RandomSeed, r.now())
		offers := gen.Offers(n)
		if err := dataset.WriteRaw(r.paths.RawSynthetic, offers, collect.SyntheticColumns); err != nil {
			return stageOutcome{}, err
		}
		total += len(offers)
	}

	if r.cfg.Collect.AdzunaAppID != "" && r.cfg.Collect.AdzunaAPIKey != "" {
		client, err := collect.NewAdzunaClient(collect.AdzunaOptions{
			AppID:      r.cfg.Collect.AdzunaAppID,
			APIKey:     r.cfg.Collect.AdzunaAPIKey,
			BaseURL:    r.cfg.Collect.AdzunaBaseURL,
			Country:    r.cfg.Collect.Country,
			RatePerSec: r.cfg.Collect.RatePerSec,
		})
		if err != nil {
			return stageOutcome{}, err
		}
		offers, err := client.Search(ctx, r.cfg.Collect.What, defaultAdzunaLocations, r.cfg.Collect.MaxPages)
		if err != nil {
			return stageOutcome{}, err
		}
		if err := dataset.WriteRaw(r.paths.RawAdzuna, offers, collect.AdzunaColumns); err != nil {
			return stageOutcome{}, err
		}
		total += len(offers)
	}

	if r.cfg.Collect.JoobleAPIKey != "" {
		client, err := collect.NewJoobleClient(collect.JoobleOptions{
			APIKey:     r.cfg.Collect.JoobleAPIKey,
			BaseURL:    r.cfg.Collect.JoobleBaseURL,
			RatePerSec: r.cfg.Collect.RatePerSec,
		})
		if err != nil {
			return stageOutcome{}, err
		}
		offers, err := client.Search(ctx, r.cfg.Collect.What, "", r.cfg.Collect.MaxPages)
		if err != nil {
			return stageOutcome{}, err
		}
		if err := dataset.WriteRaw(r.paths.RawJooble, offers, collect.JoobleColumns); err != nil {
			return stageOutcome{}, err
		}
		total += len(offers)
	}

	return stageOutcome{kept: total}, nil
}

func (r *Runner) normalize() (stageOutcome, error) {
	n := normalize.New()
	var records []model.JobRecord
	var report normalize.Report
	sources := 0

	inputs := []struct {
		path    string
		adapter normalize.Adapter
	}{
		{r.paths.RawSynthetic, normalize.SyntheticAdapter},
		{r.paths.RawAdzuna, normalize.AdzunaAdapter},
		{r.paths.RawJooble, normalize.JoobleAdapter},
	}
	for _, in := range inputs {
		rows, err := dataset.ReadRaw(in.path)
		var missing *model.MissingArtifactError
		if errors.As(err, &missing) {
			continue
		}
		if err != nil {
			return stageOutcome{}, err
		}
		sources++

		recs, rep := n.Run(rows, in.adapter)
		records = append(records, recs...)
		report.Kept += rep.Kept
		report.Dropped += rep.Dropped
		report.NoTech += rep.NoTech
	}

	// Spreadsheet exports dropped into the raw dir are picked up too.
	xlsxPaths, err := filepath.Glob(filepath.Join(r.paths.RawDir, "*.xlsx"))
	if err != nil {
		return stageOutcome{}, err
	}
	for _, path := range xlsxPaths {
		rows, err := dataset.ReadRawXLSX(path)
		if err != nil {
			return stageOutcome{}, err
		}
		if len(rows) == 0 {
			continue
		}
		sources++

		recs, rep := n.Run(rows, adapterFor(rows[0]))
		records = append(records, recs...)
		report.Kept += rep.Kept
		report.Dropped += rep.Dropped
		report.NoTech += rep.NoTech
	}

	if sources == 0 {
		return stageOutcome{}, &model.MissingArtifactError{
			Path: r.paths.RawSynthetic,
			Hint: "run the collect stage first",
		}
	}

	if err := dataset.WriteRecords(r.paths.Dataset, records); err != nil {
		return stageOutcome{}, err
	}
	return stageOutcome{
		kept:    report.Kept,
		dropped: report.Dropped,
		metrics: model.Metrics{"no_tech": float64(report.NoTech)},
	}, nil
}

// adapterFor sniffs the source column set of a raw row.
func adapterFor(row normalize.RawRecord) normalize.Adapter {
	if _, ok := row["titulo"]; ok {
		return normalize.SyntheticAdapter
	}
	return normalize.AdzunaAdapter
}

func (r *Runner) extract() (stageOutcome, error) {
	records, err := dataset.ReadRecords(r.paths.Dataset)
	if err != nil {
		return stageOutcome{}, err
	}

	schema := feature.DefaultSchema()
	if err := schema.Save(r.paths.Schema); err != nil {
		return stageOutcome{}, err
	}

	vectors, excluded := feature.Extract(records, schema)
	if err := feature.SaveVectors(r.paths.Vectors, vectors); err != nil {
		return stageOutcome{}, err
	}
	return stageOutcome{kept: len(vectors), dropped: excluded}, nil
}

func (r *Runner) stats() (stageOutcome, error) {
	records, err := dataset.ReadRecords(r.paths.Dataset)
	if err != nil {
		return stageOutcome{}, err
	}

	analysis := stats.Analyze(records, normalize.DefaultVocabulary, r.now())
	if err := analysis.Save(r.paths.Stats); err != nil {
		return stageOutcome{}, err
	}
	return stageOutcome{
		kept: analysis.Records,
		metrics: model.Metrics{
			"labeled": float64(analysis.Labeled),
		},
	}, nil
}

func (r *Runner) train() (stageOutcome, error) {
	schema, err := feature.LoadSchema(r.paths.Schema)
	if err != nil {
		return stageOutcome{}, err
	}
	vectors, err := feature.LoadVectors(r.paths.Vectors)
	if err != nil {
		return stageOutcome{}, err
	}

	m, err := salary.Train(vectors, schema, salary.TrainOptions{
		MinRecords:   r.cfg.Pipeline.MinTrainingRecords,
		Seed:         r.cfg.Pipeline.RandomSeed,
		TestFraction: r.cfg.Pipeline.TestFraction,
	})
	if err != nil {
		return stageOutcome{}, err
	}
	if err := m.Save(r.paths.Model); err != nil {
		return stageOutcome{}, err
	}

	return stageOutcome{
		kept: m.Metrics.TrainRecords + m.Metrics.TestRecords,
		metrics: model.Metrics{
			"mae":          m.Metrics.MAE,
			"r2":           m.Metrics.R2,
			"baseline_mae": m.Metrics.BaselineMAE,
			"baseline_r2":  m.Metrics.BaselineR2,
		},
	}, nil
}
