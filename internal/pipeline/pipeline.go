// Package pipeline executes the batch stages in order, isolating
// per-stage failures and recording outcomes in the run store.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/config"
	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/store"
)

// stageOrder is the fixed execution order.
var stageOrder = []string{
	model.StageCollect,
	model.StageNormalize,
	model.StageExtract,
	model.StageStats,
	model.StageTrain,
}

// stageDeps names each stage's upstream dependency within a run. A
// stage whose dependency ends with insufficient data is skipped rather
// than failed; stages reading artifacts from earlier runs are not
// blocked by a dependency that was not selected.
var stageDeps = map[string][]string{
	model.StageNormalize: {model.StageCollect},
	model.StageExtract:   {model.StageNormalize},
	model.StageStats:     {model.StageNormalize},
	model.StageTrain:     {model.StageExtract},
}

// Runner wires configuration, artifact paths, and the run store.
type Runner struct {
	cfg   config.Config
	store store.Store
	paths Paths
	now   func() time.Time
}

func New(cfg config.Config, st store.Store) *Runner {
	return &Runner{
		cfg:   cfg,
		store: st,
		paths: NewPaths(cfg.Data),
		now:   time.Now,
	}
}

// Paths returns the artifact layout the runner writes to.
func (r *Runner) Paths() Paths {
	return r.paths
}

// Run executes the requested stages in pipeline order. Stages ending
// with insufficient data skip their dependents but do not fail the
// run; any other stage error stops the run and is returned with the
// stage named.
func (r *Runner) Run(ctx context.Context, requested []string) (*model.PipelineRun, []model.StageResult, error) {
	stages, err := selectStages(requested)
	if err != nil {
		return nil, nil, err
	}

	run, err := r.store.CreateRun(ctx, stages)
	if err != nil {
		return nil, nil, err
	}

	var results []model.StageResult
	short := map[string]string{} // stage name -> why it ended short

	for _, name := range stages {
		if blocker := r.blockedBy(name, short); blocker != "" {
			res, err := r.record(ctx, run.ID, name, func(st *model.StageResult) {
				st.Status = model.StageStatusSkipped
				st.Error = "skipped: " + blocker + " had insufficient data"
			})
			if err != nil {
				return run, results, err
			}
			short[name] = blocker
			results = append(results, *res)
			continue
		}

		res, stageErr := r.runStage(ctx, run.ID, name)
		if res != nil {
			results = append(results, *res)
		}
		if stageErr != nil {
			_ = r.store.FinishRun(ctx, run.ID, model.RunStatusFailed, stageErr.Error())
			run.Status = model.RunStatusFailed
			return run, results, eris.Wrapf(stageErr, "pipeline: stage %s failed", name)
		}
		if res.Status == model.StageStatusInsufficientData {
			short[name] = name
		}
	}

	if err := r.store.FinishRun(ctx, run.ID, model.RunStatusComplete, ""); err != nil {
		return run, results, err
	}
	run.Status = model.RunStatusComplete

	zap.L().Info("pipeline: run complete",
		zap.String("run_id", run.ID),
		zap.Int("stages", len(results)),
	)
	return run, results, nil
}

// blockedBy returns the name of the insufficient-data stage blocking
// name, following dependency chains, or "" when name can run.
func (r *Runner) blockedBy(name string, short map[string]string) string {
	for _, dep := range stageDeps[name] {
		if origin, ok := short[dep]; ok {
			return origin
		}
	}
	return ""
}

func (r *Runner) runStage(ctx context.Context, runID, name string) (*model.StageResult, error) {
	st, err := r.store.StartStage(ctx, runID, name)
	if err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: stage started", zap.String("stage", name))
	out, stageErr := r.execute(ctx, name)

	st.Kept = out.kept
	st.Dropped = out.dropped
	st.Metrics = out.metrics

	var insufficient *model.InsufficientDataError
	switch {
	case stageErr == nil:
		st.Status = model.StageStatusComplete
	case errors.As(stageErr, &insufficient):
		st.Status = model.StageStatusInsufficientData
		st.Error = stageErr.Error()
		stageErr = nil
		zap.L().Warn("pipeline: stage ended with insufficient data",
			zap.String("stage", name),
			zap.Int("have", insufficient.Have),
			zap.Int("need", insufficient.Need),
		)
	default:
		st.Status = model.StageStatusFailed
		st.Error = stageErr.Error()
	}

	if err := r.store.FinishStage(ctx, st); err != nil {
		return st, err
	}
	return st, stageErr
}

// record writes a stage row for an outcome decided without executing
// the stage, e.g. a skip.
func (r *Runner) record(ctx context.Context, runID, name string, fill func(*model.StageResult)) (*model.StageResult, error) {
	st, err := r.store.StartStage(ctx, runID, name)
	if err != nil {
		return nil, err
	}
	fill(st)
	if err := r.store.FinishStage(ctx, st); err != nil {
		return st, err
	}
	return st, nil
}

func (r *Runner) execute(ctx context.Context, name string) (stageOutcome, error) {
	switch name {
	case model.StageCollect:
		return r.collect(ctx)
	case model.StageNormalize:
		return r.normalize()
	case model.StageExtract:
		return r.extract()
	case model.StageStats:
		return r.stats()
	case model.StageTrain:
		return r.train()
	default:
		return stageOutcome{}, eris.Errorf("pipeline: unknown stage %q", name)
	}
}

// selectStages keeps pipeline order regardless of how the request is
// ordered. An empty request selects every stage.
func selectStages(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return append([]string(nil), stageOrder...), nil
	}

	want := map[string]bool{}
	for _, name := range requested {
		found := false
		for _, known := range stageOrder {
			if name == known {
				found = true
				break
			}
		}
		if !found {
			return nil, eris.Errorf("pipeline: unknown stage %q", name)
		}
		want[name] = true
	}

	var stages []string
	for _, name := range stageOrder {
		if want[name] {
			stages = append(stages, name)
		}
	}
	return stages, nil
}
