package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []string{model.StageCollect, model.StageNormalize})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, []string{model.StageCollect, model.StageNormalize}, got.Stages)

	require.NoError(t, s.FinishRun(ctx, run.ID, model.RunStatusComplete, ""))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Empty(t, got.Error)
}

func TestSQLiteFinishRunRecordsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []string{model.StageTrain})
	require.NoError(t, err)

	require.NoError(t, s.FinishRun(ctx, run.ID, model.RunStatusFailed, "train: insufficient data"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "insufficient data")
}

func TestSQLiteFinishRunNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.FinishRun(context.Background(), "missing", model.RunStatusComplete, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStageLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []string{model.StageNormalize})
	require.NoError(t, err)

	stage, err := s.StartStage(ctx, run.ID, model.StageNormalize)
	require.NoError(t, err)
	assert.Equal(t, model.StageStatusRunning, stage.Status)

	stage.Status = model.StageStatusComplete
	stage.Kept = 95
	stage.Dropped = 5
	stage.Metrics = model.Metrics{"no_tech": 3}
	require.NoError(t, s.FinishStage(ctx, stage))

	stages, err := s.ListStages(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, model.StageStatusComplete, stages[0].Status)
	assert.Equal(t, 95, stages[0].Kept)
	assert.Equal(t, 5, stages[0].Dropped)
	assert.Equal(t, 3.0, stages[0].Metrics["no_tech"])
	assert.NotNil(t, stages[0].FinishedAt)
}

func TestSQLiteStageInsufficientData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []string{model.StageTrain})
	require.NoError(t, err)

	stage, err := s.StartStage(ctx, run.ID, model.StageTrain)
	require.NoError(t, err)

	stage.Status = model.StageStatusInsufficientData
	stage.Error = "train: insufficient data: have 12 records, need 30"
	require.NoError(t, s.FinishStage(ctx, stage))

	stages, err := s.ListStages(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageStatusInsufficientData, stages[0].Status)
}

func TestSQLiteListRunsFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, []string{model.StageStats})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.CreateRun(ctx, []string{model.StageStats})
	require.NoError(t, err)

	require.NoError(t, s.FinishRun(ctx, first.ID, model.RunStatusComplete, ""))

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, first.ID, complete[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteLatestRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = s.CreateRun(ctx, []string{model.StageCollect})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.CreateRun(ctx, []string{model.StageCollect})
	require.NoError(t, err)

	latest, err = s.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
