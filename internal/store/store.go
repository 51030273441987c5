// Package store persists pipeline run history in SQLite or PostgreSQL.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, stages []string) (*model.PipelineRun, error)
	FinishRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.PipelineRun, error)
	LatestRun(ctx context.Context) (*model.PipelineRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.PipelineRun, error)

	// Stages
	StartStage(ctx context.Context, runID, name string) (*model.StageResult, error)
	FinishStage(ctx context.Context, stage *model.StageResult) error
	ListStages(ctx context.Context, runID string) ([]model.StageResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
