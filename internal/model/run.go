package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// StageStatus represents the outcome of a single stage.
type StageStatus string

const (
	StageStatusRunning          StageStatus = "running"
	StageStatusComplete         StageStatus = "complete"
	StageStatusFailed           StageStatus = "failed"
	StageStatusSkipped          StageStatus = "skipped"
	StageStatusInsufficientData StageStatus = "insufficient_data"
)

// Stage names, in pipeline order.
const (
	StageCollect   = "collect"
	StageNormalize = "normalize"
	StageExtract   = "extract"
	StageStats     = "stats"
	StageTrain     = "train"
)

// PipelineRun is one end-to-end execution of the batch pipeline.
type PipelineRun struct {
	ID        string    `json:"id"`
	Stages    []string  `json:"stages"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StageResult is the recorded outcome of one stage within a run.
type StageResult struct {
	ID         string      `json:"id"`
	RunID      string      `json:"run_id"`
	Name       string      `json:"name"`
	Status     StageStatus `json:"status"`
	Kept       int         `json:"kept"`
	Dropped    int         `json:"dropped"`
	Metrics    Metrics     `json:"metrics,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// Metrics is a free-form bag of stage metrics (e.g. mae, r2).
type Metrics map[string]float64
