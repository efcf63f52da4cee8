package pipeline

// #region imports
import (
	"time"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region stage-interface

// Stage is one unit of transformation. Apply never mutates its input; it
// returns a fresh dataset/profile pair, which is what makes rollback an
// index operation. Requires and Produces declare profile fields used
// purely for dependency ordering and post-stage verification.
type Stage interface {
	ID() string
	Requires() []string
	Produces() []string

	// Validate checks the stage's configuration at build time.
	Validate() error

	Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error)
}

// StageSpec pairs a stage with its orchestration options.
type StageSpec struct {
	Stage Stage
	// SkipOnError downgrades a StageError to SKIPPED and continues with
	// the unmodified dataset instead of aborting the run.
	SkipOnError bool
}

// #endregion stage-interface

// #region status

// StageStatus is the per-stage state machine.
type StageStatus string

const (
	StagePending   StageStatus = "PENDING"
	StageRunning   StageStatus = "RUNNING"
	StageSucceeded StageStatus = "SUCCEEDED"
	StageFailed    StageStatus = "FAILED"
	StageSkipped   StageStatus = "SKIPPED"
)

// Status is the pipeline-level state machine.
type Status string

const (
	StatusBuilt     Status = "BUILT"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusAborted   Status = "ABORTED"
)

// #endregion status

// #region records

// StageRecord is one entry of the execution history, retained even for
// failed and skipped stages so no error is silently swallowed.
type StageRecord struct {
	StageID      string
	Status       StageStatus
	Error        string
	Duration     time.Duration
	SnapshotIdx  int // index into the snapshot history after this stage
	ColumnsAfter int
}

// Snapshot is an immutable dataset/profile pair in the append-only history.
type Snapshot struct {
	Dataset *dataset.Dataset
	Profile *profile.DatasetProfile
}

// #endregion records
