// Package pipeline orders preprocessing stages by their declared profile
// field dependencies and executes them sequentially over immutable
// dataset/profile snapshots, keeping an append-only history for rollback.
package pipeline

// #region imports
import (
	"fmt"
	"log"
	"time"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region build

// BuildInput declares the stage list and the profile fields the caller's
// initial profile already provides (empty when the first stage is a
// summarizer).
type BuildInput struct {
	Stages        []StageSpec
	InitialFields []string
	// Target names the run's target column; the consistency checks exempt
	// it from candidate-scoped guarantees.
	Target string
}

// Pipeline owns the ordered stage sequence and the execution history.
// Built once, runnable repeatedly; every Run starts from a clean history.
type Pipeline struct {
	specs   []StageSpec
	initial []string
	target  string

	status  Status
	history []Snapshot
	records []StageRecord
}

// Build validates every stage's configuration and topologically orders the
// list. Configuration and dependency failures surface here, before any
// data is touched.
func Build(input BuildInput) (*Pipeline, error) {
	seen := make(map[string]bool, len(input.Stages))
	for _, s := range input.Stages {
		if s.Stage == nil {
			return nil, fmt.Errorf("build: nil stage in input")
		}
		id := s.Stage.ID()
		if seen[id] {
			return nil, fmt.Errorf("build: duplicate stage id %q", id)
		}
		seen[id] = true
		if err := s.Stage.Validate(); err != nil {
			return nil, fmt.Errorf("build stage %s: %w", id, err)
		}
	}

	ordered, err := orderStages(input.Stages, input.InitialFields)
	if err != nil {
		return nil, err
	}
	return &Pipeline{specs: ordered, initial: input.InitialFields, target: input.Target, status: StatusBuilt}, nil
}

// StageIDs returns the execution order decided at build time.
func (p *Pipeline) StageIDs() []string {
	out := make([]string, len(p.specs))
	for i, s := range p.specs {
		out[i] = s.Stage.ID()
	}
	return out
}

// #endregion build

// #region result

// Result is the outcome of one run: terminal status, final snapshot, and
// the full per-stage history for audit and rollback.
type Result struct {
	Status  Status
	Dataset *dataset.Dataset
	Profile *profile.DatasetProfile
	Records []StageRecord
}

// #endregion result

// #region run

// Run executes the stages in dependency order, one at a time. Each
// successful stage pushes its output snapshot onto the history. A
// StageError aborts the run unless the stage was configured with
// SkipOnError; a DataConsistencyError always aborts. The partially
// applied history is retained and inspectable either way.
func (p *Pipeline) Run(ds *dataset.Dataset, initial *profile.DatasetProfile) (*Result, error) {
	p.status = StatusRunning
	p.history = []Snapshot{{Dataset: ds, Profile: initial}}
	p.records = make([]StageRecord, 0, len(p.specs))

	cur := Snapshot{Dataset: ds, Profile: initial}
	for _, spec := range p.specs {
		id := spec.Stage.ID()
		log.Printf("[PIPE] stage=%s status=%s", id, StageRunning)
		start := time.Now()

		next, nextProfile, err := spec.Stage.Apply(cur.Dataset, cur.Profile)
		elapsed := time.Since(start)

		if err != nil {
			stageErr := &StageError{StageID: id, Err: err}
			if spec.SkipOnError {
				log.Printf("[PIPE] stage=%s status=%s err=%v", id, StageSkipped, err)
				p.records = append(p.records, StageRecord{
					StageID:      id,
					Status:       StageSkipped,
					Error:        stageErr.Error(),
					Duration:     elapsed,
					SnapshotIdx:  len(p.history) - 1,
					ColumnsAfter: len(cur.Dataset.Names()),
				})
				continue
			}
			log.Printf("[PIPE] stage=%s status=%s err=%v", id, StageFailed, err)
			p.records = append(p.records, StageRecord{
				StageID:      id,
				Status:       StageFailed,
				Error:        stageErr.Error(),
				Duration:     elapsed,
				SnapshotIdx:  len(p.history) - 1,
				ColumnsAfter: len(cur.Dataset.Names()),
			})
			p.status = StatusAborted
			return p.result(cur), stageErr
		}

		if verr := verifyProduced(id, spec.Stage.Produces(), next, nextProfile, p.target); verr != nil {
			log.Printf("[PIPE] stage=%s status=%s err=%v", id, StageFailed, verr)
			p.records = append(p.records, StageRecord{
				StageID:      id,
				Status:       StageFailed,
				Error:        verr.Error(),
				Duration:     elapsed,
				SnapshotIdx:  len(p.history) - 1,
				ColumnsAfter: len(cur.Dataset.Names()),
			})
			p.status = StatusAborted
			return p.result(cur), verr
		}

		cur = Snapshot{Dataset: next, Profile: nextProfile}
		p.history = append(p.history, cur)
		p.records = append(p.records, StageRecord{
			StageID:      id,
			Status:       StageSucceeded,
			Duration:     elapsed,
			SnapshotIdx:  len(p.history) - 1,
			ColumnsAfter: len(next.Names()),
		})
		log.Printf("[PIPE] stage=%s status=%s cols=%d dur=%s", id, StageSucceeded, len(next.Names()), elapsed)
	}

	p.status = StatusCompleted
	return p.result(cur), nil
}

// result assembles the returned Result from current state.
func (p *Pipeline) result(cur Snapshot) *Result {
	return &Result{
		Status:  p.status,
		Dataset: cur.Dataset,
		Profile: cur.Profile,
		Records: append([]StageRecord(nil), p.records...),
	}
}

// #endregion run

// #region rollback

// Status returns the pipeline-level status.
func (p *Pipeline) Status() Status {
	return p.status
}

// History returns the snapshot list of the latest run; index 0 is the
// input pair.
func (p *Pipeline) History() []Snapshot {
	return p.history
}

// Records returns the per-stage records of the latest run.
func (p *Pipeline) Records() []StageRecord {
	return append([]StageRecord(nil), p.records...)
}

// Live returns the current dataset/profile pair.
func (p *Pipeline) Live() (*dataset.Dataset, *profile.DatasetProfile, error) {
	if len(p.history) == 0 {
		return nil, nil, fmt.Errorf("pipeline has not run")
	}
	last := p.history[len(p.history)-1]
	return last.Dataset, last.Profile, nil
}

// Rollback discards the last n applied stages and restores the snapshot
// recorded before they ran. Only successfully applied stages count.
func (p *Pipeline) Rollback(n int) error {
	applied := len(p.history) - 1
	if n <= 0 || n > applied {
		return fmt.Errorf("rollback %d: only %d applied stages in history", n, applied)
	}
	p.history = p.history[:len(p.history)-n]

	// Drop the matching SUCCEEDED records from the tail.
	dropped := 0
	i := len(p.records)
	for i > 0 && dropped < n {
		i--
		if p.records[i].Status == StageSucceeded {
			dropped++
		}
	}
	p.records = p.records[:i]
	log.Printf("[PIPE] rollback n=%d live_cols=%d", n, len(p.history[len(p.history)-1].Dataset.Names()))
	return nil
}

// #endregion rollback
