package replay

// #region imports
import (
	"fmt"

	"github.com/prepflow/prepflow/internal/config"
	"github.com/prepflow/prepflow/internal/pipeline"
	"github.com/prepflow/prepflow/internal/profile"
	"github.com/prepflow/prepflow/internal/selection"
)

// #endregion

// #region capture-sink

// captureSink records selection results in memory per stage.
type captureSink struct {
	decisions map[string]selection.Result
}

func newCaptureSink() *captureSink {
	return &captureSink{decisions: make(map[string]selection.Result)}
}

func (c *captureSink) RecordDecisions(stageID string, res selection.Result) error {
	c.decisions[stageID] = res
	return nil
}

// #endregion capture-sink

// #region result-types

// ReplayResult is the outcome of replaying one fixture.
type ReplayResult struct {
	Status     pipeline.Status
	Columns    []string
	Rejected   map[string]string
	Stages     []FixtureStage
	Mismatches []string
}

// Passed reports whether the replay matched the recording exactly.
func (r *ReplayResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// #endregion result-types

// #region replay

// Replay rebuilds the pipeline from the fixture's embedded config, runs it
// over the fixture dataset, and diffs the outcome against the recording.
// The returned error covers setup failures only; a run that diverges from
// the recording comes back with Mismatches populated.
func Replay(f *Fixture) (*ReplayResult, error) {
	cfg, err := config.Parse([]byte(f.ConfigYAML))
	if err != nil {
		return nil, fmt.Errorf("fixture config: %w", err)
	}
	ds, err := f.ToDataset()
	if err != nil {
		return nil, fmt.Errorf("fixture dataset: %w", err)
	}

	sink := newCaptureSink()
	input, err := cfg.BuildInput(sink)
	if err != nil {
		return nil, fmt.Errorf("fixture stages: %w", err)
	}
	pipe, err := pipeline.Build(input)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// Failed runs are legitimate recordings; the diff below decides.
	res, _ := pipe.Run(ds, profile.Empty())

	out := &ReplayResult{
		Status:   res.Status,
		Rejected: map[string]string{},
	}
	out.Columns = res.Dataset.Names()
	for _, rec := range res.Records {
		out.Stages = append(out.Stages, FixtureStage{StageID: rec.StageID, Status: string(rec.Status)})
	}
	for _, sel := range sink.decisions {
		for col, rej := range sel.Rejected {
			out.Rejected[col] = string(rej.Criterion)
		}
	}

	out.Mismatches = diff(&f.Expected, out)
	return out, nil
}

// diff compares the recorded expectation against the replayed outcome.
func diff(want *FixtureExpected, got *ReplayResult) []string {
	var mismatches []string

	if want.Status != "" && want.Status != string(got.Status) {
		mismatches = append(mismatches, fmt.Sprintf("status: recorded %s, replayed %s", want.Status, got.Status))
	}

	if len(want.Columns) > 0 {
		if len(want.Columns) != len(got.Columns) {
			mismatches = append(mismatches, fmt.Sprintf("columns: recorded %d, replayed %d", len(want.Columns), len(got.Columns)))
		} else {
			for i, name := range want.Columns {
				if got.Columns[i] != name {
					mismatches = append(mismatches, fmt.Sprintf("column %d: recorded %q, replayed %q", i, name, got.Columns[i]))
				}
			}
		}
	}

	for col, crit := range want.Rejected {
		gc, ok := got.Rejected[col]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("column %q: recorded as rejected by %s, replay kept it", col, crit))
			continue
		}
		if gc != crit {
			mismatches = append(mismatches, fmt.Sprintf("column %q: recorded criterion %s, replayed %s", col, crit, gc))
		}
	}
	for col := range got.Rejected {
		if _, ok := want.Rejected[col]; !ok && len(want.Rejected) > 0 {
			mismatches = append(mismatches, fmt.Sprintf("column %q: replay rejected it, recording kept it", col))
		}
	}

	if len(want.Stages) > 0 {
		if len(want.Stages) != len(got.Stages) {
			mismatches = append(mismatches, fmt.Sprintf("stages: recorded %d records, replayed %d", len(want.Stages), len(got.Stages)))
		} else {
			for i, ws := range want.Stages {
				gs := got.Stages[i]
				if ws.StageID != gs.StageID || ws.Status != gs.Status {
					mismatches = append(mismatches, fmt.Sprintf("stage %d: recorded %s=%s, replayed %s=%s", i, ws.StageID, ws.Status, gs.StageID, gs.Status))
				}
			}
		}
	}
	return mismatches
}

// #endregion replay

// #region export

// Record runs the config over the given fixture columns and fills in the
// Expected block from the observed outcome.
func Record(description, configYAML string, cols []FixtureColumn) (*Fixture, error) {
	f := &Fixture{Description: description, ConfigYAML: configYAML, Dataset: cols}
	res, err := Replay(&Fixture{Description: description, ConfigYAML: configYAML, Dataset: cols})
	if err != nil {
		return nil, err
	}
	f.Expected = FixtureExpected{
		Status:   string(res.Status),
		Columns:  res.Columns,
		Rejected: res.Rejected,
		Stages:   res.Stages,
	}
	return f, nil
}

// #endregion export
