package selection

// #region imports
import (
	"fmt"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region importance

// ImportanceFunc is the injected surrogate scorer for recursive elimination:
// importance per live column against the target. Higher means keep.
type ImportanceFunc func(ds *dataset.Dataset, target string) (map[string]float64, error)

// AssociationImportance is the built-in fallback scorer: |association| with
// the target (Pearson or correlation ratio depending on column kinds).
func AssociationImportance(ds *dataset.Dataset, target string) (map[string]float64, error) {
	tcol, ok := ds.Column(target)
	if !ok {
		return nil, fmt.Errorf("importance: target column %q not found", target)
	}
	out := make(map[string]float64)
	for _, c := range ds.Columns() {
		if c.Name == target {
			continue
		}
		if assoc, applicable := profile.Association(c, tcol); applicable {
			out[c.Name] = assoc
		}
	}
	return out, nil
}

// #endregion importance

// #region recursive-elimination

// RecursiveElimination drops the single lowest-importance column per round,
// rescoring after each drop, until TargetCount columns remain or the
// minimum importance reaches Floor. Iterations are hard-capped at the
// initial column count; the target and pinned columns are never dropped.
type RecursiveElimination struct {
	TargetCount int
	Floor       float64
	Pinned      []string
	Importance  ImportanceFunc
}

// DefaultRecursiveElimination keeps the top half of the candidates using
// the built-in association scorer.
func DefaultRecursiveElimination(targetCount int) *RecursiveElimination {
	return &RecursiveElimination{TargetCount: targetCount, Importance: AssociationImportance}
}

func (r *RecursiveElimination) Kind() CriterionKind      { return CriterionRFE }
func (r *RecursiveElimination) NeedsTarget() bool        { return true }
func (r *RecursiveElimination) Orientation() Orientation { return HigherIsBetter }

// Validate requires a stopping condition so the loop is bounded by intent,
// not only by the iteration cap.
func (r *RecursiveElimination) Validate() error {
	if r.TargetCount < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("rfe target count must not be negative, got %d", r.TargetCount)}
	}
	if r.TargetCount == 0 && r.Floor <= 0 {
		return &ConfigurationError{Reason: "rfe requires a target column count or an importance floor"}
	}
	return nil
}

// Score returns each candidate's importance at the moment it was dropped,
// or its final-round importance if it survived.
func (r *RecursiveElimination) Score(ds *dataset.Dataset, p *profile.DatasetProfile, target string) (map[string]float64, error) {
	scores, _, err := r.eliminate(ds, target)
	return scores, err
}

// Decide returns the eliminated columns with per-round reasons.
func (r *RecursiveElimination) Decide(ds *dataset.Dataset, p *profile.DatasetProfile, target string, scores map[string]float64) (map[string]string, error) {
	_, rejected, err := r.eliminate(ds, target)
	return rejected, err
}

// eliminate runs the full elimination loop. Deterministic for fixed input,
// so Score and Decide agree without shared state.
func (r *RecursiveElimination) eliminate(ds *dataset.Dataset, target string) (map[string]float64, map[string]string, error) {
	scorer := r.Importance
	if scorer == nil {
		scorer = AssociationImportance
	}

	pinned := make(map[string]bool, len(r.Pinned))
	for _, n := range r.Pinned {
		pinned[n] = true
	}

	origPos := make(map[string]int, len(ds.Names()))
	for i, n := range ds.Names() {
		origPos[n] = i
	}

	live := ds.Clone()
	scores := make(map[string]float64)
	rejected := make(map[string]string)

	cap := len(ds.Names())
	for round := 1; round <= cap; round++ {
		imp, err := scorer(live, target)
		if err != nil {
			return nil, nil, fmt.Errorf("rfe round %d: %w", round, err)
		}
		for n, v := range imp {
			scores[n] = v
		}

		// Droppable columns, lowest importance first; ties resolved by
		// original column order for reproducibility.
		drop := ""
		dropImp := 0.0
		for _, n := range live.Names() {
			if n == target || pinned[n] {
				continue
			}
			v, ok := imp[n]
			if !ok {
				continue
			}
			if drop == "" || v < dropImp || (v == dropImp && origPos[n] < origPos[drop]) {
				drop, dropImp = n, v
			}
		}
		if drop == "" {
			break
		}

		remaining := len(live.Names())
		if live.Has(target) {
			remaining-- // the target is not a candidate
		}
		if r.TargetCount > 0 && remaining <= r.TargetCount {
			break
		}
		if r.Floor > 0 && dropImp >= r.Floor {
			break
		}

		rejected[drop] = fmt.Sprintf("importance %.4g lowest in elimination round %d", dropImp, round)
		live = live.Drop(drop)
	}
	return scores, rejected, nil
}

// #endregion recursive-elimination
