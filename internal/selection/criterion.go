// Package selection implements the feature-selection engine: four scoring
// criteria and a selector that combines their reject decisions under a
// configurable policy. Criteria are stateless; all thresholds travel in
// explicit config structs.
package selection

// #region imports
import (
	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region configuration-error

// ConfigurationError reports invalid or contradictory selection
// configuration, detected before any data is rewritten.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// #endregion configuration-error

// #region criterion-kind

// CriterionKind identifies a selection criterion variant.
type CriterionKind string

const (
	CriterionVariance    CriterionKind = "variance"
	CriterionCorrelation CriterionKind = "correlation"
	CriterionStatTest    CriterionKind = "stat_test"
	CriterionRFE         CriterionKind = "rfe"
)

// #endregion criterion-kind

// #region orientation

// Orientation states whether a higher criterion score argues for keeping
// the column. Used by the weighted combination policy to align scales.
type Orientation int

const (
	HigherIsBetter Orientation = iota
	LowerIsBetter
)

// #endregion orientation

// #region criterion-interface

// Criterion scores candidate columns and decides which to reject. A column
// a criterion cannot judge (e.g. a categorical column under a variance
// threshold) is skipped: absent from the score map and never rejected.
// The target column is never a candidate.
type Criterion interface {
	Kind() CriterionKind
	NeedsTarget() bool
	Orientation() Orientation

	// Validate checks the criterion's own configuration. Called at build
	// time, before any data is touched.
	Validate() error

	// Score maps each applicable candidate column to its score.
	Score(ds *dataset.Dataset, p *profile.DatasetProfile, target string) (map[string]float64, error)

	// Decide returns the rejected columns with a human-readable reason each.
	// scores is the map produced by Score on the same inputs.
	Decide(ds *dataset.Dataset, p *profile.DatasetProfile, target string, scores map[string]float64) (map[string]string, error)
}

// #endregion criterion-interface

// #region candidates

// candidates returns the live column names minus the target, in original
// dataset order.
func candidates(ds *dataset.Dataset, target string) []string {
	var out []string
	for _, n := range ds.Names() {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// #endregion candidates
