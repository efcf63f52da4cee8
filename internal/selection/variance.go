package selection

// #region imports
import (
	"fmt"
	"math"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region variance-threshold

// VarianceThreshold rejects numeric columns whose sample variance falls
// below Epsilon. Categorical columns are inapplicable and skipped, not
// scored as zero. A constant column has variance 0 and is always rejected.
type VarianceThreshold struct {
	Epsilon float64
}

// DefaultVarianceThreshold returns the criterion with a small positive
// epsilon so exactly-constant columns are the guaranteed rejects.
func DefaultVarianceThreshold() *VarianceThreshold {
	return &VarianceThreshold{Epsilon: 1e-8}
}

func (v *VarianceThreshold) Kind() CriterionKind      { return CriterionVariance }
func (v *VarianceThreshold) NeedsTarget() bool        { return false }
func (v *VarianceThreshold) Orientation() Orientation { return HigherIsBetter }

// Validate rejects a non-positive epsilon.
func (v *VarianceThreshold) Validate() error {
	if v.Epsilon <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("variance threshold epsilon must be positive, got %g", v.Epsilon)}
	}
	return nil
}

// Score returns the profile variance for each numeric candidate.
func (v *VarianceThreshold) Score(ds *dataset.Dataset, p *profile.DatasetProfile, target string) (map[string]float64, error) {
	scores := make(map[string]float64)
	for _, name := range candidates(ds, target) {
		cp, ok := p.Columns[name]
		if !ok || !cp.Kind.IsNumeric() || math.IsNaN(cp.Variance) {
			continue
		}
		scores[name] = cp.Variance
	}
	return scores, nil
}

// Decide rejects every scored column with variance below epsilon.
func (v *VarianceThreshold) Decide(ds *dataset.Dataset, p *profile.DatasetProfile, target string, scores map[string]float64) (map[string]string, error) {
	rejected := make(map[string]string)
	for name, s := range scores {
		if s < v.Epsilon {
			rejected[name] = fmt.Sprintf("variance %.6g below epsilon %.6g", s, v.Epsilon)
		}
	}
	return rejected, nil
}

// #endregion variance-threshold
