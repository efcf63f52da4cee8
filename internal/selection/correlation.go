package selection

// #region imports
import (
	"fmt"
	"math"
	"sort"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region correlation-filter

// CorrelationFilter drops one column from every pair whose |correlation|
// exceeds Threshold. The survivor is chosen by, in order: higher
// association with the target when one is supplied, higher variance,
// earlier original column order. Pairs are processed in lexicographic
// name order so repeated runs decide bit-for-bit identically.
type CorrelationFilter struct {
	Threshold float64
}

// DefaultCorrelationFilter returns the filter at the conventional 0.9 cut.
func DefaultCorrelationFilter() *CorrelationFilter {
	return &CorrelationFilter{Threshold: 0.9}
}

func (c *CorrelationFilter) Kind() CriterionKind      { return CriterionCorrelation }
func (c *CorrelationFilter) NeedsTarget() bool        { return false }
func (c *CorrelationFilter) Orientation() Orientation { return LowerIsBetter }

// Validate rejects thresholds outside (0, 1].
func (c *CorrelationFilter) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("correlation threshold must be in (0,1], got %g", c.Threshold)}
	}
	return nil
}

// Score maps each numeric candidate to the maximum |correlation| it shares
// with any other numeric candidate.
func (c *CorrelationFilter) Score(ds *dataset.Dataset, p *profile.DatasetProfile, target string) (map[string]float64, error) {
	names := numericCandidates(ds, p, target)
	scores := make(map[string]float64, len(names))
	for _, a := range names {
		max := 0.0
		for _, b := range names {
			if a == b {
				continue
			}
			r := math.Abs(p.Pairwise(a, b))
			if !math.IsNaN(r) && r > max {
				max = r
			}
		}
		scores[a] = max
	}
	return scores, nil
}

// Decide walks the over-threshold pairs in lexicographic order, rejecting
// the tie-break loser of each pair whose members both survive so far.
func (c *CorrelationFilter) Decide(ds *dataset.Dataset, p *profile.DatasetProfile, target string, scores map[string]float64) (map[string]string, error) {
	names := numericCandidates(ds, p, target)
	ordered := append([]string(nil), names...)
	sort.Strings(ordered)

	origPos := make(map[string]int, len(ds.Names()))
	for i, n := range ds.Names() {
		origPos[n] = i
	}

	rejected := make(map[string]string)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			a, b := ordered[i], ordered[j]
			if rejected[a] != "" || rejected[b] != "" {
				continue
			}
			r := p.Pairwise(a, b)
			if math.IsNaN(r) || math.Abs(r) <= c.Threshold {
				continue
			}
			loser := c.pickLoser(a, b, p, target, origPos)
			winner := a
			if loser == a {
				winner = b
			}
			rejected[loser] = fmt.Sprintf("|correlation| %.4f with %s exceeds threshold %.4f", math.Abs(r), winner, c.Threshold)
		}
	}
	return rejected, nil
}

// pickLoser applies the deterministic tie-break chain and returns the
// column to reject.
func (c *CorrelationFilter) pickLoser(a, b string, p *profile.DatasetProfile, target string, origPos map[string]int) string {
	pa, pb := p.Columns[a], p.Columns[b]

	if target != "" && pa.HasTargetCorr && pb.HasTargetCorr && pa.TargetCorr != pb.TargetCorr {
		if pa.TargetCorr > pb.TargetCorr {
			return b
		}
		return a
	}
	if !math.IsNaN(pa.Variance) && !math.IsNaN(pb.Variance) && pa.Variance != pb.Variance {
		if pa.Variance > pb.Variance {
			return b
		}
		return a
	}
	if origPos[a] < origPos[b] {
		return b
	}
	return a
}

// numericCandidates filters candidates down to numeric profiled columns,
// preserving original order.
func numericCandidates(ds *dataset.Dataset, p *profile.DatasetProfile, target string) []string {
	var out []string
	for _, n := range candidates(ds, target) {
		if cp, ok := p.Columns[n]; ok && cp.Kind.IsNumeric() {
			out = append(out, n)
		}
	}
	return out
}

// #endregion correlation-filter
