package selection

// #region imports
import (
	"fmt"
	"math"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region policy

// Policy combines the reject decisions of multiple criteria.
type Policy string

const (
	// PolicyUnion rejects a column when any criterion rejects it.
	PolicyUnion Policy = "union"
	// PolicyIntersection rejects a column only when every configured
	// criterion rejects it.
	PolicyIntersection Policy = "intersection"
	// PolicyWeighted normalizes criterion scores, averages them with the
	// configured weights, and rejects below AggregateThreshold.
	PolicyWeighted Policy = "weighted"
)

// #endregion policy

// #region config

// Config drives one selection pass. No process-wide defaults exist;
// callers start from DefaultConfig and override.
type Config struct {
	Policy             Policy
	Criteria           []Criterion
	Weights            map[CriterionKind]float64 // weighted policy; missing kinds weigh 1
	AggregateThreshold float64                   // weighted policy reject cut
	Pinned             []string                  // never rejected
}

// DefaultConfig returns a union policy with no criteria configured.
func DefaultConfig() Config {
	return Config{Policy: PolicyUnion, AggregateThreshold: 0.5}
}

// #endregion config

// #region result

// Rejection names the criterion that rejected a column and why.
type Rejection struct {
	Criterion CriterionKind
	Reason    string
}

// Result is the immutable outcome of one selection pass. Kept preserves
// the original column order and excludes the target column, which the
// caller re-attaches to the reduced dataset.
type Result struct {
	Kept     []string
	Rejected map[string]Rejection
	Scores   map[CriterionKind]map[string]float64
}

// #endregion result

// #region selector

// FeatureSelector combines the configured criteria into a single
// kept/rejected decision per column.
type FeatureSelector struct {
	config Config
}

// NewFeatureSelector wraps a Config. Validate catches bad configuration
// before Select touches data.
func NewFeatureSelector(config Config) *FeatureSelector {
	return &FeatureSelector{config: config}
}

// Validate fails fast on an empty criteria list, an unknown policy, an
// invalid criterion config, or a target-requiring criterion without a
// target.
func (s *FeatureSelector) Validate(target string) error {
	if len(s.config.Criteria) == 0 {
		return &ConfigurationError{Reason: "no selection criteria configured"}
	}
	switch s.config.Policy {
	case PolicyUnion, PolicyIntersection, PolicyWeighted:
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown combination policy %q", s.config.Policy)}
	}
	if s.config.Policy == PolicyWeighted && (s.config.AggregateThreshold <= 0 || s.config.AggregateThreshold >= 1) {
		return &ConfigurationError{Reason: fmt.Sprintf("weighted aggregate threshold must be in (0,1), got %g", s.config.AggregateThreshold)}
	}
	for _, c := range s.config.Criteria {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.NeedsTarget() && target == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("criterion %q requires a target column but none was supplied", c.Kind())}
		}
	}
	return nil
}

// Select runs every criterion and combines their decisions. An outcome
// that would reject all candidates is a ConfigurationError and leaves the
// dataset untouched.
func (s *FeatureSelector) Select(ds *dataset.Dataset, p *profile.DatasetProfile, target string) (Result, error) {
	if err := s.Validate(target); err != nil {
		return Result{}, err
	}

	cands := candidates(ds, target)
	pinned := make(map[string]bool, len(s.config.Pinned))
	for _, n := range s.config.Pinned {
		pinned[n] = true
	}

	allScores := make(map[CriterionKind]map[string]float64, len(s.config.Criteria))
	allRejects := make([]map[string]string, len(s.config.Criteria))
	for i, c := range s.config.Criteria {
		scores, err := c.Score(ds, p, target)
		if err != nil {
			return Result{}, fmt.Errorf("criterion %s score: %w", c.Kind(), err)
		}
		rejects, err := c.Decide(ds, p, target, scores)
		if err != nil {
			return Result{}, fmt.Errorf("criterion %s decide: %w", c.Kind(), err)
		}
		allScores[c.Kind()] = scores
		allRejects[i] = rejects
	}

	rejected := make(map[string]Rejection)
	switch s.config.Policy {
	case PolicyUnion:
		for i, c := range s.config.Criteria {
			for name, reason := range allRejects[i] {
				if _, done := rejected[name]; !done {
					rejected[name] = Rejection{Criterion: c.Kind(), Reason: reason}
				}
			}
		}
	case PolicyIntersection:
		for _, name := range cands {
			all := true
			for i := range s.config.Criteria {
				if _, r := allRejects[i][name]; !r {
					all = false
					break
				}
			}
			if all {
				first := s.config.Criteria[0]
				rejected[name] = Rejection{Criterion: first.Kind(), Reason: allRejects[0][name] + " (all criteria agree)"}
			}
		}
	case PolicyWeighted:
		rejected = s.weightedRejects(cands, allScores)
	}

	// Pinned columns survive regardless of score.
	for name := range rejected {
		if pinned[name] {
			delete(rejected, name)
		}
	}

	kept := make([]string, 0, len(cands))
	for _, name := range cands {
		if _, r := rejected[name]; !r {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return Result{}, &ConfigurationError{Reason: "combined criteria reject every column; loosen thresholds or pin required columns"}
	}

	return Result{Kept: kept, Rejected: rejected, Scores: allScores}, nil
}

// #endregion selector

// #region weighted

// weightedRejects normalizes each criterion's scores to [0,1] goodness
// (flipping lower-is-better criteria), averages with the configured
// weights, and rejects candidates below the aggregate threshold. Columns
// no criterion scored are kept.
func (s *FeatureSelector) weightedRejects(cands []string, allScores map[CriterionKind]map[string]float64) map[string]Rejection {
	goodness := make(map[CriterionKind]map[string]float64, len(s.config.Criteria))
	for _, c := range s.config.Criteria {
		goodness[c.Kind()] = normalizeScores(allScores[c.Kind()], c.Orientation())
	}

	rejected := make(map[string]Rejection)
	for _, name := range cands {
		var sum, wsum float64
		for _, c := range s.config.Criteria {
			g, ok := goodness[c.Kind()][name]
			if !ok {
				continue
			}
			w := 1.0
			if cw, set := s.config.Weights[c.Kind()]; set {
				w = cw
			}
			sum += w * g
			wsum += w
		}
		if wsum == 0 {
			continue
		}
		agg := sum / wsum
		if agg < s.config.AggregateThreshold {
			rejected[name] = Rejection{
				Criterion: CriterionKind("weighted"),
				Reason:    fmt.Sprintf("aggregate score %.4f below threshold %.4f", agg, s.config.AggregateThreshold),
			}
		}
	}
	return rejected
}

// normalizeScores min-max scales a score map to [0,1]; a flat map maps to
// all 1 (no criterion preference).
func normalizeScores(scores map[string]float64, o Orientation) map[string]float64 {
	out := make(map[string]float64, len(scores))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range scores {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for n, v := range scores {
		g := 1.0
		if hi > lo {
			g = (v - lo) / (hi - lo)
			if o == LowerIsBetter {
				g = 1 - g
			}
		}
		out[n] = g
	}
	return out
}

// #endregion weighted
