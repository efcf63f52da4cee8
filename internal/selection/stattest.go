package selection

// #region imports
import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region statistical-test

// StatisticalTest scores each candidate column against the target with a
// kind-appropriate test and rejects on the resulting p-value:
//
//	categorical target, categorical candidate -> chi-square independence
//	categorical target, numeric candidate     -> one-way ANOVA
//	numeric target, numeric candidate         -> Pearson correlation t-test
//	numeric target, categorical candidate     -> one-way ANOVA (candidate groups)
//
// With TopK == 0 a column is rejected when p > Alpha; with TopK > 0 only
// the K lowest p-values survive. Mode selection is explicit configuration,
// never automatic.
type StatisticalTest struct {
	Alpha float64
	TopK  int
}

// DefaultStatisticalTest returns the test at the 0.05 significance level.
func DefaultStatisticalTest() *StatisticalTest {
	return &StatisticalTest{Alpha: 0.05}
}

func (s *StatisticalTest) Kind() CriterionKind      { return CriterionStatTest }
func (s *StatisticalTest) NeedsTarget() bool        { return true }
func (s *StatisticalTest) Orientation() Orientation { return LowerIsBetter }

// Validate rejects a significance level outside (0,1) and a negative TopK.
func (s *StatisticalTest) Validate() error {
	if s.TopK < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("stat test top-k must not be negative, got %d", s.TopK)}
	}
	if s.TopK == 0 && (s.Alpha <= 0 || s.Alpha >= 1) {
		return &ConfigurationError{Reason: fmt.Sprintf("stat test significance level must be in (0,1), got %g", s.Alpha)}
	}
	return nil
}

// Score returns a p-value per candidate column.
func (s *StatisticalTest) Score(ds *dataset.Dataset, p *profile.DatasetProfile, target string) (map[string]float64, error) {
	tcol, ok := ds.Column(target)
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("statistical test requires a target column, %q not found", target)}
	}

	scores := make(map[string]float64)
	for _, name := range candidates(ds, target) {
		c, _ := ds.Column(name)
		pv, applicable := pValue(c, tcol)
		if !applicable {
			continue
		}
		scores[name] = pv
	}
	return scores, nil
}

// Decide applies either the significance cut or the top-k cut.
func (s *StatisticalTest) Decide(ds *dataset.Dataset, p *profile.DatasetProfile, target string, scores map[string]float64) (map[string]string, error) {
	rejected := make(map[string]string)
	if s.TopK > 0 {
		type scored struct {
			name string
			p    float64
		}
		ranked := make([]scored, 0, len(scores))
		for n, pv := range scores {
			ranked = append(ranked, scored{n, pv})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].p != ranked[j].p {
				return ranked[i].p < ranked[j].p
			}
			return ranked[i].name < ranked[j].name
		})
		for i := s.TopK; i < len(ranked); i++ {
			rejected[ranked[i].name] = fmt.Sprintf("p-value %.4g not within top %d", ranked[i].p, s.TopK)
		}
		return rejected, nil
	}
	for name, pv := range scores {
		if pv > s.Alpha {
			rejected[name] = fmt.Sprintf("p-value %.4g exceeds significance level %.2g", pv, s.Alpha)
		}
	}
	return rejected, nil
}

// #endregion statistical-test

// #region p-values

// pValue dispatches to the test matching the candidate/target kinds.
// Returns applicable=false when no test fits (e.g. too few complete rows).
func pValue(c, target dataset.Column) (float64, bool) {
	switch {
	case !target.Kind.IsNumeric() && !c.Kind.IsNumeric():
		return chiSquareP(c, target)
	case !target.Kind.IsNumeric() && c.Kind.IsNumeric():
		return anovaP(c, target)
	case target.Kind.IsNumeric() && c.Kind.IsNumeric():
		return pearsonP(c, target)
	default:
		return anovaP(target, c)
	}
}

// chiSquareP runs a chi-square test of independence on the contingency
// table of two categorical columns over complete rows.
func chiSquareP(a, b dataset.Column) (float64, bool) {
	counts := make(map[string]map[string]float64)
	rowTotals := make(map[string]float64)
	colTotals := make(map[string]float64)
	var n float64
	for i := range a.Cat {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		av, bv := a.Cat[i], b.Cat[i]
		if counts[av] == nil {
			counts[av] = make(map[string]float64)
		}
		counts[av][bv]++
		rowTotals[av]++
		colTotals[bv]++
		n++
	}
	if n < 2 || len(rowTotals) < 2 || len(colTotals) < 2 {
		return 0, false
	}

	var x2 float64
	for av, row := range counts {
		for bv := range colTotals {
			expected := rowTotals[av] * colTotals[bv] / n
			if expected == 0 {
				continue
			}
			observed := row[bv]
			d := observed - expected
			x2 += d * d / expected
		}
	}
	dof := float64((len(rowTotals) - 1) * (len(colTotals) - 1))
	return distuv.ChiSquared{K: dof}.Survival(x2), true
}

// anovaP runs a one-way ANOVA of a numeric column grouped by a categorical
// column and returns the F-test p-value.
func anovaP(num, group dataset.Column) (float64, bool) {
	groups := make(map[string][]float64)
	var all []float64
	for i := range num.Num {
		if num.Missing[i] || group.Missing[i] {
			continue
		}
		groups[group.Cat[i]] = append(groups[group.Cat[i]], num.Num[i])
		all = append(all, num.Num[i])
	}
	k := len(groups)
	n := len(all)
	if k < 2 || n <= k {
		return 0, false
	}

	grand := stat.Mean(all, nil)
	var ssBetween, ssWithin float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}
	if ssWithin == 0 {
		if ssBetween > 0 {
			return 0, true
		}
		return 1, true
	}
	f := (ssBetween / float64(k-1)) / (ssWithin / float64(n-k))
	return distuv.F{D1: float64(k - 1), D2: float64(n - k)}.Survival(f), true
}

// pearsonP computes the two-sided p-value of the Pearson correlation
// between two numeric columns via the t statistic.
func pearsonP(a, b dataset.Column) (float64, bool) {
	var xs, ys []float64
	for i := range a.Num {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Num[i])
		ys = append(ys, b.Num[i])
	}
	n := len(xs)
	if n < 3 {
		return 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 1, true
	}
	if r*r >= 1 {
		return 0, true
	}
	t := math.Abs(r) * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.Survival(t), true
}

// #endregion p-values
