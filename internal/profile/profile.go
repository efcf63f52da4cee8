package profile

// #region imports
import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/prepflow/prepflow/internal/dataset"
)

// #endregion

// #region fields

// Profile field names declared by stages as requires/produces. The
// orchestrator uses them for dependency ordering and post-stage checks.
const (
	FieldSummary      = "summary"      // per-column statistics populated
	FieldCorrelations = "correlations" // pairwise correlation matrix populated
	FieldNoMissing    = "no_missing"   // no masked cells remain
	FieldOutlierFree  = "outlier_free" // numeric values clamped to IQR fences
	FieldEncoded      = "encoded"      // all live columns numeric
	FieldScaled       = "scaled"       // numeric columns on a common scale
	FieldSelected     = "selected"     // feature selection applied
	FieldProjected    = "projected"    // dimensionality reduction applied
)

// #endregion fields

// #region column-profile

// ColumnProfile carries the per-column statistics consumed by selection
// criteria. Variance is NaN for categorical columns not yet encoded;
// reading it for such a column is a caller bug.
type ColumnProfile struct {
	Name          string
	Kind          dataset.Kind
	MissingRatio  float64
	Variance      float64
	Cardinality   int
	TargetCorr    float64 // |association| with the target column
	HasTargetCorr bool
}

// #endregion column-profile

// #region dataset-profile

// DatasetProfile maps column names to their profiles and holds the pairwise
// correlation matrix aligned with Order. The matrix is recomputed whole,
// never patched, whenever the live column set changes.
type DatasetProfile struct {
	Columns map[string]ColumnProfile
	Order   []string
	Corr    [][]float64
	Fields  map[string]bool
}

// Empty returns a profile with no fields populated, the usual starting
// point for a pipeline whose first stage is a summarizer.
func Empty() *DatasetProfile {
	return &DatasetProfile{
		Columns: make(map[string]ColumnProfile),
		Fields:  make(map[string]bool),
	}
}

// Has reports whether a profile field has been populated.
func (p *DatasetProfile) Has(field string) bool {
	return p != nil && p.Fields[field]
}

// Mark records a populated profile field.
func (p *DatasetProfile) Mark(fields ...string) {
	if p.Fields == nil {
		p.Fields = make(map[string]bool, len(fields))
	}
	for _, f := range fields {
		p.Fields[f] = true
	}
}

// Carry copies the field flags from a predecessor profile. Used by stages
// that recompute statistics without invalidating earlier guarantees.
func (p *DatasetProfile) Carry(prev *DatasetProfile) {
	if prev == nil {
		return
	}
	for f, ok := range prev.Fields {
		if ok {
			p.Mark(f)
		}
	}
}

// Pairwise returns the correlation between two live columns, NaN when either
// column is non-numeric or unknown.
func (p *DatasetProfile) Pairwise(a, b string) float64 {
	ia, ib := -1, -1
	for i, n := range p.Order {
		if n == a {
			ia = i
		}
		if n == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return math.NaN()
	}
	return p.Corr[ia][ib]
}

// #endregion dataset-profile

// #region summarize

// Summarize computes a fresh DatasetProfile: per-column missing ratio,
// cardinality, sample variance for numeric columns, association with the
// target when one is named, and the full pairwise correlation matrix.
func Summarize(ds *dataset.Dataset, target string) (*DatasetProfile, error) {
	if target != "" && !ds.Has(target) {
		return nil, fmt.Errorf("summarize: target column %q not in dataset", target)
	}

	p := &DatasetProfile{
		Columns: make(map[string]ColumnProfile, len(ds.Columns())),
		Order:   ds.Names(),
		Fields:  make(map[string]bool),
	}

	var tcol dataset.Column
	if target != "" {
		tcol, _ = ds.Column(target)
	}

	rows := ds.Rows()
	for _, c := range ds.Columns() {
		cp := ColumnProfile{Name: c.Name, Kind: c.Kind, Variance: math.NaN()}
		if rows > 0 {
			cp.MissingRatio = float64(c.MissingCount()) / float64(rows)
		}
		cp.Cardinality = cardinality(c)
		if c.Kind.IsNumeric() {
			cp.Variance = columnVariance(c)
		}
		if target != "" && c.Name != target {
			if assoc, ok := targetAssociation(c, tcol); ok {
				cp.TargetCorr = assoc
				cp.HasTargetCorr = true
			}
		}
		p.Columns[c.Name] = cp
	}

	p.Corr = correlationMatrix(ds)
	p.Mark(FieldSummary, FieldCorrelations)
	return p, nil
}

// cardinality counts distinct non-missing values.
func cardinality(c dataset.Column) int {
	if c.Kind.IsNumeric() {
		seen := make(map[float64]struct{})
		for i, v := range c.Num {
			if !c.Missing[i] {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	}
	seen := make(map[string]struct{})
	for i, v := range c.Cat {
		if !c.Missing[i] {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// columnVariance computes the sample variance over non-missing cells.
func columnVariance(c dataset.Column) float64 {
	vals := make([]float64, 0, len(c.Num))
	for i, v := range c.Num {
		if !c.Missing[i] {
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 {
		return 0
	}
	return stat.Variance(vals, nil)
}

// #endregion summarize

// #region correlation

// correlationMatrix builds the symmetric Pearson matrix over all live
// columns. Entries involving a non-numeric column are NaN; the diagonal
// is 1 by definition.
func correlationMatrix(ds *dataset.Dataset) [][]float64 {
	cols := ds.Columns()
	n := len(cols)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = math.NaN()
		}
		m[i][i] = 1
	}
	for i := 0; i < n; i++ {
		if !cols[i].Kind.IsNumeric() {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !cols[j].Kind.IsNumeric() {
				continue
			}
			r := pairwiseCorrelation(cols[i], cols[j])
			m[i][j] = r
			m[j][i] = r
		}
	}
	return m
}

// pairwiseCorrelation computes Pearson correlation over rows where both
// cells are present. Returns 0 when either side is constant.
func pairwiseCorrelation(a, b dataset.Column) float64 {
	var xs, ys []float64
	for i := range a.Num {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Num[i])
		ys = append(ys, b.Num[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Association exposes the candidate/target association measure for callers
// outside the summarizer (e.g. the default importance scorer).
func Association(c, target dataset.Column) (float64, bool) {
	return targetAssociation(c, target)
}

// targetAssociation computes |association| between a candidate column and
// the target: Pearson for numeric/numeric, correlation ratio (eta) when
// exactly one side is categorical. Categorical/categorical pairs report
// no association here; the chi-square criterion covers them.
func targetAssociation(c, target dataset.Column) (float64, bool) {
	switch {
	case c.Kind.IsNumeric() && target.Kind.IsNumeric():
		return math.Abs(pairwiseCorrelation(c, target)), true
	case c.Kind.IsNumeric() && !target.Kind.IsNumeric():
		return correlationRatio(c, target), true
	case !c.Kind.IsNumeric() && target.Kind.IsNumeric():
		return correlationRatio(target, c), true
	}
	return 0, false
}

// correlationRatio computes eta: sqrt(between-group variance share) of a
// numeric column grouped by a categorical column.
func correlationRatio(num, group dataset.Column) float64 {
	groups := make(map[string][]float64)
	var all []float64
	for i := range num.Num {
		if num.Missing[i] || group.Missing[i] {
			continue
		}
		groups[group.Cat[i]] = append(groups[group.Cat[i]], num.Num[i])
		all = append(all, num.Num[i])
	}
	if len(all) < 2 || len(groups) < 2 {
		return 0
	}
	grand := stat.Mean(all, nil)
	var ssBetween, ssTotal float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (m - grand) * (m - grand)
	}
	for _, v := range all {
		ssTotal += (v - grand) * (v - grand)
	}
	if ssTotal == 0 {
		return 0
	}
	return math.Sqrt(ssBetween / ssTotal)
}

// #endregion correlation
