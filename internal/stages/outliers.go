package stages

// #region imports
import (
	"fmt"
	"sort"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region config

// OutlierConfig drives the OutlierTreater stage.
type OutlierConfig struct {
	// Factor is the IQR fence multiplier; 1.5 is the Tukey convention.
	Factor float64
}

// DefaultOutlierConfig returns Tukey fences.
func DefaultOutlierConfig() OutlierConfig {
	return OutlierConfig{Factor: 1.5}
}

// #endregion config

// #region outlier-treater

// OutlierTreater clamps numeric values to the IQR fences
// [q1 - factor*iqr, q3 + factor*iqr] per column. Categorical columns pass
// through untouched.
type OutlierTreater struct {
	StageID string
	Target  string
	Config  OutlierConfig
}

// NewOutlierTreater builds the stage.
func NewOutlierTreater(id, target string, config OutlierConfig) *OutlierTreater {
	return &OutlierTreater{StageID: id, Target: target, Config: config}
}

func (o *OutlierTreater) ID() string         { return o.StageID }
func (o *OutlierTreater) Requires() []string { return []string{profile.FieldSummary} }
func (o *OutlierTreater) Produces() []string { return []string{profile.FieldOutlierFree} }

// Validate rejects a non-positive fence factor.
func (o *OutlierTreater) Validate() error {
	if o.Config.Factor <= 0 {
		return fmt.Errorf("outlier fence factor must be positive, got %g", o.Config.Factor)
	}
	return nil
}

// Apply clamps each numeric column and refreshes the profile.
func (o *OutlierTreater) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	cols := make([]dataset.Column, 0, len(ds.Columns()))
	for _, c := range ds.Columns() {
		if c.Name == o.Target || !c.Kind.IsNumeric() {
			cols = append(cols, c)
			continue
		}
		cols = append(cols, clampColumn(c, o.Config.Factor))
	}
	out, err := dataset.New(cols...)
	if err != nil {
		return nil, nil, err
	}
	next, err := reprofile(out, p, o.Target, profile.FieldOutlierFree)
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// clampColumn clips one numeric column to its IQR fences.
func clampColumn(c dataset.Column, factor float64) dataset.Column {
	vals := make([]float64, 0, len(c.Num))
	for i, v := range c.Num {
		if !c.Missing[i] {
			vals = append(vals, v)
		}
	}
	if len(vals) < 4 {
		return c
	}
	sort.Float64s(vals)
	q1 := percentile(vals, 25)
	q3 := percentile(vals, 75)
	iqr := q3 - q1
	lo, hi := q1-factor*iqr, q3+factor*iqr

	out := dataset.Column{
		Name:    c.Name,
		Kind:    c.Kind,
		Num:     append([]float64(nil), c.Num...),
		Missing: append([]bool(nil), c.Missing...),
	}
	for i, v := range out.Num {
		if out.Missing[i] {
			continue
		}
		if v < lo {
			out.Num[i] = lo
		} else if v > hi {
			out.Num[i] = hi
		}
	}
	return out
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// #endregion outlier-treater
