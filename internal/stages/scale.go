package stages

// #region imports
import (
	"fmt"
	"math"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region config

// ScaleMethod names a scaling transform.
type ScaleMethod string

const (
	ScaleStandard ScaleMethod = "standard" // zero mean, unit variance
	ScaleMinMax   ScaleMethod = "minmax"   // [0, 1] range
)

// ScalerConfig drives the Scaler stage.
type ScalerConfig struct {
	Method ScaleMethod
}

// DefaultScalerConfig standardizes.
func DefaultScalerConfig() ScalerConfig {
	return ScalerConfig{Method: ScaleStandard}
}

// #endregion config

// #region scaler

// Scaler puts every numeric column on a common scale. The target column is
// left as-is so downstream tests see its raw distribution.
type Scaler struct {
	StageID string
	Target  string
	Config  ScalerConfig
}

// NewScaler builds the stage.
func NewScaler(id, target string, config ScalerConfig) *Scaler {
	return &Scaler{StageID: id, Target: target, Config: config}
}

func (s *Scaler) ID() string         { return s.StageID }
func (s *Scaler) Requires() []string { return []string{profile.FieldSummary} }
func (s *Scaler) Produces() []string { return []string{profile.FieldScaled} }

// Validate rejects unknown methods.
func (s *Scaler) Validate() error {
	switch s.Config.Method {
	case ScaleStandard, ScaleMinMax:
		return nil
	}
	return fmt.Errorf("unknown scale method %q", s.Config.Method)
}

// Apply rescales numeric columns and refreshes the profile.
func (s *Scaler) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	cols := make([]dataset.Column, 0, len(ds.Columns()))
	for _, c := range ds.Columns() {
		if c.Name == s.Target || !c.Kind.IsNumeric() {
			cols = append(cols, c)
			continue
		}
		cols = append(cols, scaleColumn(c, s.Config.Method))
	}
	out, err := dataset.New(cols...)
	if err != nil {
		return nil, nil, err
	}
	next, err := reprofile(out, p, s.Target, profile.FieldScaled)
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// scaleColumn applies the method over the observed cells. Constant columns
// map to all zeros, matching the usual scaler convention.
func scaleColumn(c dataset.Column, method ScaleMethod) dataset.Column {
	out := dataset.Column{
		Name:    c.Name,
		Kind:    c.Kind,
		Num:     append([]float64(nil), c.Num...),
		Missing: append([]bool(nil), c.Missing...),
	}

	var vals []float64
	for i, v := range c.Num {
		if !c.Missing[i] {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return out
	}

	switch method {
	case ScaleStandard:
		var sum, sumSq float64
		for _, v := range vals {
			sum += v
			sumSq += v * v
		}
		n := float64(len(vals))
		mean := sum / n
		variance := sumSq/n - mean*mean
		std := math.Sqrt(math.Max(variance, 0))
		for i := range out.Num {
			if out.Missing[i] {
				continue
			}
			if std == 0 {
				out.Num[i] = 0
			} else {
				out.Num[i] = (out.Num[i] - mean) / std
			}
		}
	case ScaleMinMax:
		lo, hi := vals[0], vals[0]
		for _, v := range vals {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		for i := range out.Num {
			if out.Missing[i] {
				continue
			}
			if hi == lo {
				out.Num[i] = 0
			} else {
				out.Num[i] = (out.Num[i] - lo) / (hi - lo)
			}
		}
	}
	return out
}

// #endregion scaler
