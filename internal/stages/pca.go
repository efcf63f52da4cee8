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

// PCAConfig drives the PCAProjector stage.
type PCAConfig struct {
	Components int
	MaxIters   int
}

// DefaultPCAConfig keeps two components.
func DefaultPCAConfig() PCAConfig {
	return PCAConfig{Components: 2, MaxIters: 100}
}

// #endregion config

// #region pca-projector

// PCAProjector replaces the numeric candidate columns with their top-k
// principal components, computed by power iteration with deflation. The
// target column passes through. Power iteration starts from a fixed seed
// vector so repeated runs project identically.
type PCAProjector struct {
	StageID string
	Target  string
	Config  PCAConfig
}

// NewPCAProjector builds the stage.
func NewPCAProjector(id, target string, config PCAConfig) *PCAProjector {
	return &PCAProjector{StageID: id, Target: target, Config: config}
}

func (pr *PCAProjector) ID() string { return pr.StageID }
func (pr *PCAProjector) Requires() []string {
	return []string{profile.FieldNoMissing, profile.FieldScaled}
}
func (pr *PCAProjector) Produces() []string { return []string{profile.FieldProjected} }

// Validate rejects non-positive dimensions.
func (pr *PCAProjector) Validate() error {
	if pr.Config.Components <= 0 {
		return fmt.Errorf("pca components must be positive, got %d", pr.Config.Components)
	}
	if pr.Config.MaxIters <= 0 {
		return fmt.Errorf("pca max iterations must be positive, got %d", pr.Config.MaxIters)
	}
	return nil
}

// Apply projects the numeric candidates onto the principal components.
func (pr *PCAProjector) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	var numeric []dataset.Column
	var passthrough []dataset.Column
	for _, c := range ds.Columns() {
		if c.Name != pr.Target && c.Kind.IsNumeric() {
			numeric = append(numeric, c)
		} else {
			passthrough = append(passthrough, c)
		}
	}
	k := pr.Config.Components
	if k > len(numeric) {
		k = len(numeric)
	}
	if k == 0 {
		return nil, nil, fmt.Errorf("no numeric columns to project")
	}

	rows := ds.Rows()
	d := len(numeric)

	// Center the matrix column-wise.
	x := make([][]float64, rows)
	means := make([]float64, d)
	for j, c := range numeric {
		sum := 0.0
		for _, v := range c.Num {
			sum += v
		}
		if rows > 0 {
			means[j] = sum / float64(rows)
		}
	}
	for i := 0; i < rows; i++ {
		x[i] = make([]float64, d)
		for j, c := range numeric {
			x[i][j] = c.Num[i] - means[j]
		}
	}

	components := powerIteration(x, k, pr.Config.MaxIters)

	cols := make([]dataset.Column, 0, k+len(passthrough))
	for ki, comp := range components {
		col := dataset.Column{
			Name:    fmt.Sprintf("pc%d", ki+1),
			Kind:    dataset.KindNumeric,
			Num:     make([]float64, rows),
			Missing: make([]bool, rows),
		}
		for i := 0; i < rows; i++ {
			var dot float64
			for j := 0; j < d; j++ {
				dot += x[i][j] * comp[j]
			}
			col.Num[i] = dot
		}
		cols = append(cols, col)
	}
	cols = append(cols, passthrough...)

	out, err := dataset.New(cols...)
	if err != nil {
		return nil, nil, err
	}
	next, err := reprofile(out, p, pr.Target, profile.FieldProjected, profile.FieldNoMissing, profile.FieldScaled)
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// #endregion pca-projector

// #region power-iteration

// powerIteration extracts k unit eigenvectors of x'x by repeated
// multiplication with deflation between components.
func powerIteration(x [][]float64, k, maxIters int) [][]float64 {
	rows := len(x)
	if rows == 0 {
		return nil
	}
	d := len(x[0])

	// Work on a copy so deflation does not touch the caller's matrix.
	work := make([][]float64, rows)
	for i := range x {
		work[i] = append([]float64(nil), x[i]...)
	}

	components := make([][]float64, 0, k)
	for ki := 0; ki < k; ki++ {
		// Deterministic start vector.
		v := make([]float64, d)
		for j := range v {
			v[j] = 1 / math.Sqrt(float64(d))
		}

		for iter := 0; iter < maxIters; iter++ {
			// w = X' (X v)
			xv := make([]float64, rows)
			for i := 0; i < rows; i++ {
				var dot float64
				for j := 0; j < d; j++ {
					dot += work[i][j] * v[j]
				}
				xv[i] = dot
			}
			w := make([]float64, d)
			for i := 0; i < rows; i++ {
				for j := 0; j < d; j++ {
					w[j] += work[i][j] * xv[i]
				}
			}
			norm := 0.0
			for _, val := range w {
				norm += val * val
			}
			norm = math.Sqrt(norm)
			if norm == 0 {
				break
			}
			delta := 0.0
			for j := range w {
				w[j] /= norm
				delta += math.Abs(w[j] - v[j])
			}
			v = w
			if delta < 1e-10 {
				break
			}
		}
		components = append(components, v)

		// Deflate: remove the found component from every row.
		for i := 0; i < rows; i++ {
			var dot float64
			for j := 0; j < d; j++ {
				dot += work[i][j] * v[j]
			}
			for j := 0; j < d; j++ {
				work[i][j] -= dot * v[j]
			}
		}
	}
	return components
}

// #endregion power-iteration
