// Package stages holds the concrete preprocessing stages: imputation,
// outlier treatment, scaling, categorical encoding, PCA projection,
// profile summarization, and the feature-selection adapter. Every stage
// conforms to the pipeline.Stage contract and emits the profile fields
// downstream stages consume.
package stages

// #region imports
import (
	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region reprofile

// reprofile recomputes the dataset profile after a transform, carrying
// forward the field guarantees of the predecessor profile and marking the
// stage's own contribution.
func reprofile(ds *dataset.Dataset, prev *profile.DatasetProfile, target string, mark ...string) (*profile.DatasetProfile, error) {
	p, err := profile.Summarize(ds, target)
	if err != nil {
		return nil, err
	}
	p.Carry(prev)
	p.Mark(mark...)
	return p, nil
}

// #endregion reprofile
