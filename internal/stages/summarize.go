package stages

// #region imports
import (
	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region summarize-stage

// Summarize is the profile-producing collaborator: it computes the initial
// DatasetProfile from the raw dataset and refreshes it when placed later
// in the pipeline.
type Summarize struct {
	StageID string
	Target  string
}

// NewSummarize builds the stage. target may be empty.
func NewSummarize(id, target string) *Summarize {
	return &Summarize{StageID: id, Target: target}
}

func (s *Summarize) ID() string         { return s.StageID }
func (s *Summarize) Requires() []string { return nil }
func (s *Summarize) Produces() []string {
	return []string{profile.FieldSummary, profile.FieldCorrelations}
}
func (s *Summarize) Validate() error { return nil }

// Apply recomputes the profile; the dataset passes through untouched.
func (s *Summarize) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	next, err := reprofile(ds, p, s.Target)
	if err != nil {
		return nil, nil, err
	}
	return ds, next, nil
}

// #endregion summarize-stage
