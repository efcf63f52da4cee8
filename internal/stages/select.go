package stages

// #region imports
import (
	"log"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
	"github.com/prepflow/prepflow/internal/selection"
)

// #endregion

// #region decision-sink

// DecisionSink receives the per-column decisions of a selection pass, e.g.
// for persistence in the run-history store. A nil sink drops them.
type DecisionSink interface {
	RecordDecisions(stageID string, res selection.Result) error
}

// #endregion decision-sink

// #region feature-select

// FeatureSelect adapts the FeatureSelector to the Stage contract. The
// target column is re-attached to the reduced dataset after selection.
type FeatureSelect struct {
	StageID string
	Target  string
	Config  selection.Config
	Sink    DecisionSink
}

// NewFeatureSelect builds the stage. sink may be nil.
func NewFeatureSelect(id, target string, config selection.Config, sink DecisionSink) *FeatureSelect {
	return &FeatureSelect{StageID: id, Target: target, Config: config, Sink: sink}
}

func (f *FeatureSelect) ID() string { return f.StageID }

// Requires depends on the configured criteria: statistical tests and
// recursive elimination are numeric-only decisions and therefore wait for
// the encoding stage.
func (f *FeatureSelect) Requires() []string {
	fields := []string{profile.FieldSummary, profile.FieldCorrelations}
	for _, c := range f.Config.Criteria {
		if c.Kind() == selection.CriterionStatTest || c.Kind() == selection.CriterionRFE {
			fields = append(fields, profile.FieldEncoded)
			break
		}
	}
	return fields
}

func (f *FeatureSelect) Produces() []string { return []string{profile.FieldSelected} }

// Validate delegates to the selector's fail-fast configuration check.
func (f *FeatureSelect) Validate() error {
	return selection.NewFeatureSelector(f.Config).Validate(f.Target)
}

// Apply runs the selection pass and rewrites the live dataset to the kept
// columns. The input snapshot is untouched on error, including the
// all-rejected configuration error.
func (f *FeatureSelect) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	res, err := selection.NewFeatureSelector(f.Config).Select(ds, p, f.Target)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[SELECT] stage=%s kept=%d rejected=%d", f.StageID, len(res.Kept), len(res.Rejected))

	if f.Sink != nil {
		if serr := f.Sink.RecordDecisions(f.StageID, res); serr != nil {
			log.Printf("[SELECT] stage=%s decision sink error: %v", f.StageID, serr)
		}
	}

	keep := res.Kept
	if f.Target != "" && ds.Has(f.Target) {
		keep = append(append([]string(nil), res.Kept...), f.Target)
	}
	out, err := ds.Keep(keep...)
	if err != nil {
		return nil, nil, err
	}
	next, err := reprofile(out, p, f.Target, profile.FieldSelected)
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// #endregion feature-select
