package pipeline

// #region imports
import (
	"fmt"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region verify

// verifyProduced checks that every field the stage declared as produced is
// actually populated in the returned profile. Fields with a checkable
// semantic meaning are verified against the dataset as well; a mismatch is
// a DataConsistencyError, which always aborts the run.
func verifyProduced(stageID string, produces []string, ds *dataset.Dataset, p *profile.DatasetProfile, target string) error {
	for _, f := range produces {
		if !p.Has(f) {
			return &DataConsistencyError{StageID: stageID, Field: f, Reason: "field not marked in returned profile"}
		}
		if err := checkField(f, ds, p, target); err != nil {
			return &DataConsistencyError{StageID: stageID, Field: f, Reason: err.Error()}
		}
	}
	return nil
}

// checkField validates the semantic guarantee behind a profile field.
// The target column is exempt from the encoded guarantee: statistical
// tests consume its raw categories.
func checkField(field string, ds *dataset.Dataset, p *profile.DatasetProfile, target string) error {
	switch field {
	case profile.FieldSummary:
		for _, n := range ds.Names() {
			if _, ok := p.Columns[n]; !ok {
				return fmt.Errorf("no column profile for live column %q", n)
			}
		}
		if len(p.Order) != len(ds.Names()) {
			return fmt.Errorf("profile order has %d columns, dataset has %d", len(p.Order), len(ds.Names()))
		}
	case profile.FieldCorrelations:
		n := len(ds.Names())
		if len(p.Corr) != n {
			return fmt.Errorf("correlation matrix is %dx?, live column set is %d", len(p.Corr), n)
		}
		for i, row := range p.Corr {
			if len(row) != n {
				return fmt.Errorf("correlation matrix row %d has %d entries, want %d", i, len(row), n)
			}
		}
	case profile.FieldNoMissing:
		for _, c := range ds.Columns() {
			if c.MissingCount() > 0 {
				return fmt.Errorf("column %q still has %d missing cells", c.Name, c.MissingCount())
			}
		}
	case profile.FieldEncoded:
		for _, c := range ds.Columns() {
			if c.Name != target && !c.Kind.IsNumeric() {
				return fmt.Errorf("column %q is still %s", c.Name, c.Kind)
			}
		}
	}
	return nil
}

// #endregion verify
