// Package replay re-executes recorded pipeline runs from JSON fixtures
// and verifies that every stage outcome and selection decision matches
// the recording bit for bit.
package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/prepflow/prepflow/internal/dataset"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. The
// pipeline configuration is carried verbatim as YAML so a fixture replays
// exactly what the recorded run was configured with.
type Fixture struct {
	Description string          `json:"description"`
	ConfigYAML  string          `json:"config_yaml"`
	Dataset     []FixtureColumn `json:"dataset"`
	Expected    FixtureExpected `json:"expected"`
}

// FixtureColumn is one input column. Values use CSV conventions: missing
// cells are empty or one of the recognized missing tokens.
type FixtureColumn struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Values []string `json:"values"`
}

// FixtureExpected captures the recorded run outcome.
type FixtureExpected struct {
	Status   string            `json:"status"`
	Columns  []string          `json:"columns"`
	Rejected map[string]string `json:"rejected"` // column -> rejecting criterion
	Stages   []FixtureStage    `json:"stages"`
}

// FixtureStage is the recorded terminal status of one stage.
type FixtureStage struct {
	StageID string `json:"stage_id"`
	Status  string `json:"status"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Dataset) == 0 {
		return nil, fmt.Errorf("fixture %s has no dataset columns", path)
	}
	return &f, nil
}

// WriteFixture marshals a fixture to disk with indentation for review.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader

// #region dataset-conversion

// ToDataset converts the fixture columns into a Dataset.
func (f *Fixture) ToDataset() (*dataset.Dataset, error) {
	cols := make([]dataset.Column, 0, len(f.Dataset))
	for _, fc := range f.Dataset {
		c, err := fc.toColumn()
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return dataset.New(cols...)
}

// toColumn parses one fixture column.
func (fc *FixtureColumn) toColumn() (dataset.Column, error) {
	var kind dataset.Kind
	switch fc.Kind {
	case "numeric":
		kind = dataset.KindNumeric
	case "categorical":
		kind = dataset.KindCategorical
	case "ordinal":
		kind = dataset.KindOrdinal
	default:
		return dataset.Column{}, fmt.Errorf("column %s: unknown kind %q", fc.Name, fc.Kind)
	}

	n := len(fc.Values)
	c := dataset.Column{Name: fc.Name, Kind: kind, Missing: make([]bool, n)}
	if kind.IsNumeric() {
		c.Num = make([]float64, n)
	} else {
		c.Cat = make([]string, n)
	}
	for i, raw := range fc.Values {
		if dataset.IsMissingToken(raw) {
			c.Missing[i] = true
			continue
		}
		if kind.IsNumeric() {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return dataset.Column{}, fmt.Errorf("column %s row %d: %q is not numeric", fc.Name, i, raw)
			}
			c.Num[i] = v
		} else {
			c.Cat[i] = raw
		}
	}
	return c, nil
}

// FromDataset converts a Dataset back to fixture columns, rendering
// numeric cells with full float precision so replays compare exactly.
func FromDataset(ds *dataset.Dataset) []FixtureColumn {
	var out []FixtureColumn
	for _, c := range ds.Columns() {
		fc := FixtureColumn{Name: c.Name, Values: make([]string, c.Len())}
		switch c.Kind {
		case dataset.KindNumeric:
			fc.Kind = "numeric"
		case dataset.KindCategorical:
			fc.Kind = "categorical"
		case dataset.KindOrdinal:
			fc.Kind = "ordinal"
		}
		for i := 0; i < c.Len(); i++ {
			if c.Missing[i] {
				fc.Values[i] = ""
				continue
			}
			if c.Kind.IsNumeric() {
				fc.Values[i] = strconv.FormatFloat(c.Num[i], 'g', -1, 64)
			} else {
				fc.Values[i] = c.Cat[i]
			}
		}
		out = append(out, fc)
	}
	return out
}

// #endregion dataset-conversion
