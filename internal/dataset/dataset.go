package dataset

// #region imports
import (
	"fmt"
)

// #endregion

// #region kind

// Kind declares how a column's values are interpreted. Fixed once declared
// for the lifetime of a pipeline run.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindOrdinal     Kind = "ordinal"
)

// IsNumeric reports whether values of this kind carry numeric statistics.
func (k Kind) IsNumeric() bool {
	return k == KindNumeric || k == KindOrdinal
}

// #endregion kind

// #region column

// Column holds one named column. Numeric and ordinal columns use Num,
// categorical columns use Cat. Missing is a parallel mask; a masked cell's
// backing value is undefined and must not be read.
type Column struct {
	Name    string
	Kind    Kind
	Num     []float64
	Cat     []string
	Missing []bool
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	if c.Kind.IsNumeric() {
		return len(c.Num)
	}
	return len(c.Cat)
}

// MissingCount returns the number of masked cells.
func (c Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// clone deep-copies the column's backing slices.
func (c Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Num != nil {
		out.Num = append([]float64(nil), c.Num...)
	}
	if c.Cat != nil {
		out.Cat = append([]string(nil), c.Cat...)
	}
	if c.Missing != nil {
		out.Missing = append([]bool(nil), c.Missing...)
	}
	return out
}

// #endregion column

// #region dataset

// Dataset is an ordered set of equal-length columns. All mutating operations
// return a new Dataset; existing snapshots are never written through.
type Dataset struct {
	cols  []Column
	index map[string]int
}

// New builds a Dataset from columns, validating names and row counts.
func New(cols ...Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	rows := -1
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column with empty name")
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if c.Missing == nil {
			c.Missing = make([]bool, c.Len())
		}
		if len(c.Missing) != c.Len() {
			return nil, fmt.Errorf("column %q: missing mask length %d != %d rows", c.Name, len(c.Missing), c.Len())
		}
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), rows)
		}
		ds.index[c.Name] = len(ds.cols)
		ds.cols = append(ds.cols, c)
	}
	return ds, nil
}

// Rows returns the row count. Empty datasets report 0.
func (d *Dataset) Rows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].Len()
}

// Names returns column names in declaration order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column by value. The backing slices are shared;
// callers must not write through them.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.cols[i], true
}

// Columns returns all columns in order. Shared backing slices, read-only.
func (d *Dataset) Columns() []Column {
	return d.cols
}

// #endregion dataset

// #region snapshot-ops

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = c.clone()
	}
	out, _ := New(cols...)
	return out
}

// Keep returns a new Dataset containing only the named columns, preserving
// this dataset's original column order regardless of the argument order.
func (d *Dataset) Keep(names ...string) (*Dataset, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if !d.Has(n) {
			return nil, fmt.Errorf("keep: unknown column %q", n)
		}
		want[n] = true
	}
	var cols []Column
	for _, c := range d.cols {
		if want[c.Name] {
			cols = append(cols, c.clone())
		}
	}
	return New(cols...)
}

// Drop returns a new Dataset without the named columns. Unknown names are
// ignored so callers can drop speculatively.
func (d *Dataset) Drop(names ...string) *Dataset {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	var cols []Column
	for _, c := range d.cols {
		if !skip[c.Name] {
			cols = append(cols, c.clone())
		}
	}
	out, _ := New(cols...)
	return out
}

// Replace returns a new Dataset with the named column swapped for col.
// The replacement keeps the original position.
func (d *Dataset) Replace(name string, col Column) (*Dataset, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("replace: unknown column %q", name)
	}
	cols := make([]Column, len(d.cols))
	for j, c := range d.cols {
		if j == i {
			cols[j] = col.clone()
		} else {
			cols[j] = c.clone()
		}
	}
	return New(cols...)
}

// Append returns a new Dataset with col added at the end.
func (d *Dataset) Append(col Column) (*Dataset, error) {
	cols := make([]Column, 0, len(d.cols)+1)
	for _, c := range d.cols {
		cols = append(cols, c.clone())
	}
	cols = append(cols, col.clone())
	return New(cols...)
}

// SelectRows returns a new Dataset restricted to the given row indices,
// in the given order.
func (d *Dataset) SelectRows(rows []int) (*Dataset, error) {
	n := d.Rows()
	cols := make([]Column, len(d.cols))
	for i, c := range d.cols {
		out := Column{Name: c.Name, Kind: c.Kind, Missing: make([]bool, len(rows))}
		if c.Kind.IsNumeric() {
			out.Num = make([]float64, len(rows))
		} else {
			out.Cat = make([]string, len(rows))
		}
		for j, r := range rows {
			if r < 0 || r >= n {
				return nil, fmt.Errorf("select rows: index %d out of range [0,%d)", r, n)
			}
			out.Missing[j] = c.Missing[r]
			if c.Kind.IsNumeric() {
				out.Num[j] = c.Num[r]
			} else {
				out.Cat[j] = c.Cat[r]
			}
		}
		cols[i] = out
	}
	return New(cols...)
}

// #endregion snapshot-ops
