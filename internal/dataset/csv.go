package dataset

// #region imports
import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// #endregion

// #region missing-markers

// IsMissingToken reports whether a raw cell denotes a missing value.
// Markers follow the source CSV conventions: empty, NA, NaN, null.
func IsMissingToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}

// #endregion missing-markers

// #region read

// ReadCSV loads a headered CSV file and infers column kinds: a column whose
// every non-missing cell parses as a float is numeric, otherwise categorical.
// Ordinal columns cannot be inferred and must be redeclared by the caller.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return New()
	}

	header := records[0]
	rows := records[1:]

	cols := make([]Column, len(header))
	for j, name := range header {
		raw := make([]string, len(rows))
		missing := make([]bool, len(rows))
		numeric := true
		for i, rec := range rows {
			if j >= len(rec) {
				return nil, fmt.Errorf("row %d has %d cells, want %d", i+1, len(rec), len(header))
			}
			raw[i] = rec[j]
			missing[i] = IsMissingToken(rec[j])
			if !missing[i] && numeric {
				if _, perr := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64); perr != nil {
					numeric = false
				}
			}
		}
		cols[j] = buildColumn(strings.TrimSpace(name), raw, missing, numeric)
	}
	return New(cols...)
}

// buildColumn converts raw cells into a typed Column.
func buildColumn(name string, raw []string, missing []bool, numeric bool) Column {
	c := Column{Name: name, Missing: missing}
	if numeric {
		c.Kind = KindNumeric
		c.Num = make([]float64, len(raw))
		for i, s := range raw {
			if missing[i] {
				continue
			}
			v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			c.Num[i] = v
		}
		return c
	}
	c.Kind = KindCategorical
	c.Cat = make([]string, len(raw))
	for i, s := range raw {
		if missing[i] {
			continue
		}
		c.Cat[i] = strings.TrimSpace(s)
	}
	return c
}

// #endregion read

// #region write

// WriteCSV writes the dataset as a headered CSV file. Missing cells are
// written empty. Parent directories must already exist.
func WriteCSV(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(d.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rows := d.Rows()
	rec := make([]string, len(d.Columns()))
	for i := 0; i < rows; i++ {
		for j, c := range d.Columns() {
			switch {
			case c.Missing[i]:
				rec[j] = ""
			case c.Kind.IsNumeric():
				rec[j] = strconv.FormatFloat(c.Num[i], 'g', -1, 64)
			default:
				rec[j] = c.Cat[i]
			}
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

// #endregion write
