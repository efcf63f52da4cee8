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

// EncodeMethod names a categorical-to-numeric encoding.
type EncodeMethod string

const (
	EncodeLabel     EncodeMethod = "label"     // ordinal integer codes
	EncodeOneHot    EncodeMethod = "onehot"    // one indicator column per level
	EncodeFrequency EncodeMethod = "frequency" // level relative frequency
)

// EncoderConfig drives the Encoder stage.
type EncoderConfig struct {
	Method EncodeMethod
	// MaxLevels caps one-hot expansion; a column with more distinct levels
	// falls back to label encoding. Zero means no cap.
	MaxLevels int
}

// DefaultEncoderConfig label-encodes, the least surprising choice for
// downstream statistical tests.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{Method: EncodeLabel}
}

// #endregion config

// #region encoder

// Encoder turns every categorical column numeric so numeric-only criteria
// become applicable. Level-to-code assignment is by sorted level order, so
// identical input always encodes identically. The target column is left
// categorical; statistical tests need its raw categories.
type Encoder struct {
	StageID string
	Target  string
	Config  EncoderConfig
}

// NewEncoder builds the stage.
func NewEncoder(id, target string, config EncoderConfig) *Encoder {
	return &Encoder{StageID: id, Target: target, Config: config}
}

func (e *Encoder) ID() string         { return e.StageID }
func (e *Encoder) Requires() []string { return []string{profile.FieldSummary} }
func (e *Encoder) Produces() []string { return []string{profile.FieldEncoded} }

// Validate rejects unknown methods.
func (e *Encoder) Validate() error {
	switch e.Config.Method {
	case EncodeLabel, EncodeOneHot, EncodeFrequency:
	default:
		return fmt.Errorf("unknown encode method %q", e.Config.Method)
	}
	if e.Config.MaxLevels < 0 {
		return fmt.Errorf("encoder max levels must not be negative, got %d", e.Config.MaxLevels)
	}
	return nil
}

// Apply encodes the categorical columns and refreshes the profile. When
// the target column itself is categorical it is the one column left
// unencoded, and the encoded-field guarantee is scoped to the candidates.
func (e *Encoder) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	var cols []dataset.Column
	for _, c := range ds.Columns() {
		if c.Name == e.Target || c.Kind.IsNumeric() {
			cols = append(cols, c)
			continue
		}
		encoded, err := e.encodeColumn(c)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, encoded...)
	}
	out, err := dataset.New(cols...)
	if err != nil {
		return nil, nil, err
	}
	next, err := reprofile(out, p, e.Target, profile.FieldEncoded)
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// encodeColumn expands one categorical column into numeric columns.
func (e *Encoder) encodeColumn(c dataset.Column) ([]dataset.Column, error) {
	levels := sortedLevels(c)
	method := e.Config.Method
	if method == EncodeOneHot && e.Config.MaxLevels > 0 && len(levels) > e.Config.MaxLevels {
		method = EncodeLabel
	}

	switch method {
	case EncodeLabel:
		code := make(map[string]float64, len(levels))
		for i, l := range levels {
			code[l] = float64(i)
		}
		out := dataset.Column{
			Name:    c.Name,
			Kind:    dataset.KindOrdinal,
			Num:     make([]float64, c.Len()),
			Missing: append([]bool(nil), c.Missing...),
		}
		for i, v := range c.Cat {
			if !c.Missing[i] {
				out.Num[i] = code[v]
			}
		}
		return []dataset.Column{out}, nil

	case EncodeFrequency:
		counts := make(map[string]float64, len(levels))
		n := 0
		for i, v := range c.Cat {
			if !c.Missing[i] {
				counts[v]++
				n++
			}
		}
		out := dataset.Column{
			Name:    c.Name,
			Kind:    dataset.KindNumeric,
			Num:     make([]float64, c.Len()),
			Missing: append([]bool(nil), c.Missing...),
		}
		for i, v := range c.Cat {
			if !c.Missing[i] && n > 0 {
				out.Num[i] = counts[v] / float64(n)
			}
		}
		return []dataset.Column{out}, nil

	case EncodeOneHot:
		outs := make([]dataset.Column, len(levels))
		for j, l := range levels {
			col := dataset.Column{
				Name:    fmt.Sprintf("%s=%s", c.Name, l),
				Kind:    dataset.KindNumeric,
				Num:     make([]float64, c.Len()),
				Missing: append([]bool(nil), c.Missing...),
			}
			for i, v := range c.Cat {
				if !c.Missing[i] && v == l {
					col.Num[i] = 1
				}
			}
			outs[j] = col
		}
		return outs, nil
	}
	return nil, fmt.Errorf("unknown encode method %q", method)
}

// sortedLevels returns the distinct observed levels in sorted order.
func sortedLevels(c dataset.Column) []string {
	seen := make(map[string]bool)
	for i, v := range c.Cat {
		if !c.Missing[i] {
			seen[v] = true
		}
	}
	levels := make([]string, 0, len(seen))
	for v := range seen {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return levels
}

// #endregion encoder
