package stages

// #region imports
import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #endregion

// #region strategy

// ImputeStrategy names a missing-value treatment.
type ImputeStrategy string

const (
	ImputeDrop   ImputeStrategy = "drop"   // drop rows containing any missing cell
	ImputeFixed  ImputeStrategy = "fixed"  // fill with configured constants
	ImputeMean   ImputeStrategy = "mean"   // numeric mean, categorical mode
	ImputeMedian ImputeStrategy = "median" // numeric median, categorical mode
	ImputeMode   ImputeStrategy = "mode"   // most frequent value, both kinds
	ImputeFFill  ImputeStrategy = "ffill"  // forward fill, backward for leading gaps
	ImputeBFill  ImputeStrategy = "bfill"  // backward fill, forward for trailing gaps
	ImputeAuto   ImputeStrategy = "auto"   // evaluate all strategies, keep the best
)

// autoOrder is the evaluation order for auto mode; earlier wins score ties.
var autoOrder = []ImputeStrategy{
	ImputeDrop, ImputeFixed, ImputeMean, ImputeMedian, ImputeMode, ImputeFFill, ImputeBFill,
}

// #endregion strategy

// #region config

// ImputerConfig drives the Imputer stage.
type ImputerConfig struct {
	Strategy         ImputeStrategy
	FixedNumeric     float64 // fill constant for numeric columns under "fixed"
	FixedCategorical string  // fill constant for categorical columns under "fixed"
}

// DefaultImputerConfig evaluates every strategy and keeps the best.
func DefaultImputerConfig() ImputerConfig {
	return ImputerConfig{Strategy: ImputeAuto, FixedNumeric: 0, FixedCategorical: "unknown"}
}

// #endregion config

// #region imputer

// Imputer removes missing cells. Columns that are entirely missing cannot
// be filled and are dropped up front. Auto mode builds every candidate
// cleaning and keeps the one with the best composite score:
// 0.5 * nulls removed + 0.25 * rows kept + 0.25 * columns kept.
type Imputer struct {
	StageID string
	Target  string
	Config  ImputerConfig
}

// NewImputer builds the stage.
func NewImputer(id, target string, config ImputerConfig) *Imputer {
	return &Imputer{StageID: id, Target: target, Config: config}
}

func (im *Imputer) ID() string         { return im.StageID }
func (im *Imputer) Requires() []string { return []string{profile.FieldSummary} }
func (im *Imputer) Produces() []string { return []string{profile.FieldNoMissing} }

// Validate rejects unknown strategies.
func (im *Imputer) Validate() error {
	switch im.Config.Strategy {
	case ImputeDrop, ImputeFixed, ImputeMean, ImputeMedian, ImputeMode, ImputeFFill, ImputeBFill, ImputeAuto:
		return nil
	}
	return fmt.Errorf("unknown impute strategy %q", im.Config.Strategy)
}

// Apply produces a missing-free dataset and a refreshed profile.
func (im *Imputer) Apply(ds *dataset.Dataset, p *profile.DatasetProfile) (*dataset.Dataset, *profile.DatasetProfile, error) {
	var out *dataset.Dataset
	var err error
	if im.Config.Strategy == ImputeAuto {
		out, err = im.applyAuto(ds)
	} else {
		out, err = applyStrategy(ds, im.Config.Strategy, im.Config)
	}
	if err != nil {
		return nil, nil, err
	}
	next, err := reprofile(out, p, im.Target, profile.FieldNoMissing)
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// applyAuto evaluates every candidate strategy against the original and
// keeps the best-scoring cleaning.
func (im *Imputer) applyAuto(ds *dataset.Dataset) (*dataset.Dataset, error) {
	origNulls := totalMissing(ds)
	origRows, origCols := ds.Rows(), len(ds.Names())

	var best *dataset.Dataset
	bestScore := math.Inf(-1)
	bestStrategy := ImputeStrategy("")
	for _, strat := range autoOrder {
		cand, err := applyStrategy(ds, strat, im.Config)
		if err != nil {
			return nil, fmt.Errorf("auto impute candidate %s: %w", strat, err)
		}
		score := imputeScore(cand, origNulls, origRows, origCols)
		log.Printf("[IMPUTE] strategy=%s score=%.4f rows=%d cols=%d nulls=%d",
			strat, score, cand.Rows(), len(cand.Names()), totalMissing(cand))
		if score > bestScore {
			best, bestScore, bestStrategy = cand, score, strat
		}
	}
	log.Printf("[IMPUTE] selected strategy=%s score=%.4f", bestStrategy, bestScore)
	return best, nil
}

// imputeScore is the composite cleaning score from the original toolkit:
// nulls removed weigh 0.5, rows kept 0.25, columns kept 0.25.
func imputeScore(cand *dataset.Dataset, origNulls, origRows, origCols int) float64 {
	var nullShare, rowShare, colShare float64
	if origNulls > 0 {
		nullShare = float64(origNulls-totalMissing(cand)) / float64(origNulls)
	} else {
		nullShare = 1
	}
	if origRows > 0 {
		rowShare = float64(cand.Rows()) / float64(origRows)
	}
	if origCols > 0 {
		colShare = float64(len(cand.Names())) / float64(origCols)
	}
	return 0.5*nullShare + 0.25*rowShare + 0.25*colShare
}

// #endregion imputer

// #region strategies

// applyStrategy runs one concrete strategy. Fill strategies first drop
// columns that are missing in every row.
func applyStrategy(ds *dataset.Dataset, strat ImputeStrategy, config ImputerConfig) (*dataset.Dataset, error) {
	if strat == ImputeDrop {
		return dropMissingRows(ds)
	}

	out := dropAllNullColumns(ds)
	cols := make([]dataset.Column, 0, len(out.Columns()))
	for _, c := range out.Columns() {
		cols = append(cols, fillColumn(c, strat, config))
	}
	return dataset.New(cols...)
}

// dropMissingRows keeps only complete rows.
func dropMissingRows(ds *dataset.Dataset) (*dataset.Dataset, error) {
	var keep []int
	for i := 0; i < ds.Rows(); i++ {
		complete := true
		for _, c := range ds.Columns() {
			if c.Missing[i] {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	if keep == nil {
		keep = []int{}
	}
	return ds.SelectRows(keep)
}

// dropAllNullColumns removes columns with no observed values.
func dropAllNullColumns(ds *dataset.Dataset) *dataset.Dataset {
	var drop []string
	for _, c := range ds.Columns() {
		if c.Len() > 0 && c.MissingCount() == c.Len() {
			drop = append(drop, c.Name)
		}
	}
	if drop == nil {
		return ds.Clone()
	}
	log.Printf("[IMPUTE] dropping all-null columns %v", drop)
	return ds.Drop(drop...)
}

// fillColumn fills one column's missing cells per the strategy.
func fillColumn(c dataset.Column, strat ImputeStrategy, config ImputerConfig) dataset.Column {
	out := dataset.Column{Name: c.Name, Kind: c.Kind}
	out.Missing = make([]bool, c.Len())
	if c.Kind.IsNumeric() {
		out.Num = append([]float64(nil), c.Num...)
	} else {
		out.Cat = append([]string(nil), c.Cat...)
	}

	switch strat {
	case ImputeFixed:
		for i, m := range c.Missing {
			if !m {
				continue
			}
			if c.Kind.IsNumeric() {
				out.Num[i] = config.FixedNumeric
			} else {
				out.Cat[i] = config.FixedCategorical
			}
		}
	case ImputeMean, ImputeMedian:
		if c.Kind.IsNumeric() {
			v := centralValue(c, strat)
			for i, m := range c.Missing {
				if m {
					out.Num[i] = v
				}
			}
		} else {
			fillCatMode(c, &out)
		}
	case ImputeMode:
		if c.Kind.IsNumeric() {
			v := numericMode(c)
			for i, m := range c.Missing {
				if m {
					out.Num[i] = v
				}
			}
		} else {
			fillCatMode(c, &out)
		}
	case ImputeFFill:
		directionalFill(c, &out, true)
	case ImputeBFill:
		directionalFill(c, &out, false)
	}
	return out
}

// centralValue returns mean or median of the observed numeric cells.
func centralValue(c dataset.Column, strat ImputeStrategy) float64 {
	vals := make([]float64, 0, len(c.Num))
	for i, v := range c.Num {
		if !c.Missing[i] {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	if strat == ImputeMean {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// numericMode returns the most frequent observed value; ties resolve to
// the smallest value for determinism.
func numericMode(c dataset.Column) float64 {
	counts := make(map[float64]int)
	for i, v := range c.Num {
		if !c.Missing[i] {
			counts[v]++
		}
	}
	best, bestN := 0.0, -1
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}

// fillCatMode fills categorical gaps with the most frequent observed
// value; ties resolve lexicographically.
func fillCatMode(c dataset.Column, out *dataset.Column) {
	counts := make(map[string]int)
	for i, v := range c.Cat {
		if !c.Missing[i] {
			counts[v]++
		}
	}
	best, bestN := "", -1
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	for i, m := range c.Missing {
		if m {
			out.Cat[i] = best
		}
	}
}

// directionalFill carries the previous (forward) or next (backward)
// observed value into gaps, then sweeps the opposite direction for the
// edge gaps the first pass cannot reach.
func directionalFill(c dataset.Column, out *dataset.Column, forward bool) {
	n := c.Len()
	filled := append([]bool(nil), c.Missing...)

	sweep := func(start, end, step int) {
		lastSet := false
		var lastNum float64
		var lastCat string
		for i := start; i != end; i += step {
			if !filled[i] {
				lastSet = true
				if c.Kind.IsNumeric() {
					lastNum = out.Num[i]
				} else {
					lastCat = out.Cat[i]
				}
				continue
			}
			if lastSet {
				if c.Kind.IsNumeric() {
					out.Num[i] = lastNum
				} else {
					out.Cat[i] = lastCat
				}
				filled[i] = false
			}
		}
	}

	if forward {
		sweep(0, n, 1)
		sweep(n-1, -1, -1)
	} else {
		sweep(n-1, -1, -1)
		sweep(0, n, 1)
	}
}

// totalMissing counts masked cells across all columns.
func totalMissing(ds *dataset.Dataset) int {
	n := 0
	for _, c := range ds.Columns() {
		n += c.MissingCount()
	}
	return n
}

// #endregion strategies
