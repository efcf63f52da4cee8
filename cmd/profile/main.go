package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

// #region main

func main() {
	inPath := flag.String("in", "", "input CSV path")
	target := flag.String("target", "", "target column for association stats")
	corr := flag.Bool("corr", false, "print the pairwise correlation matrix")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: profile --in data.csv [--target col] [--corr] [--json]")
		os.Exit(2)
	}

	if err := run(*inPath, *target, *corr, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

type columnRow struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	MissingRatio float64 `json:"missing_ratio"`
	Variance     float64 `json:"variance,omitempty"`
	Cardinality  int     `json:"cardinality"`
	TargetCorr   float64 `json:"target_corr,omitempty"`
}

func run(inPath, target string, corr, jsonOut bool) error {
	ds, err := dataset.ReadCSV(inPath)
	if err != nil {
		return err
	}
	p, err := profile.Summarize(ds, target)
	if err != nil {
		return err
	}

	rows := make([]columnRow, 0, len(p.Order))
	for _, name := range p.Order {
		cp := p.Columns[name]
		r := columnRow{
			Name:         cp.Name,
			Kind:         string(cp.Kind),
			MissingRatio: cp.MissingRatio,
			Cardinality:  cp.Cardinality,
		}
		if !math.IsNaN(cp.Variance) {
			r.Variance = cp.Variance
		}
		if cp.HasTargetCorr {
			r.TargetCorr = cp.TargetCorr
		}
		rows = append(rows, r)
	}

	if jsonOut {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%-20s  %-12s  %8s  %10s  %6s  %10s\n", "Column", "Kind", "Missing", "Variance", "Card", "TargetCorr")
	for _, r := range rows {
		variance := "—"
		cp := p.Columns[r.Name]
		if !math.IsNaN(cp.Variance) {
			variance = fmt.Sprintf("%.4f", cp.Variance)
		}
		tc := "—"
		if cp.HasTargetCorr {
			tc = fmt.Sprintf("%.4f", cp.TargetCorr)
		}
		fmt.Printf("%-20s  %-12s  %7.1f%%  %10s  %6d  %10s\n",
			r.Name, r.Kind, r.MissingRatio*100, variance, r.Cardinality, tc)
	}

	if corr {
		fmt.Printf("\nPairwise correlations:\n")
		printMatrix(p)
	}
	return nil
}

// printMatrix renders the correlation matrix with short headers.
func printMatrix(p *profile.DatasetProfile) {
	fmt.Printf("%-20s", "")
	for _, n := range p.Order {
		fmt.Printf("  %8s", shortName(n))
	}
	fmt.Println()
	for i, n := range p.Order {
		fmt.Printf("%-20s", n)
		for j := range p.Order {
			v := p.Corr[i][j]
			if math.IsNaN(v) {
				fmt.Printf("  %8s", "—")
			} else {
				fmt.Printf("  %8.4f", v)
			}
		}
		fmt.Println()
	}
}

func shortName(n string) string {
	if len(n) > 8 {
		return n[:8]
	}
	return n
}

// #endregion run
