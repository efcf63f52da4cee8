package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/replay"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to pipeline YAML")
	inPath := flag.String("in", "", "input CSV path")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "", "fixture description")
	flag.Parse()

	if *configPath == "" || *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --config pipeline.yaml --in data.csv --out fixture.json [--desc text]")
		os.Exit(2)
	}

	if err := run(*configPath, *inPath, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(configPath, inPath, outPath, desc string) error {
	rawCfg, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	ds, err := dataset.ReadCSV(inPath)
	if err != nil {
		return err
	}

	if desc == "" {
		desc = fmt.Sprintf("Exported run: %s over %s", configPath, inPath)
	}

	f, err := replay.Record(desc, string(rawCfg), replay.FromDataset(ds))
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}

	fmt.Printf("Wrote fixture to %s (%d columns, status %s)\n", outPath, len(f.Dataset), f.Expected.Status)
	return nil
}

// #endregion run
