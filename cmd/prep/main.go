package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prepflow/prepflow/internal/config"
	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/history"
	"github.com/prepflow/prepflow/internal/pipeline"
	"github.com/prepflow/prepflow/internal/profile"
	"github.com/prepflow/prepflow/internal/stages"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to pipeline YAML")
	inPath := flag.String("in", "", "input CSV path")
	outPath := flag.String("out", "", "output CSV path")
	dbPath := flag.String("db", "", "history database path (optional)")
	flag.Parse()

	if *configPath == "" || *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: prep --config pipeline.yaml --in data.csv --out prepared.csv [--db history.db]")
		os.Exit(2)
	}

	if err := run(*configPath, *inPath, *outPath, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(configPath, inPath, outPath, dbPath string) error {
	rawCfg, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(rawCfg)
	if err != nil {
		return err
	}

	ds, err := dataset.ReadCSV(inPath)
	if err != nil {
		return err
	}
	log.Printf("[PREP] loaded %s rows=%d cols=%d", inPath, ds.Rows(), len(ds.Names()))

	if dbPath == "" && cfg.History != "" {
		dbPath = cfg.History
	}
	var store *history.Store
	var sink stages.DecisionSink
	if dbPath != "" {
		store, err = history.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.BeginRun(cfg.Target, string(rawCfg)); err != nil {
			return err
		}
		sink = store
	}

	input, err := cfg.BuildInput(sink)
	if err != nil {
		return err
	}
	pipe, err := pipeline.Build(input)
	if err != nil {
		return err
	}

	res, runErr := pipe.Run(ds, profile.Empty())

	if store != nil {
		if err := store.RecordStages(res.Records); err != nil {
			log.Printf("[PREP] record stages: %v", err)
		}
		if err := store.FinishRun(res.Status); err != nil {
			log.Printf("[PREP] finish run: %v", err)
		}
	}

	printSummary(res)
	if runErr != nil {
		return runErr
	}

	if err := dataset.WriteCSV(res.Dataset, outPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (rows=%d cols=%d)\n", outPath, res.Dataset.Rows(), len(res.Dataset.Names()))
	return nil
}

// #endregion run

// #region output

func printSummary(res *pipeline.Result) {
	fmt.Printf("%-16s| %-10s| %10s | %s\n", "Stage", "Status", "Cols After", "Error")
	fmt.Printf("%-16s+%-11s+%12s+%s\n", "----------------", "-----------", "------------", "--------")
	for _, r := range res.Records {
		errStr := ""
		if r.Error != "" {
			errStr = r.Error
		}
		fmt.Printf("%-16s| %-10s| %10d | %s\n", r.StageID, r.Status, r.ColumnsAfter, errStr)
	}
	fmt.Printf("\nRun status: %s\n", res.Status)
}

// #endregion output
