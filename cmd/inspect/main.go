package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/prepflow/prepflow/internal/history"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to history database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/history.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := history.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(store *history.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	if jsonOut {
		return printJSON(runs)
	}

	fmt.Printf("%-12s  %-12s  %-10s  %-20s  %s\n", "Run", "Target", "Status", "Started", "Finished")
	for _, r := range runs {
		finished := "—"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Format("2006-01-02T15:04:05Z")
		}
		fmt.Printf("%-12s  %-12s  %-10s  %-20s  %s\n",
			shortID(r.RunID), r.Target, r.Status,
			r.StartedAt.Format("2006-01-02T15:04:05Z"), finished)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Run       history.RunRecord    `json:"run"`
	Stages    []history.StageRow   `json:"stages"`
	Decisions []history.DecisionRow `json:"decisions"`
}

func runDetailMode(store *history.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	stageRows, err := store.StageRows(runID)
	if err != nil {
		return err
	}
	decisions, err := store.Decisions(runID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(detailOutput{Run: run, Stages: stageRows, Decisions: decisions})
	}

	fmt.Printf("Run:      %s\n", run.RunID)
	fmt.Printf("Target:   %s\n", run.Target)
	fmt.Printf("Status:   %s\n", run.Status)
	fmt.Printf("Started:  %s\n", run.StartedAt.Format("2006-01-02T15:04:05Z"))
	if !run.FinishedAt.IsZero() {
		fmt.Printf("Finished: %s\n", run.FinishedAt.Format("2006-01-02T15:04:05Z"))
	}

	fmt.Printf("\nStages:\n")
	fmt.Printf("  %-16s  %-10s  %10s  %6s  %s\n", "Stage", "Status", "Duration", "Cols", "Error")
	for _, s := range stageRows {
		errStr := ""
		if s.Error != "" {
			errStr = s.Error
		}
		fmt.Printf("  %-16s  %-10s  %8.1fms  %6d  %s\n", s.StageID, s.Status, s.DurationMS, s.ColumnsAfter, errStr)
	}

	if len(decisions) > 0 {
		fmt.Printf("\nSelection decisions:\n")
		fmt.Printf("  %-20s  %-10s  %-12s  %s\n", "Column", "Decision", "Criterion", "Reason")
		for _, d := range decisions {
			fmt.Printf("  %-20s  %-10s  %-12s  %s\n", d.Column, d.Decision, d.Criterion, d.Reason)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
