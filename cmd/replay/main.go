package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/prepflow/prepflow/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath))
}

// #endregion main

// #region run

func run(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	res, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}
	fmt.Printf("Replayed status: %s, columns: %d, rejected: %d\n",
		res.Status, len(res.Columns), len(res.Rejected))

	if res.Passed() {
		fmt.Println("Replay matches recording")
		return 0
	}

	fmt.Printf("\n%d divergences:\n", len(res.Mismatches))
	for _, m := range res.Mismatches {
		fmt.Printf("  - %s\n", m)
	}
	return 1
}

// #endregion run
