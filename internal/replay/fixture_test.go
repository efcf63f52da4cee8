package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prepflow/prepflow/internal/dataset"
)

func TestFixtureDatasetRoundTrip(t *testing.T) {
	ds, err := dataset.New(
		dataset.Column{Name: "x", Kind: dataset.KindNumeric, Num: []float64{1.25, 0, 3}, Missing: []bool{false, true, false}},
		dataset.Column{Name: "g", Kind: dataset.KindCategorical, Cat: []string{"a", "b", "a"}, Missing: []bool{false, false, false}},
	)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}

	back, err := (&Fixture{Dataset: FromDataset(ds)}).ToDataset()
	if err != nil {
		t.Fatalf("to dataset: %v", err)
	}

	x, _ := back.Column("x")
	if x.Kind != dataset.KindNumeric {
		t.Fatalf("expected numeric kind, got %s", x.Kind)
	}
	if x.Num[0] != 1.25 || x.Num[2] != 3 {
		t.Fatalf("unexpected numeric values %v", x.Num)
	}
	if !x.Missing[1] {
		t.Fatal("missing cell must survive the round trip")
	}
	g, _ := back.Column("g")
	if g.Kind != dataset.KindCategorical || g.Cat[1] != "b" {
		t.Fatalf("unexpected categorical column %+v", g)
	}
}

func TestFixtureColumnUnknownKind(t *testing.T) {
	fc := FixtureColumn{Name: "x", Kind: "complex", Values: []string{"1"}}
	if _, err := fc.toColumn(); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestFixtureColumnBadNumericCell(t *testing.T) {
	fc := FixtureColumn{Name: "x", Kind: "numeric", Values: []string{"1", "abc"}}
	if _, err := fc.toColumn(); err == nil {
		t.Fatal("expected parse error for non-numeric cell")
	}
}

func TestFixtureColumnMissingTokens(t *testing.T) {
	fc := FixtureColumn{Name: "x", Kind: "numeric", Values: []string{"1", "", "NA", "2"}}
	c, err := fc.toColumn()
	if err != nil {
		t.Fatalf("to column: %v", err)
	}
	if !c.Missing[1] || !c.Missing[2] {
		t.Fatalf("expected missing tokens flagged, got %v", c.Missing)
	}
	if c.Missing[0] || c.Missing[3] {
		t.Fatalf("expected present cells kept, got %v", c.Missing)
	}
}

func TestWriteAndLoadFixture(t *testing.T) {
	f := &Fixture{
		Description: "round trip",
		ConfigYAML:  "stages:\n  - id: profile\n    type: summarize\n",
		Dataset: []FixtureColumn{
			{Name: "x", Kind: "numeric", Values: []string{"1", "2"}},
		},
		Expected: FixtureExpected{
			Status:   "COMPLETED",
			Columns:  []string{"x"},
			Rejected: map[string]string{},
			Stages:   []FixtureStage{{StageID: "profile", Status: "SUCCEEDED"}},
		},
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	back, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if back.Description != "round trip" {
		t.Fatalf("unexpected description %q", back.Description)
	}
	if back.ConfigYAML != f.ConfigYAML {
		t.Fatalf("config must survive verbatim, got %q", back.ConfigYAML)
	}
	if back.Expected.Status != "COMPLETED" || len(back.Expected.Stages) != 1 {
		t.Fatalf("unexpected expectation %+v", back.Expected)
	}
	if len(back.Dataset) != 1 || back.Dataset[0].Values[1] != "2" {
		t.Fatalf("unexpected dataset %+v", back.Dataset)
	}
}

func TestLoadFixtureNotFound(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFixtureMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadFixtureRejectsEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for fixture without dataset columns")
	}
}
