package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestReadCSVInfersKinds(t *testing.T) {
	path := writeTemp(t, "age,city\n30,berlin\n41,paris\nNA,berlin\n")
	ds, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	age, _ := ds.Column("age")
	if age.Kind != KindNumeric {
		t.Fatalf("expected age numeric, got %s", age.Kind)
	}
	if age.MissingCount() != 1 {
		t.Fatalf("expected one missing age, got %d", age.MissingCount())
	}
	if age.Num[0] != 30 || age.Num[1] != 41 {
		t.Fatalf("unexpected values %v", age.Num)
	}

	city, _ := ds.Column("city")
	if city.Kind != KindCategorical {
		t.Fatalf("expected city categorical, got %s", city.Kind)
	}
	if city.Cat[1] != "paris" {
		t.Fatalf("unexpected city %q", city.Cat[1])
	}
}

func TestReadCSVMixedColumnFallsBackToCategorical(t *testing.T) {
	path := writeTemp(t, "v\n1\ntwo\n3\n")
	ds, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	c, _ := ds.Column("v")
	if c.Kind != KindCategorical {
		t.Fatalf("expected categorical fallback, got %s", c.Kind)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds, _ := New(
		Column{Name: "x", Kind: KindNumeric, Num: []float64{1.5, 0}, Missing: []bool{false, true}},
		catCol("label", "a", "b"),
	)
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(ds, path); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	back, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	x, _ := back.Column("x")
	if x.Num[0] != 1.5 {
		t.Fatalf("expected 1.5, got %v", x.Num[0])
	}
	if !x.Missing[1] {
		t.Fatal("expected missing cell to survive the round trip")
	}
	label, _ := back.Column("label")
	if label.Cat[1] != "b" {
		t.Fatalf("expected b, got %q", label.Cat[1])
	}
}
