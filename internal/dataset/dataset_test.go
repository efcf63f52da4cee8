package dataset

import (
	"testing"
)

func numCol(name string, vals ...float64) Column {
	return Column{Name: name, Kind: KindNumeric, Num: vals}
}

func catCol(name string, vals ...string) Column {
	return Column{Name: name, Kind: KindCategorical, Cat: vals}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(numCol("a", 1), numCol("a", 2))
	if err == nil {
		t.Fatal("expected duplicate column error")
	}
}

func TestNewRejectsRowMismatch(t *testing.T) {
	_, err := New(numCol("a", 1, 2), numCol("b", 1))
	if err == nil {
		t.Fatal("expected row count error")
	}
}

func TestNewFillsMissingMask(t *testing.T) {
	ds, err := New(numCol("a", 1, 2, 3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c, _ := ds.Column("a")
	if len(c.Missing) != 3 {
		t.Fatalf("expected auto-filled mask of 3, got %d", len(c.Missing))
	}
	if c.MissingCount() != 0 {
		t.Fatalf("expected no missing cells, got %d", c.MissingCount())
	}
}

func TestKeepPreservesOriginalOrder(t *testing.T) {
	ds, _ := New(numCol("a", 1), numCol("b", 2), numCol("c", 3))
	out, err := ds.Keep("c", "a")
	if err != nil {
		t.Fatalf("keep: %v", err)
	}
	names := out.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("expected [a c], got %v", names)
	}
}

func TestKeepUnknownColumn(t *testing.T) {
	ds, _ := New(numCol("a", 1))
	if _, err := ds.Keep("nope"); err == nil {
		t.Fatal("expected unknown column error")
	}
}

func TestKeepDoesNotAliasBackingSlices(t *testing.T) {
	ds, _ := New(numCol("a", 1, 2))
	out, _ := ds.Keep("a")
	c, _ := out.Column("a")
	c.Num[0] = 99

	orig, _ := ds.Column("a")
	if orig.Num[0] != 1 {
		t.Fatalf("keep aliased the original column: %v", orig.Num)
	}
}

func TestDropIgnoresUnknown(t *testing.T) {
	ds, _ := New(numCol("a", 1), numCol("b", 2))
	out := ds.Drop("b", "nope")
	if len(out.Names()) != 1 || out.Names()[0] != "a" {
		t.Fatalf("expected [a], got %v", out.Names())
	}
}

func TestSelectRowsReordersAndBounds(t *testing.T) {
	ds, _ := New(numCol("a", 10, 20, 30), catCol("c", "x", "y", "z"))
	out, err := ds.SelectRows([]int{2, 0})
	if err != nil {
		t.Fatalf("select rows: %v", err)
	}
	a, _ := out.Column("a")
	if a.Num[0] != 30 || a.Num[1] != 10 {
		t.Fatalf("expected [30 10], got %v", a.Num)
	}
	c, _ := out.Column("c")
	if c.Cat[0] != "z" || c.Cat[1] != "x" {
		t.Fatalf("expected [z x], got %v", c.Cat)
	}

	if _, err := ds.SelectRows([]int{3}); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestReplaceKeepsPosition(t *testing.T) {
	ds, _ := New(numCol("a", 1), numCol("b", 2), numCol("c", 3))
	out, err := ds.Replace("b", numCol("b", 9))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if out.Names()[1] != "b" {
		t.Fatalf("expected b at position 1, got %v", out.Names())
	}
	b, _ := out.Column("b")
	if b.Num[0] != 9 {
		t.Fatalf("expected replaced value 9, got %v", b.Num[0])
	}
}

func TestIsMissingToken(t *testing.T) {
	for _, s := range []string{"", "NA", "nan", "NULL", "  na  "} {
		if !IsMissingToken(s) {
			t.Fatalf("expected %q to be a missing token", s)
		}
	}
	for _, s := range []string{"0", "none?", "n/a2"} {
		if IsMissingToken(s) {
			t.Fatalf("expected %q not to be a missing token", s)
		}
	}
}
