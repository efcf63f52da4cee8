package stages

import (
	"testing"

	"github.com/prepflow/prepflow/internal/profile"
)

func TestOutlierTreaterClampsToFences(t *testing.T) {
	// The spike at 100 must come down to the upper fence while the bulk
	// stays put.
	ds, p := makeData(t, "", numCol("x", 2, 3, 4, 5, 6, 100))
	o := NewOutlierTreater("fence", "", DefaultOutlierConfig())

	out, next, err := o.Apply(ds, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	x, _ := out.Column("x")
	if x.Num[5] >= 100 {
		t.Fatalf("expected spike clamped, got %v", x.Num[5])
	}
	for i := 0; i < 5; i++ {
		if x.Num[i] != ds.Columns()[0].Num[i] {
			t.Fatalf("in-range value %d must not move, got %v", i, x.Num[i])
		}
	}
	if !next.Has(profile.FieldOutlierFree) {
		t.Fatal("expected outlier_free marked")
	}
}

func TestOutlierTreaterSmallColumnsPassThrough(t *testing.T) {
	ds, p := makeData(t, "", numCol("x", 1, 2, 1000))
	out, _, err := NewOutlierTreater("fence", "", DefaultOutlierConfig()).Apply(ds, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	x, _ := out.Column("x")
	if x.Num[2] != 1000 {
		t.Fatalf("fewer than four values must pass through, got %v", x.Num)
	}
}

func TestOutlierTreaterLeavesCategorical(t *testing.T) {
	ds, p := makeData(t, "", catCol("c", "a", "b", "a", "b", "a"))
	out, _, err := NewOutlierTreater("fence", "", DefaultOutlierConfig()).Apply(ds, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	c, _ := out.Column("c")
	if c.Cat[0] != "a" {
		t.Fatalf("categorical column must pass through, got %v", c.Cat)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	if v := percentile(sorted, 50); v != 2.5 {
		t.Fatalf("expected median 2.5, got %v", v)
	}
	if v := percentile(sorted, 0); v != 1 {
		t.Fatalf("expected min, got %v", v)
	}
	if v := percentile(sorted, 100); v != 4 {
		t.Fatalf("expected max, got %v", v)
	}
}

func TestOutlierTreaterValidate(t *testing.T) {
	if NewOutlierTreater("x", "", OutlierConfig{Factor: 0}).Validate() == nil {
		t.Fatal("expected non-positive factor error")
	}
}
