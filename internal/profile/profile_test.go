package profile

import (
	"math"
	"testing"

	"github.com/prepflow/prepflow/internal/dataset"
)

func makeDataset(t *testing.T, cols ...dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(cols...)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

func TestSummarizeColumnStats(t *testing.T) {
	ds := makeDataset(t,
		dataset.Column{Name: "x", Kind: dataset.KindNumeric, Num: []float64{1, 2, 3, 0}, Missing: []bool{false, false, false, true}},
		dataset.Column{Name: "city", Kind: dataset.KindCategorical, Cat: []string{"a", "b", "a", "a"}},
	)
	p, err := Summarize(ds, "")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	x := p.Columns["x"]
	if x.MissingRatio != 0.25 {
		t.Fatalf("expected missing ratio 0.25, got %v", x.MissingRatio)
	}
	if math.Abs(x.Variance-1.0) > 1e-12 {
		t.Fatalf("expected sample variance 1.0 over {1,2,3}, got %v", x.Variance)
	}
	if x.Cardinality != 3 {
		t.Fatalf("expected cardinality 3, got %d", x.Cardinality)
	}

	city := p.Columns["city"]
	if !math.IsNaN(city.Variance) {
		t.Fatalf("expected NaN variance for categorical, got %v", city.Variance)
	}
	if city.Cardinality != 2 {
		t.Fatalf("expected cardinality 2, got %d", city.Cardinality)
	}

	if !p.Has(FieldSummary) || !p.Has(FieldCorrelations) {
		t.Fatal("expected summary and correlations fields marked")
	}
}

func TestSummarizeUnknownTarget(t *testing.T) {
	ds := makeDataset(t, dataset.Column{Name: "x", Kind: dataset.KindNumeric, Num: []float64{1}})
	if _, err := Summarize(ds, "nope"); err == nil {
		t.Fatal("expected unknown target error")
	}
}

func TestCorrelationMatrix(t *testing.T) {
	ds := makeDataset(t,
		dataset.Column{Name: "a", Kind: dataset.KindNumeric, Num: []float64{1, 2, 3, 4}},
		dataset.Column{Name: "b", Kind: dataset.KindNumeric, Num: []float64{2, 4, 6, 8}},
		dataset.Column{Name: "c", Kind: dataset.KindCategorical, Cat: []string{"x", "y", "x", "y"}},
	)
	p, err := Summarize(ds, "")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if r := p.Pairwise("a", "b"); math.Abs(r-1) > 1e-12 {
		t.Fatalf("expected correlation 1 for proportional columns, got %v", r)
	}
	if r := p.Pairwise("a", "c"); !math.IsNaN(r) {
		t.Fatalf("expected NaN for numeric/categorical pair, got %v", r)
	}
	if r := p.Pairwise("a", "a"); r != 1 {
		t.Fatalf("expected diagonal 1, got %v", r)
	}
	if r := p.Pairwise("a", "nope"); !math.IsNaN(r) {
		t.Fatalf("expected NaN for unknown column, got %v", r)
	}
}

func TestPairwiseCorrelationSkipsIncompleteRows(t *testing.T) {
	ds := makeDataset(t,
		dataset.Column{Name: "a", Kind: dataset.KindNumeric, Num: []float64{1, 2, 3, 100}, Missing: []bool{false, false, false, true}},
		dataset.Column{Name: "b", Kind: dataset.KindNumeric, Num: []float64{10, 20, 30, 0}, Missing: []bool{false, false, false, true}},
	)
	p, _ := Summarize(ds, "")
	if r := p.Pairwise("a", "b"); math.Abs(r-1) > 1e-12 {
		t.Fatalf("expected 1 over complete rows, got %v", r)
	}
}

func TestTargetAssociationNumericTarget(t *testing.T) {
	ds := makeDataset(t,
		dataset.Column{Name: "x", Kind: dataset.KindNumeric, Num: []float64{1, 2, 3, 4}},
		dataset.Column{Name: "y", Kind: dataset.KindNumeric, Num: []float64{-1, -2, -3, -4}},
	)
	p, err := Summarize(ds, "y")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	x := p.Columns["x"]
	if !x.HasTargetCorr {
		t.Fatal("expected target association for numeric candidate")
	}
	if math.Abs(x.TargetCorr-1) > 1e-12 {
		t.Fatalf("expected |association| 1, got %v", x.TargetCorr)
	}
	if p.Columns["y"].HasTargetCorr {
		t.Fatal("target must not carry an association with itself")
	}
}

func TestCorrelationRatioSeparatedGroups(t *testing.T) {
	num := dataset.Column{Name: "v", Kind: dataset.KindNumeric, Num: []float64{1, 1, 10, 10}, Missing: make([]bool, 4)}
	group := dataset.Column{Name: "g", Kind: dataset.KindCategorical, Cat: []string{"a", "a", "b", "b"}, Missing: make([]bool, 4)}

	eta, ok := Association(num, group)
	if !ok {
		t.Fatal("expected association to apply")
	}
	if math.Abs(eta-1) > 1e-12 {
		t.Fatalf("expected eta 1 for fully separated groups, got %v", eta)
	}
}

func TestAssociationCategoricalPairNotApplicable(t *testing.T) {
	a := dataset.Column{Name: "a", Kind: dataset.KindCategorical, Cat: []string{"x"}, Missing: make([]bool, 1)}
	b := dataset.Column{Name: "b", Kind: dataset.KindCategorical, Cat: []string{"y"}, Missing: make([]bool, 1)}
	if _, ok := Association(a, b); ok {
		t.Fatal("categorical/categorical pairs have no association here")
	}
}

func TestCarryAndMark(t *testing.T) {
	prev := Empty()
	prev.Mark(FieldNoMissing)

	p := Empty()
	p.Carry(prev)
	if !p.Has(FieldNoMissing) {
		t.Fatal("expected carried field")
	}
	if p.Has(FieldScaled) {
		t.Fatal("unexpected field")
	}
}
