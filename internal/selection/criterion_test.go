package selection

import (
	"math"
	"testing"

	"github.com/prepflow/prepflow/internal/dataset"
	"github.com/prepflow/prepflow/internal/profile"
)

func makeData(t *testing.T, target string, cols ...dataset.Column) (*dataset.Dataset, *profile.DatasetProfile) {
	t.Helper()
	ds, err := dataset.New(cols...)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	p, err := profile.Summarize(ds, target)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	return ds, p
}

func numCol(name string, vals ...float64) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.KindNumeric, Num: vals}
}

func catCol(name string, vals ...string) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.KindCategorical, Cat: vals}
}

// #region variance

func TestVarianceThresholdRejectsConstant(t *testing.T) {
	ds, p := makeData(t, "",
		numCol("const", 5, 5, 5, 5),
		numCol("varying", 1, 2, 3, 4),
		catCol("city", "a", "b", "a", "b"),
	)
	v := DefaultVarianceThreshold()

	scores, err := v.Score(ds, p, "")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if _, ok := scores["city"]; ok {
		t.Fatal("categorical column must be skipped, not scored")
	}
	if scores["const"] != 0 {
		t.Fatalf("expected variance 0, got %v", scores["const"])
	}

	rejected, err := v.Decide(ds, p, "", scores)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, ok := rejected["const"]; !ok {
		t.Fatal("expected constant column rejected")
	}
	if _, ok := rejected["varying"]; ok {
		t.Fatal("varying column must survive")
	}
	if _, ok := rejected["city"]; ok {
		t.Fatal("skipped column must never be rejected")
	}
}

func TestVarianceThresholdValidate(t *testing.T) {
	v := &VarianceThreshold{Epsilon: 0}
	err := v.Validate()
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
}

// #endregion variance

// #region correlation

func TestCorrelationFilterTargetTieBreak(t *testing.T) {
	// a and b correlate at ~0.98; b matches the target exactly, so a loses.
	ds, p := makeData(t, "y",
		numCol("a", 1, 2, 3, 4),
		numCol("b", 1, 2, 3, 5),
		numCol("y", 1, 2, 3, 5),
	)
	c := DefaultCorrelationFilter()

	scores, err := c.Score(ds, p, "y")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if scores["a"] <= 0.9 {
		t.Fatalf("expected pair score above threshold, got %v", scores["a"])
	}

	rejected, err := c.Decide(ds, p, "y", scores)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, ok := rejected["a"]; !ok {
		t.Fatalf("expected a rejected, got %v", rejected)
	}
	if _, ok := rejected["b"]; ok {
		t.Fatal("b has the stronger target association and must survive")
	}
}

func TestCorrelationFilterVarianceTieBreak(t *testing.T) {
	// No target: the higher-variance member of the pair survives.
	ds, p := makeData(t, "",
		numCol("a", 1, 2, 3, 4),
		numCol("b", 1, 2, 3, 5),
	)
	c := DefaultCorrelationFilter()
	scores, _ := c.Score(ds, p, "")
	rejected, _ := c.Decide(ds, p, "", scores)
	if _, ok := rejected["a"]; !ok {
		t.Fatalf("expected lower-variance a rejected, got %v", rejected)
	}
}

func TestCorrelationFilterLeavesIndependentColumns(t *testing.T) {
	ds, p := makeData(t, "",
		numCol("a", 1, 2, 3, 4),
		numCol("n", 4, 1, 3, 2),
	)
	c := DefaultCorrelationFilter()
	scores, _ := c.Score(ds, p, "")
	rejected, _ := c.Decide(ds, p, "", scores)
	if len(rejected) != 0 {
		t.Fatalf("expected no rejections, got %v", rejected)
	}
}

func TestCorrelationFilterValidate(t *testing.T) {
	for _, th := range []float64{0, -0.5, 1.1} {
		c := &CorrelationFilter{Threshold: th}
		if c.Validate() == nil {
			t.Fatalf("expected error for threshold %v", th)
		}
	}
}

// #endregion correlation

// #region stat-test

func TestStatisticalTestAnovaKeepsSeparatedColumn(t *testing.T) {
	// x separates the classes perfectly, noise does not.
	ds, p := makeData(t, "class",
		numCol("x", 1, 1, 1, 10, 10, 10),
		numCol("noise", 3, 1, 2, 2, 3, 1),
		catCol("class", "a", "a", "a", "b", "b", "b"),
	)
	s := DefaultStatisticalTest()

	scores, err := s.Score(ds, p, "class")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if scores["x"] != 0 {
		t.Fatalf("expected p-value 0 for perfect separation, got %v", scores["x"])
	}
	if scores["noise"] <= 0.05 {
		t.Fatalf("expected high p-value for noise, got %v", scores["noise"])
	}

	rejected, err := s.Decide(ds, p, "class", scores)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, ok := rejected["x"]; ok {
		t.Fatal("separating column must survive")
	}
	if _, ok := rejected["noise"]; !ok {
		t.Fatal("noise column must be rejected")
	}
}

func TestStatisticalTestChiSquareIndependent(t *testing.T) {
	// Perfectly balanced contingency table: x2 = 0, p = 1.
	ds, p := makeData(t, "class",
		catCol("g", "x", "y", "x", "y", "x", "y", "x", "y"),
		catCol("class", "a", "a", "a", "a", "b", "b", "b", "b"),
	)
	s := DefaultStatisticalTest()
	scores, err := s.Score(ds, p, "class")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if math.Abs(scores["g"]-1) > 1e-9 {
		t.Fatalf("expected p-value 1 for independent table, got %v", scores["g"])
	}
}

func TestStatisticalTestTopK(t *testing.T) {
	ds, p := makeData(t, "y",
		numCol("strong", 1, 2, 3, 4, 5),
		numCol("weak", 2, 1, 4, 3, 5),
		numCol("y", 1, 2, 3, 4, 5),
	)
	s := &StatisticalTest{TopK: 1}
	scores, err := s.Score(ds, p, "y")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	rejected, err := s.Decide(ds, p, "y", scores)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(rejected) != 1 {
		t.Fatalf("expected exactly one rejection, got %v", rejected)
	}
	if _, ok := rejected["weak"]; !ok {
		t.Fatalf("expected weak rejected, got %v", rejected)
	}
}

func TestStatisticalTestValidate(t *testing.T) {
	if (&StatisticalTest{Alpha: 0}).Validate() == nil {
		t.Fatal("expected error for alpha 0")
	}
	if (&StatisticalTest{Alpha: 1}).Validate() == nil {
		t.Fatal("expected error for alpha 1")
	}
	if (&StatisticalTest{TopK: -1}).Validate() == nil {
		t.Fatal("expected error for negative top-k")
	}
	if (&StatisticalTest{TopK: 2}).Validate() != nil {
		t.Fatal("top-k mode must not require alpha")
	}
}

// #endregion stat-test

// #region rfe

func TestRecursiveEliminationToTargetCount(t *testing.T) {
	ds, p := makeData(t, "y",
		numCol("strong", 1, 2, 3, 4),
		numCol("weak", 1, 1, 2, 1),
		numCol("mid", 4, 3, 3, 1),
		numCol("y", 1, 2, 3, 4),
	)
	r := DefaultRecursiveElimination(1)

	scores, err := r.Score(ds, p, "y")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	rejected, err := r.Decide(ds, p, "y", scores)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(rejected) != 2 {
		t.Fatalf("expected two eliminations, got %v", rejected)
	}
	if _, ok := rejected["strong"]; ok {
		t.Fatal("highest-importance column must survive")
	}
	if _, ok := rejected["y"]; ok {
		t.Fatal("target must never be eliminated")
	}
}

func TestRecursiveEliminationPinned(t *testing.T) {
	ds, p := makeData(t, "y",
		numCol("strong", 1, 2, 3, 4),
		numCol("weak", 1, 1, 2, 1),
		numCol("y", 1, 2, 3, 4),
	)
	r := DefaultRecursiveElimination(1)
	r.Pinned = []string{"weak"}

	rejected, err := r.Decide(ds, p, "y", nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, ok := rejected["weak"]; ok {
		t.Fatal("pinned column must never be eliminated")
	}
}

func TestRecursiveEliminationValidate(t *testing.T) {
	if (&RecursiveElimination{}).Validate() == nil {
		t.Fatal("expected error without a stopping condition")
	}
	if (&RecursiveElimination{TargetCount: -1}).Validate() == nil {
		t.Fatal("expected error for negative target count")
	}
	if (&RecursiveElimination{Floor: 0.1}).Validate() != nil {
		t.Fatal("floor alone is a valid stopping condition")
	}
}

func TestRecursiveEliminationDeterministic(t *testing.T) {
	ds, p := makeData(t, "y",
		numCol("a", 1, 2, 3, 4),
		numCol("b", 4, 3, 2, 1),
		numCol("c", 1, 3, 2, 4),
		numCol("y", 1, 2, 3, 4),
	)
	r := DefaultRecursiveElimination(1)
	first, err := r.Decide(ds, p, "y", nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Decide(ds, p, "y", nil)
		if err != nil {
			t.Fatalf("decide: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d diverged: %v vs %v", i, again, first)
		}
		for n := range first {
			if _, ok := again[n]; !ok {
				t.Fatalf("run %d diverged on %s", i, n)
			}
		}
	}
}

// #endregion rfe
