package stages

import (
	"testing"

	"github.com/prepflow/prepflow/internal/profile"
	"github.com/prepflow/prepflow/internal/selection"
)

type recordingSink struct {
	stageID string
	result  selection.Result
	calls   int
}

func (r *recordingSink) RecordDecisions(stageID string, res selection.Result) error {
	r.stageID = stageID
	r.result = res
	r.calls++
	return nil
}

func selectConfig(criteria ...selection.Criterion) selection.Config {
	cfg := selection.DefaultConfig()
	cfg.Criteria = criteria
	return cfg
}

func TestFeatureSelectDropsRejectedColumns(t *testing.T) {
	ds, p := makeData(t, "",
		numCol("const", 5, 5, 5, 5),
		numCol("a", 1, 2, 3, 4),
	)
	fs := NewFeatureSelect("select", "", selectConfig(selection.DefaultVarianceThreshold()), nil)

	out, next, err := fs.Apply(ds, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Has("const") {
		t.Fatal("rejected column must be dropped")
	}
	if !out.Has("a") {
		t.Fatal("kept column missing")
	}
	if !next.Has(profile.FieldSelected) {
		t.Fatal("expected selected marked")
	}
}

func TestFeatureSelectReattachesTarget(t *testing.T) {
	ds, p := makeData(t, "y",
		numCol("const", 5, 5, 5, 5),
		numCol("a", 1, 2, 3, 4),
		numCol("y", 1, 2, 3, 4),
	)
	fs := NewFeatureSelect("select", "y", selectConfig(selection.DefaultVarianceThreshold()), nil)

	out, _, err := fs.Apply(ds, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !out.Has("y") {
		t.Fatalf("target must be re-attached, got %v", out.Names())
	}
}

func TestFeatureSelectRequiresEncodedForStatTest(t *testing.T) {
	base := NewFeatureSelect("select", "y", selectConfig(selection.DefaultVarianceThreshold()), nil)
	for _, f := range base.Requires() {
		if f == profile.FieldEncoded {
			t.Fatal("variance-only selection must not require encoding")
		}
	}

	withStat := NewFeatureSelect("select", "y",
		selectConfig(selection.DefaultVarianceThreshold(), selection.DefaultStatisticalTest()), nil)
	found := false
	for _, f := range withStat.Requires() {
		if f == profile.FieldEncoded {
			found = true
		}
	}
	if !found {
		t.Fatalf("statistical test selection must wait for encoding, requires %v", withStat.Requires())
	}
}

func TestFeatureSelectNotifiesSink(t *testing.T) {
	ds, p := makeData(t, "",
		numCol("const", 5, 5, 5, 5),
		numCol("a", 1, 2, 3, 4),
	)
	sink := &recordingSink{}
	fs := NewFeatureSelect("select", "", selectConfig(selection.DefaultVarianceThreshold()), sink)

	if _, _, err := fs.Apply(ds, p); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sink.calls != 1 {
		t.Fatalf("expected one sink call, got %d", sink.calls)
	}
	if sink.stageID != "select" {
		t.Fatalf("expected stage id forwarded, got %q", sink.stageID)
	}
	if _, ok := sink.result.Rejected["const"]; !ok {
		t.Fatalf("expected rejection recorded, got %v", sink.result.Rejected)
	}
}

func TestFeatureSelectAllRejectedLeavesInputUntouched(t *testing.T) {
	ds, p := makeData(t, "",
		numCol("c1", 1, 1, 1, 1),
		numCol("c2", 2, 2, 2, 2),
	)
	fs := NewFeatureSelect("select", "", selectConfig(selection.DefaultVarianceThreshold()), nil)

	out, _, err := fs.Apply(ds, p)
	if err == nil {
		t.Fatal("expected configuration error for all-rejected outcome")
	}
	if out != nil {
		t.Fatal("failed selection must not return a dataset")
	}
	if len(ds.Names()) != 2 {
		t.Fatal("input dataset must be untouched")
	}
}

func TestFeatureSelectValidate(t *testing.T) {
	fs := NewFeatureSelect("select", "", selection.DefaultConfig(), nil)
	if fs.Validate() == nil {
		t.Fatal("expected error for empty criteria")
	}
}
