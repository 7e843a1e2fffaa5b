package filterbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconcilePrependsOrphans(t *testing.T) {
	choices := ChoiceSet{
		"columns": {{ID: "a", Weight: 5}, {ID: "b", Weight: 10}},
	}
	selections := selectionsOf("columns", Multi("a", "c", "d"))

	got := Reconcile(choices, selections)
	want := []Choice{
		{ID: "c", Label: "c", Filter: "columns"},
		{ID: "d", Label: "d", Filter: "columns"},
		{ID: "a", Weight: 5},
		{ID: "b", Weight: 10},
	}
	if diff := cmp.Diff(want, got["columns"]); diff != "" {
		t.Fatalf("reconcile mismatch (-want +got):\n%s", diff)
	}
	if len(choices["columns"]) != 2 {
		t.Fatalf("input choices must not be modified")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	choices := ChoiceSet{"columns": {{ID: "a", Weight: 5}}}
	selections := selectionsOf("columns", Multi("a", "z"))

	first := Reconcile(choices, selections)
	second := Reconcile(choices, selections)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated reconcile differs (-first +second):\n%s", diff)
	}
	again := Reconcile(first, selections)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("reconciling a reconciled set added entries (-want +got):\n%s", diff)
	}
}

func TestReconcileOneSyntheticPerMissingValue(t *testing.T) {
	choices := ChoiceSet{"k": {{ID: "1", Weight: 3}}}
	selections := selectionsOf("k", Multi("x", 1, "x", 2))

	got := Reconcile(choices, selections)["k"]
	var synthetic []string
	for _, choice := range got {
		if choice.Weight == 0 {
			synthetic = append(synthetic, choice.ID)
		}
	}
	if diff := cmp.Diff([]string{"x", "2"}, synthetic); diff != "" {
		t.Fatalf("synthetic mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "2"}, Orphans(choices, selections, "k")); diff != "" {
		t.Fatalf("orphans mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileSkipsKeysWithoutChoicesAndNonMulti(t *testing.T) {
	choices := ChoiceSet{
		"single": {{ID: "a"}},
		"empty":  {{ID: "a"}},
	}
	selections := selectionsOf(
		"missing", Multi("x"),
		"single", Scalar("zzz"),
		"empty", Multi(),
	)
	got := Reconcile(choices, selections)
	if _, ok := got["missing"]; ok {
		t.Fatalf("keys without choices must be skipped")
	}
	if len(got["single"]) != 1 || len(got["empty"]) != 1 {
		t.Fatalf("scalar and empty selections must not add synthetics: %+v", got)
	}
	if Orphans(choices, selections, "missing") != nil {
		t.Fatalf("expected no orphans for a key without choices")
	}
}

func TestReconcileNilInputs(t *testing.T) {
	if got := Reconcile(nil, nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil set, got %#v", got)
	}
}

func TestDisplayOptionsPercent(t *testing.T) {
	got := DisplayOptions([]Choice{
		{ID: "c", Weight: 0},
		{ID: "a", Label: "Alpha", Weight: 5},
		{ID: "b", Weight: 10},
	})
	want := []DisplayOption{
		{Value: "c", Label: "c", Percent: 0},
		{Value: "a", Label: "Alpha", Percent: 50},
		{Value: "b", Label: "b", Percent: 100},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}

	zero := DisplayOptions([]Choice{{ID: "a"}, {ID: "b"}})
	for _, option := range zero {
		if option.Percent != 0 {
			t.Fatalf("zero maximum must yield 0%%, got %+v", zero)
		}
	}
	if DisplayOptions(nil) != nil {
		t.Fatalf("expected nil for no choices")
	}
}
