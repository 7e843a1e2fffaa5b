package filterbox

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestViewBuildsConfiguredFields(t *testing.T) {
	w := New(
		WithInstantFiltering(false),
		WithFields(FilterField{Key: "region", Label: "Region"}, FilterField{Key: "country"}),
		WithInitialFilters(map[string]any{"region": []any{"latam", "emea"}}),
	)
	choices := ChoiceSet{
		"region":  {{ID: "emea", Label: "EMEA", Weight: 50}, {ID: "amer", Label: "Americas", Weight: 100}},
		"country": {{ID: "FR", Label: "France", Weight: 0}},
		"ignored": {{ID: "x", Weight: 1}},
	}

	view := w.View(context.Background(), choices)
	want := View{
		WidgetID:     w.ID(),
		ShowApply:    true,
		ApplyEnabled: false,
		Fields: []FieldView{
			{
				Key:      "region",
				Label:    "Region",
				Selected: Multi("latam", "emea"),
				Options: []DisplayOption{
					{Value: "latam", Label: "latam", Percent: 0, Synthetic: true},
					{Value: "emea", Label: "EMEA", Percent: 50},
					{Value: "amer", Label: "Americas", Percent: 100},
				},
			},
			{
				Key:     "country",
				Label:   "country",
				Options: []DisplayOption{{Value: "FR", Label: "France", Percent: 0}},
			},
		},
	}
	if diff := cmp.Diff(want, view, cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}

	w.ChangeFilter(context.Background(), "country", "FR")
	if !w.View(context.Background(), choices).ApplyEnabled {
		t.Fatalf("expected apply enabled once dirty")
	}
}

func TestViewWithoutFieldsUsesChoiceKeys(t *testing.T) {
	w := New()
	view := w.View(context.Background(), ChoiceSet{"b": nil, "a": {{ID: "1"}}})
	var keys []string
	for _, field := range view.Fields {
		keys = append(keys, field.Key)
	}
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if view.ShowApply || view.ApplyEnabled {
		t.Fatalf("instant widgets have no apply button")
	}
}

func TestViewRunsMutatorAndLogsFailures(t *testing.T) {
	mutator, err := NewChoiceMutator(`key == "bad" ? "oops" : filter(choices, {.metric >= 10})`, nil)
	if err != nil {
		t.Fatalf("NewChoiceMutator: %v", err)
	}
	var logged []LogEvent
	w := New(
		WithChoiceMutator(mutator),
		WithInitialFilters(map[string]any{"good": []any{"low"}}),
		WithLogger(LoggerFunc(func(event LogEvent) { logged = append(logged, event) })),
	)
	view := w.View(context.Background(), ChoiceSet{
		"good": {{ID: "low", Weight: 1}, {ID: "high", Weight: 20}},
		"bad":  {{ID: "keep", Weight: 1}},
	})

	byKey := map[string][]DisplayOption{}
	for _, field := range view.Fields {
		byKey[field.Key] = field.Options
	}
	if len(byKey["bad"]) != 1 || byKey["bad"][0].Value != "keep" {
		t.Fatalf("failed mutation must keep original choices, got %+v", byKey["bad"])
	}
	good := byKey["good"]
	if len(good) != 2 || good[0].Value != "low" || !good[0].Synthetic || good[1].Value != "high" {
		t.Fatalf("expected filtered-out selection to come back as synthetic, got %+v", good)
	}

	var mutateErr error
	for _, event := range logged {
		if event.Op == OpMutate {
			mutateErr = event.Err
		}
	}
	if mutateErr == nil {
		t.Fatalf("expected mutate failure to be logged, got %+v", logged)
	}
}
