//go:build js_eval

package filterbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSMutatorFiltersChoices(t *testing.T) {
	evaluator, err := NewEvaluator("js", NewProgramCache(), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	mutator, err := NewChoiceMutator(`choices.filter(function (c) { return c.metric >= args.min; })`, evaluator,
		MutatorArgs(map[string]any{"min": 40}))
	if err != nil {
		t.Fatalf("NewChoiceMutator: %v", err)
	}
	if mutator.Engine() != "js" {
		t.Fatalf("expected js engine, got %q", mutator.Engine())
	}
	got, err := mutator.Mutate(RuleContext{Key: "region", Choices: sampleChoices()})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if diff := cmp.Diff([]string{"emea", "amer"}, choiceIDs(got)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestJSMutatorCallsRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("pick", func(args ...any) (any, error) {
		return []any{map[string]any{"id": args[0], "metric": 1}}, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	evaluator, err := NewEvaluator("js", nil, registry)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	mutator, err := NewChoiceMutator(`pick(key)`, evaluator)
	if err != nil {
		t.Fatalf("NewChoiceMutator: %v", err)
	}
	got, err := mutator.Mutate(RuleContext{Key: "region"})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if diff := cmp.Diff([]Choice{{ID: "region", Label: "region", Weight: 1}}, got); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}
