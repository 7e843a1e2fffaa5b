package filterbox

import (
	"errors"
	"fmt"
	"strings"
)

// ChoiceMutator rewrites the choices of a filter key with a host supplied
// expression before they are reconciled. Expressions see the bindings
// `key`, `choices` (records with id, text, filter and metric), the current
// selections as `extra_filters`, plus `now`, `args` and `metadata`, and must
// evaluate to a list of choice records.
type ChoiceMutator struct {
	evaluator  Evaluator
	expression string
	rule       CompiledRule
	keys       map[string]struct{}
	args       map[string]any
}

// MutatorOption configures a ChoiceMutator.
type MutatorOption func(*ChoiceMutator)

// MutateKeys restricts the mutator to the given filter keys.
func MutateKeys(keys ...string) MutatorOption {
	return func(m *ChoiceMutator) {
		for _, key := range keys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if m.keys == nil {
				m.keys = map[string]struct{}{}
			}
			m.keys[key] = struct{}{}
		}
	}
}

// MutatorArgs sets the `args` binding.
func MutatorArgs(args map[string]any) MutatorOption {
	return func(m *ChoiceMutator) {
		m.args = copyMetadata(args)
	}
}

// NewChoiceMutator compiles expression with evaluator. A nil evaluator falls
// back to the expr engine.
func NewChoiceMutator(expression string, evaluator Evaluator, opts ...MutatorOption) (*ChoiceMutator, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("filterbox: mutator expression must not be empty")
	}
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(EngineName(evaluator), expression, "", err)
	}
	m := &ChoiceMutator{
		evaluator:  evaluator,
		expression: expression,
		rule:       rule,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Expression returns the source expression.
func (m *ChoiceMutator) Expression() string {
	if m == nil {
		return ""
	}
	return m.expression
}

// Engine names the evaluator engine.
func (m *ChoiceMutator) Engine() string {
	if m == nil {
		return ""
	}
	return EngineName(m.evaluator)
}

// Applies reports whether the mutator runs for key.
func (m *ChoiceMutator) Applies(key string) bool {
	if m == nil {
		return false
	}
	if len(m.keys) == 0 {
		return true
	}
	_, ok := m.keys[key]
	return ok
}

// Mutate evaluates the mutator for one key and returns the new choices.
// ctx.Choices is not modified.
func (m *ChoiceMutator) Mutate(ctx RuleContext) ([]Choice, error) {
	if m == nil || m.rule == nil {
		return nil, ErrNoEvaluator
	}
	if ctx.Args == nil && m.args != nil {
		ctx.Args = copyMetadata(m.args)
	}
	result, err := m.rule.Evaluate(ctx)
	if err != nil {
		return nil, wrapEvaluationError(m.Engine(), m.expression, ctx.Key, err)
	}
	choices, err := decodeMutatedChoices(ctx.Key, result)
	if err != nil {
		return nil, wrapEvaluationError(m.Engine(), m.expression, ctx.Key, err)
	}
	return choices, nil
}

// MutateSet applies the mutator to every key it covers. A key whose
// evaluation fails keeps its original choices; the failures are joined into
// the returned error.
func (m *ChoiceMutator) MutateSet(choices ChoiceSet, selections *Selections) (ChoiceSet, error) {
	out := choices.Clone()
	if m == nil || out == nil {
		return out, nil
	}
	var errs []error
	for _, key := range out.Keys() {
		if !m.Applies(key) {
			continue
		}
		mutated, err := m.Mutate(RuleContext{
			Key:        key,
			Choices:    out[key],
			Selections: selections,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[key] = mutated
	}
	return out, errors.Join(errs...)
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
