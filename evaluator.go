package filterbox

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoEvaluator is returned when a mutator is built without an engine.
var ErrNoEvaluator = errors.New("filterbox: evaluator not configured")

// RuleContext carries the inputs a choice expression is evaluated against.
type RuleContext struct {
	Key        string
	Choices    []Choice
	Selections *Selections
	Now        *time.Time
	Args       map[string]any
	Metadata   map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

// bindings returns the variables visible to expressions.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"key":           ctx.Key,
		"choices":       choiceRecords(ctx.Choices),
		"extra_filters": ctx.Selections.ToMap(),
		"now":           ctx.timestamp(),
		"args":          ctx.Args,
		"metadata":      ctx.Metadata,
	}
}

func (ctx RuleContext) keyLabel() string {
	if ctx.Key == "" {
		return "unknown"
	}
	return ctx.Key
}

// choiceRecords exposes choices using their wire field names.
func choiceRecords(choices []Choice) []any {
	out := make([]any, len(choices))
	for i, choice := range choices {
		out[i] = map[string]any{
			"id":     choice.ID,
			"text":   choice.Label,
			"filter": choice.Filter,
			"metric": choice.Weight,
		}
	}
	return out
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// EngineName reports which engine backs e.
func EngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*filterbox.exprEvaluator":
		return "expr"
	case "*filterbox.celEvaluator":
		return "cel"
	case "*filterbox.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}

// NewEvaluator returns the evaluator for engine ("expr", "cel" or "js").
// The js engine is only available with the js_eval build tag.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch engine {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case "js":
		evaluator := NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
}

type jsEvaluatorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache applies a ProgramCache to the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS evaluator.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
