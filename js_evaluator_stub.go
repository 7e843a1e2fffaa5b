//go:build !js_eval

package filterbox

// NewJSEvaluator is unavailable without the js_eval build tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

// JSAvailable reports whether the js engine was compiled in.
func JSAvailable() bool {
	return false
}
