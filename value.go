package filterbox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindCleared marks an explicit "no selection".
	KindCleared Kind = iota
	// KindScalar marks a single-select value.
	KindScalar
	// KindMulti marks an ordered multi-select value.
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMulti:
		return "multi"
	default:
		return "cleared"
	}
}

// Value is the selection stored for one filter key. The zero Value is
// Cleared.
type Value struct {
	kind   Kind
	scalar any
	items  []any
}

// Cleared returns the explicit empty selection.
func Cleared() Value {
	return Value{}
}

// Scalar wraps a single-select value. A nil v yields Cleared.
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

// Multi wraps an ordered multi-select value. The result is always a
// sequence, including when no items are given.
func Multi(items ...any) Value {
	copied := make([]any, len(items))
	copy(copied, items)
	return Value{kind: KindMulti, items: copied}
}

// Kind reports the variant.
func (v Value) Kind() Kind {
	return v.kind
}

// IsCleared reports whether v holds no selection.
func (v Value) IsCleared() bool {
	return v.kind == KindCleared
}

// Scalar returns the single-select value when v is a scalar.
func (v Value) Scalar() (any, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

// Items returns a copy of the multi-select sequence. It is nil for other
// variants.
func (v Value) Items() []any {
	if v.kind != KindMulti {
		return nil
	}
	out := make([]any, len(v.items))
	copy(out, v.items)
	return out
}

// Len returns the number of selected items: 0 for Cleared, 1 for Scalar.
func (v Value) Len() int {
	switch v.kind {
	case KindScalar:
		return 1
	case KindMulti:
		return len(v.items)
	default:
		return 0
	}
}

// Any returns the untyped host representation: nil, the scalar, or a fresh
// []any.
func (v Value) Any() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindMulti:
		return v.Items()
	default:
		return nil
	}
}

// Equal compares two values structurally.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return reflect.DeepEqual(v.scalar, other.scalar)
	case KindMulti:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !reflect.DeepEqual(v.items[i], other.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return fmt.Sprint(v.scalar)
	case KindMulti:
		return fmt.Sprint(v.items)
	default:
		return "<cleared>"
	}
}

// MarshalJSON encodes Cleared as null, Multi as an array and Scalar verbatim.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Cleared()
		return nil
	}
	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	if items, ok := raw.([]any); ok {
		*v = Multi(items...)
		return nil
	}
	*v = Scalar(raw)
	return nil
}

// SelectOption is the option shape produced by select controls.
type SelectOption struct {
	Value any    `json:"value"`
	Label string `json:"label,omitempty"`
}

// OptionValue implements OptionValuer.
func (o SelectOption) OptionValue() any {
	return o.Value
}

// OptionValuer is implemented by option objects that expose an underlying
// value.
type OptionValuer interface {
	OptionValue() any
}

// ParseChange decodes the payload of a select control change into a Value.
// nil clears; a sequence of option objects becomes Multi of their values in
// input order; an object exposing a value becomes Scalar of that value.
// Anything else is kept verbatim as a Scalar.
func ParseChange(raw any) Value {
	if raw == nil {
		return Cleared()
	}
	if optionValue, ok := extractOptionValue(raw); ok {
		return Scalar(optionValue)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		if rv.IsNil() {
			return Cleared()
		}
		items := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			if optionValue, ok := extractOptionValue(item); ok {
				items = append(items, optionValue)
				continue
			}
			items = append(items, item)
		}
		return Multi(items...)
	}
	return Scalar(raw)
}

func extractOptionValue(raw any) (any, bool) {
	switch typed := raw.(type) {
	case *SelectOption:
		if typed == nil {
			return nil, false
		}
		return typed.Value, true
	case OptionValuer:
		return typed.OptionValue(), true
	case map[string]any:
		value, ok := typed["value"]
		return value, ok
	default:
		return nil, false
	}
}
