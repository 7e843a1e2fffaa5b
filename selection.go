package filterbox

import (
	"bytes"
	"encoding/json"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Selections maps canonical filter keys to their selected Value. Iteration
// follows insertion order; overwriting a key keeps its original position.
type Selections struct {
	om *orderedmap.OrderedMap[string, Value]
}

// NewSelections returns an empty selection map.
func NewSelections() *Selections {
	return &Selections{om: orderedmap.New[string, Value]()}
}

// SelectionsFromMap seeds a selection map from an untyped snapshot such as
// previously persisted filters. Go maps carry no order, so keys are inserted
// alphabetically. Slices become Multi, nil becomes Cleared.
func SelectionsFromMap(snapshot map[string]any) *Selections {
	s := NewSelections()
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.Set(key, snapshotValue(snapshot[key]))
	}
	return s
}

func snapshotValue(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Cleared()
	case Value:
		return typed
	case []any:
		return Multi(typed...)
	case []string:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = item
		}
		return Multi(items...)
	default:
		return ParseChange(raw)
	}
}

func (s *Selections) ensure() {
	if s.om == nil {
		s.om = orderedmap.New[string, Value]()
	}
}

// Get returns the value stored for key.
func (s *Selections) Get(key string) (Value, bool) {
	if s == nil || s.om == nil {
		return Value{}, false
	}
	return s.om.Get(key)
}

// Has reports whether key has an entry, including a Cleared one.
func (s *Selections) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set stores value under key.
func (s *Selections) Set(key string, value Value) {
	if s == nil {
		return
	}
	s.ensure()
	s.om.Set(key, value)
}

// Delete removes key and reports whether it was present.
func (s *Selections) Delete(key string) bool {
	if s == nil || s.om == nil {
		return false
	}
	_, ok := s.om.Delete(key)
	return ok
}

// Len returns the number of entries.
func (s *Selections) Len() int {
	if s == nil || s.om == nil {
		return 0
	}
	return s.om.Len()
}

// Keys returns the keys in insertion order.
func (s *Selections) Keys() []string {
	keys := make([]string, 0, s.Len())
	s.Each(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Each calls fn for every entry in insertion order until fn returns false.
func (s *Selections) Each(fn func(key string, value Value) bool) {
	if s == nil || s.om == nil || fn == nil {
		return
	}
	for pair := s.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns an independent copy preserving order.
func (s *Selections) Clone() *Selections {
	clone := NewSelections()
	s.Each(func(key string, value Value) bool {
		clone.Set(key, value)
		return true
	})
	return clone
}

// ToMap returns the host representation of every entry. Order is lost.
func (s *Selections) ToMap() map[string]any {
	out := make(map[string]any, s.Len())
	s.Each(func(key string, value Value) bool {
		out[key] = value.Any()
		return true
	})
	return out
}

// Equal reports whether both maps hold the same entries in the same order.
func (s *Selections) Equal(other *Selections) bool {
	if s.Len() != other.Len() {
		return false
	}
	left, right := s.Keys(), other.Keys()
	for i := range left {
		if left[i] != right[i] {
			return false
		}
		a, _ := s.Get(left[i])
		b, _ := other.Get(right[i])
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (s *Selections) MarshalJSON() ([]byte, error) {
	if s == nil || s.om == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.om)
}

// UnmarshalJSON decodes a JSON object keeping the document's key order. A
// JSON null decodes to an empty map.
func (s *Selections) UnmarshalJSON(data []byte) error {
	s.om = orderedmap.New[string, Value]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, s.om)
}
