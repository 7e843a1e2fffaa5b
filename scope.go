package filterbox

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-filterbox/layering"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Common scope priorities. A URL override beats a user's saved filters, which
// beat the dashboard defaults.
const (
	PriorityDashboard = 100
	PriorityUser      = 500
	PriorityURL       = 900
)

// Scope models a named precedence bucket for persisted filters. Higher
// priority values represent stronger layers.
type Scope struct {
	Name     string
	Label    string
	Priority int
	Metadata map[string]any
}

// ScopeOption configures a Scope on creation.
type ScopeOption func(*Scope)

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(s *Scope) {
		s.Label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(s *Scope) {
		s.Metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation happens when the stack is built.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	scope := Scope{Name: name, Priority: priority}
	for _, opt := range opts {
		if opt != nil {
			opt(&scope)
		}
	}
	return scope
}

func (s Scope) clone() Scope {
	s.Metadata = copyMetadata(s.Metadata)
	return s
}

// Layer pairs a scope with the selections persisted for it.
type Layer struct {
	Scope      Scope
	Selections *Selections
	SnapshotID string
}

// NewLayer copies the scope and selections into a Layer.
func NewLayer(scope Scope, selections *Selections, snapshotID string) Layer {
	return Layer{
		Scope:      scope.clone(),
		Selections: selections.Clone(),
		SnapshotID: snapshotID,
	}
}

func (l Layer) clone() Layer {
	return NewLayer(l.Scope, l.Selections, l.SnapshotID)
}

var (
	// ErrScopeNameRequired indicates a layer without a scope name.
	ErrScopeNameRequired = errors.New("filterbox: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("filterbox: scope names must be unique")
	// ErrPriorityOrder indicates two layers share a priority.
	ErrPriorityOrder = errors.New("filterbox: scope priorities must be strictly ordered")
	// ErrEmptyStack is returned when merging a stack without layers.
	ErrEmptyStack = errors.New("filterbox: stack must include at least one layer")
)

// Stack is an immutable set of layers ordered strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates the layers and sorts them by descending priority.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = layer.clone()
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority == copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// Layers returns copies of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = s.layers[i].clone()
	}
	return out
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge resolves the stack into the effective selections. A Cleared value in
// a stronger layer hides the weaker layers' value for that key.
func (s *Stack) Merge() (*Selections, error) {
	if s.Len() == 0 {
		return nil, ErrEmptyStack
	}
	return &Selections{om: layering.Merge(s.maps()...)}, nil
}

// Provenance describes one layer's contribution to a key.
type Provenance struct {
	Scope      Scope
	SnapshotID string
	Value      Value
	Effective  bool
}

// Trace lists every layer holding key, strongest first. The first entry,
// when present, is the effective one.
func (s *Stack) Trace(key string) []Provenance {
	if s.Len() == 0 {
		return nil
	}
	holders := layering.Holders(key, s.maps()...)
	out := make([]Provenance, 0, len(holders))
	for i, idx := range holders {
		layer := s.layers[idx]
		value, _ := layer.Selections.Get(key)
		out = append(out, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Value:      value,
			Effective:  i == 0,
		})
	}
	return out
}

func (s *Stack) maps() []*orderedmap.OrderedMap[string, Value] {
	maps := make([]*orderedmap.OrderedMap[string, Value], len(s.layers))
	for i, layer := range s.layers {
		if layer.Selections != nil {
			maps[i] = layer.Selections.om
		}
	}
	return maps
}
