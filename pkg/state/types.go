package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	filterbox "github.com/goliatone/go-filterbox"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// DashboardScope is the scope name holding dashboard-wide defaults.
const DashboardScope = "dashboard"

// Ref identifies the snapshot of one filter box under one scope.
type Ref struct {
	Dashboard string
	SliceID   int
	Scope     filterbox.Scope
}

// Meta is storage-owned metadata used for provenance and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one selection snapshot for a single Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (snapshot *filterbox.Selections, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot *filterbox.Selections, meta Meta) (Meta, error)
}

// Mutator edits a loaded snapshot in place.
type Mutator func(*filterbox.Selections) error

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Dashboard == "" {
		return "", fmt.Errorf("state: dashboard is required")
	}
	switch r.Scope.Name {
	case "":
		return "", fmt.Errorf("state: scope name is required")
	case DashboardScope:
		return fmt.Sprintf("dashboard/%s/%d", r.Dashboard, r.SliceID), nil
	default:
		metadataKey := r.Scope.Name + "_id"
		id, ok := r.Scope.Metadata[metadataKey].(string)
		if !ok || id == "" {
			return "", fmt.Errorf("state: missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
		}
		return fmt.Sprintf("%s/%s/%s/%d", r.Scope.Name, id, r.Dashboard, r.SliceID), nil
	}
}

// Resolution is the outcome of resolving a filter box across scopes.
type Resolution struct {
	Selections *filterbox.Selections
	Stack      *filterbox.Stack
}

// Resolver orchestrates scoped loads and merges them into one selection map.
type Resolver struct {
	Store Store
}

// Resolve loads the snapshot of every scope and merges those found. Scopes
// without a snapshot are skipped; when none has one the resolution holds an
// empty selection map.
func (r Resolver) Resolve(ctx context.Context, dashboard string, sliceID int, scopes ...filterbox.Scope) (Resolution, error) {
	if r.Store == nil {
		return Resolution{}, fmt.Errorf("state: store is required")
	}
	if dashboard == "" {
		return Resolution{}, fmt.Errorf("state: dashboard is required")
	}

	layers := make([]filterbox.Layer, 0, len(scopes))
	for _, scope := range scopes {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Dashboard: dashboard, SliceID: sliceID, Scope: scope})
		if err != nil {
			return Resolution{}, fmt.Errorf("state: load %q for scope %q: %w", dashboard, scope.Name, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, filterbox.NewLayer(scope, snapshot, meta.SnapshotID))
	}

	stack, err := filterbox.NewStack(layers...)
	if err != nil {
		return Resolution{}, fmt.Errorf("state: stack: %w", err)
	}
	if stack.Len() == 0 {
		return Resolution{Selections: filterbox.NewSelections(), Stack: stack}, nil
	}
	merged, err := stack.Merge()
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Selections: merged, Stack: stack}, nil
}

// Mutate loads one snapshot, applies fn and saves the result. When meta
// carries an ETag it must match the stored one.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*filterbox.Selections, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return nil, Meta{}, err
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Dashboard, ref.Scope.Name, err)
	}
	if !ok || snapshot == nil {
		snapshot = filterbox.NewSelections()
		loadedMeta = Meta{}
	}
	if meta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	snapshot = snapshot.Clone()
	if err := fn(snapshot); err != nil {
		return nil, loadedMeta, err
	}

	savedMeta, err := r.Store.Save(ctx, ref, snapshot, mergeMeta(loadedMeta, meta))
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q for scope %q: %w", ref.Dashboard, ref.Scope.Name, err)
	}
	return snapshot, savedMeta, nil
}

// Commit replaces the stored snapshot with selections.
func (r Resolver) Commit(ctx context.Context, ref Ref, meta Meta, selections *filterbox.Selections) (Meta, error) {
	_, saved, err := r.Mutate(ctx, ref, meta, func(current *filterbox.Selections) error {
		for _, key := range current.Keys() {
			current.Delete(key)
		}
		selections.Each(func(key string, value filterbox.Value) bool {
			current.Set(key, value)
			return true
		})
		return nil
	})
	return saved, err
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
