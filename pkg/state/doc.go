// Package state loads and saves filter box selections per scope and merges
// them into the selections a widget starts with.
//
// A Store only loads and saves one snapshot for one Ref. The Resolver loads
// the snapshots of several scopes and merges them through filterbox.Stack,
// strongest scope first, so provenance stays available via Stack.Trace.
//
// Data flow:
//
//	Store -> Resolver.Resolve -> filterbox.NewStack(...).Merge() -> *filterbox.Selections
//
// Writes go through Resolver.Mutate or Resolver.Commit, which check the
// caller's ETag against the stored one before saving.
//
// Deterministic keys:
//
//	Ref.Identifier() yields "dashboard/<dashboard>/<slice>" for dashboard
//	defaults and "<scope>/<id>/<dashboard>/<slice>" for any other scope, where
//	id comes from the scope metadata key "<scope>_id".
package state
