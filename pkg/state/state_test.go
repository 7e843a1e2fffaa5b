package state_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	filterbox "github.com/goliatone/go-filterbox"
	"github.com/goliatone/go-filterbox/pkg/state"
)

func userScope(id string) filterbox.Scope {
	return filterbox.NewScope("user", filterbox.PriorityUser,
		filterbox.WithScopeMetadata(map[string]any{"user_id": id}))
}

func dashboardScope() filterbox.Scope {
	return filterbox.NewScope(state.DashboardScope, filterbox.PriorityDashboard)
}

func selections(pairs ...any) *filterbox.Selections {
	s := filterbox.NewSelections()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(pairs[i].(string), pairs[i+1].(filterbox.Value))
	}
	return s
}

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name    string
		ref     state.Ref
		want    string
		wantErr string
	}{
		{name: "dashboard", ref: state.Ref{Dashboard: "sales", SliceID: 7, Scope: dashboardScope()}, want: "dashboard/sales/7"},
		{name: "user", ref: state.Ref{Dashboard: "sales", SliceID: 7, Scope: userScope("u-1")}, want: "user/u-1/sales/7"},
		{name: "missing id", ref: state.Ref{Dashboard: "sales", Scope: filterbox.NewScope("team", 300)}, wantErr: "team_id"},
		{name: "missing dashboard", ref: state.Ref{Scope: dashboardScope()}, wantErr: "dashboard is required"},
		{name: "missing scope", ref: state.Ref{Dashboard: "sales"}, wantErr: "scope name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Identifier: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestMemoryStoreIssuesETags(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	ref := state.Ref{Dashboard: "sales", SliceID: 1, Scope: dashboardScope()}

	first, err := store.Save(ctx, ref, selections("region", filterbox.Multi("emea")), state.Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.SnapshotID == "" || first.ETag == "" || first.UpdatedAt.IsZero() {
		t.Fatalf("expected store-issued metadata, got %+v", first)
	}

	second, err := store.Save(ctx, ref, selections("region", filterbox.Multi("apac")), state.Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if second.SnapshotID != first.SnapshotID {
		t.Fatalf("expected snapshot id to persist, got %q then %q", first.SnapshotID, second.SnapshotID)
	}
	if second.ETag == first.ETag {
		t.Fatalf("expected a new etag per save")
	}

	loaded, meta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if meta.ETag != second.ETag {
		t.Fatalf("expected latest etag, got %q", meta.ETag)
	}
	loaded.Set("region", filterbox.Cleared())
	again, _, _, _ := store.Load(ctx, ref)
	if v, _ := again.Get("region"); !v.Equal(filterbox.Multi("apac")) {
		t.Fatalf("expected stored snapshot to be isolated from callers, got %v", v)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}
}

func TestResolverMergesScopes(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	dash := state.Ref{Dashboard: "sales", SliceID: 3, Scope: dashboardScope()}
	user := state.Ref{Dashboard: "sales", SliceID: 3, Scope: userScope("u-1")}

	if _, err := store.Save(ctx, dash, selections(
		"region", filterbox.Multi("emea", "amer"),
		"__time_range", filterbox.Scalar("Last quarter"),
	), state.Meta{}); err != nil {
		t.Fatalf("Save dashboard: %v", err)
	}
	userMeta, err := store.Save(ctx, user, selections("region", filterbox.Multi("apac")), state.Meta{})
	if err != nil {
		t.Fatalf("Save user: %v", err)
	}

	resolver := state.Resolver{Store: store}
	res, err := resolver.Resolve(ctx, "sales", 3, dashboardScope(), userScope("u-1"), userScope("u-1"))
	if err == nil {
		t.Fatalf("expected duplicate scopes to be rejected")
	}

	res, err = resolver.Resolve(ctx, "sales", 3, dashboardScope(), userScope("u-1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := selections(
		"region", filterbox.Multi("apac"),
		"__time_range", filterbox.Scalar("Last quarter"),
	)
	if !res.Selections.Equal(want) {
		t.Fatalf("unexpected merge: %v", res.Selections.ToMap())
	}
	trace := res.Stack.Trace("region")
	if len(trace) != 2 || trace[0].SnapshotID != userMeta.SnapshotID {
		t.Fatalf("expected user layer to win with its snapshot id, got %+v", trace)
	}
}

func TestResolverWithoutSnapshots(t *testing.T) {
	resolver := state.Resolver{Store: state.NewMemoryStore()}
	res, err := resolver.Resolve(context.Background(), "sales", 1, dashboardScope())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Selections.Len() != 0 || res.Stack.Len() != 0 {
		t.Fatalf("expected empty resolution, got %v", res.Selections.ToMap())
	}
}

func TestResolverCommitChecksETag(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	resolver := state.Resolver{Store: store}
	ref := state.Ref{Dashboard: "sales", SliceID: 1, Scope: userScope("u-1")}

	meta, err := resolver.Commit(ctx, ref, state.Meta{}, selections("region", filterbox.Multi("emea")))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := resolver.Commit(ctx, ref, state.Meta{ETag: "stale"}, selections()); !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}

	next, err := resolver.Commit(ctx, ref, state.Meta{ETag: meta.ETag}, selections("country", filterbox.Scalar("FR")))
	if err != nil {
		t.Fatalf("Commit with current etag: %v", err)
	}
	if next.ETag == meta.ETag {
		t.Fatalf("expected a fresh etag after commit")
	}

	loaded, _, _, err := store.Load(ctx, ref)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Equal(selections("country", filterbox.Scalar("FR"))) {
		t.Fatalf("expected commit to replace the snapshot, got %v", loaded.ToMap())
	}
}

func TestResolverMutateErrorDoesNotSave(t *testing.T) {
	store := state.NewMemoryStore()
	resolver := state.Resolver{Store: store}
	ref := state.Ref{Dashboard: "sales", Scope: dashboardScope()}

	boom := errors.New("boom")
	_, _, err := resolver.Mutate(context.Background(), ref, state.Meta{}, func(*filterbox.Selections) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing saved")
	}
}
