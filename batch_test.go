package filterbox

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	calls []Notification
	fail  map[string]error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.calls = append(r.calls, n)
	return r.fail[n.Key]
}

func (r *recorder) summary() []string {
	out := make([]string, len(r.calls))
	for i, n := range r.calls {
		flags := "-"
		if n.Refresh {
			flags = "refresh"
		}
		if n.AppendToURL {
			flags += "+url"
		}
		out[i] = n.Key + "=" + n.Value.String() + " " + flags
	}
	return out
}

func TestApplyAllRefreshesOnLastOnly(t *testing.T) {
	rec := &recorder{}
	sent, err := ApplyAll(context.Background(), selectionsOf(
		"A", Scalar("a"),
		"B", Multi("b1", "b2"),
		"C", Cleared(),
	), rec)
	if err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}
	if sent != 3 {
		t.Fatalf("expected 3 notifications, got %d", sent)
	}
	want := []string{"A=a -", "B=[b1 b2] -", "C=<cleared> refresh"}
	if diff := cmp.Diff(want, rec.summary()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyAllEmptyIsNoop(t *testing.T) {
	rec := &recorder{}
	sent, err := ApplyAll(context.Background(), NewSelections(), rec)
	if err != nil || sent != 0 || len(rec.calls) != 0 {
		t.Fatalf("expected no notifications, got sent=%d err=%v calls=%v", sent, err, rec.calls)
	}
	if _, err := ApplyAll(nil, nil, nil); err != nil {
		t.Fatalf("nil inputs: %v", err)
	}
}

func TestApplyAllJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{fail: map[string]error{"A": boom, "C": errors.New("later")}}
	sent, err := ApplyAll(context.Background(), selectionsOf(
		"A", Scalar(1),
		"B", Scalar(2),
		"C", Scalar(3),
	), rec)
	if sent != 3 || len(rec.calls) != 3 {
		t.Fatalf("a failing notification must not stop the batch, sent=%d", sent)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}
	if !strings.Contains(err.Error(), `notify "C"`) {
		t.Fatalf("expected key in error, got %q", err.Error())
	}
}
