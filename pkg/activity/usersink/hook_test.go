package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-filterbox/pkg/activity"
	"github.com/goliatone/go-filterbox/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsFilterEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildFilterChangedEvent(activity.FilterEventInput{
		ActorID:    actorID.String(),
		UserID:     userID.String(),
		TenantID:   tenantID.String(),
		WidgetID:   "widget-1",
		Channel:    "dashboards",
		Key:        "columns",
		NewValue:   []any{"a", "c"},
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != userID || record.TenantID != tenantID {
		t.Fatalf("unexpected ids: %+v", record)
	}
	if record.Verb != activity.VerbFilterChanged || record.ObjectType != activity.ObjectTypeFilter || record.ObjectID != "columns" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "dashboards" {
		t.Fatalf("expected channel dashboards got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["filter_key"] != "columns" || record.Data["widget_id"] != "widget-1" {
		t.Fatalf("expected filter metadata got %v", record.Data)
	}
}

func TestHookNotifyUsesDefaultActor(t *testing.T) {
	sink := &recordingSink{}
	fallback := uuid.New()
	hook := usersink.Hook{Sink: sink, DefaultActorID: fallback}

	event := activity.BuildFiltersAppliedEvent(activity.FilterEventInput{
		ActorID:  "not-a-uuid",
		WidgetID: "widget-2",
		Keys:     []string{"A", "B"},
	})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != fallback {
		t.Fatalf("expected fallback actor %s got %s", fallback, record.ActorID)
	}
	if _, ok := record.Data["filter_key"]; ok {
		t.Fatalf("applied events are not tied to one filter: %v", record.Data)
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.BuildFilterClearedEvent(activity.FilterEventInput{Key: "region"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.BuildFilterClearedEvent(activity.FilterEventInput{Key: "region"})); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
