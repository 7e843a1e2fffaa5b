package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Verbs and object types used for filter box activity.
const (
	VerbFilterChanged  = "filter.changed"
	VerbFilterCleared  = "filter.cleared"
	VerbFiltersApplied = "filters.applied"

	ObjectTypeFilter = "filterbox.filter"
	ObjectTypeWidget = "filterbox.widget"
)

var (
	// ErrUnknownVerb is returned for events outside the filter event set.
	ErrUnknownVerb = errors.New("activity: unknown filter verb")
	// ErrObjectTypeMismatch is returned when a verb is paired with the wrong
	// object type.
	ErrObjectTypeMismatch = errors.New("activity: object type does not match verb")
	// ErrObjectIDRequired is returned for events that name no object.
	ErrObjectIDRequired = errors.New("activity: object id required")
)

var verbObjectTypes = map[string]string{
	VerbFilterChanged:  ObjectTypeFilter,
	VerbFilterCleared:  ObjectTypeFilter,
	VerbFiltersApplied: ObjectTypeWidget,
}

// ValidateEvent checks that event is one of the filter box events with the
// object type its verb expects. Call it on normalized events.
func ValidateEvent(event Event) error {
	objectType, ok := verbObjectTypes[event.Verb]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVerb, event.Verb)
	}
	if event.ObjectType != objectType {
		return fmt.Errorf("%w: %s wants %s, got %q", ErrObjectTypeMismatch, event.Verb, objectType, event.ObjectType)
	}
	if event.ObjectID == "" {
		return fmt.Errorf("%w: %s", ErrObjectIDRequired, event.Verb)
	}
	return nil
}

// FilterEventInput carries the fields shared by filter events.
type FilterEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	WidgetID   string
	Channel    string
	Key        string
	OldValue   any
	NewValue   any
	Instant    bool
	Keys       []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildFilterChangedEvent describes a selection change on one filter key.
func BuildFilterChangedEvent(input FilterEventInput) Event {
	return buildFilterEvent(VerbFilterChanged, ObjectTypeFilter, input)
}

// BuildFilterClearedEvent describes a filter key being cleared.
func BuildFilterClearedEvent(input FilterEventInput) Event {
	return buildFilterEvent(VerbFilterCleared, ObjectTypeFilter, input)
}

// BuildFiltersAppliedEvent describes a batch of pending selections being
// sent to the host.
func BuildFiltersAppliedEvent(input FilterEventInput) Event {
	return buildFilterEvent(VerbFiltersApplied, ObjectTypeWidget, input)
}

func buildFilterEvent(verb, objectType string, input FilterEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if input.WidgetID != "" {
		metadata["widget_id"] = input.WidgetID
	}
	if input.Key != "" {
		metadata["key"] = input.Key
	}
	if input.OldValue != nil {
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata["new_value"] = input.NewValue
	}
	if objectType == ObjectTypeFilter {
		metadata["instant"] = input.Instant
	}
	if len(input.Keys) > 0 {
		metadata["keys"] = append([]string{}, input.Keys...)
	}

	objectID := strings.TrimSpace(input.Key)
	if objectType == ObjectTypeWidget || objectID == "" {
		objectID = strings.TrimSpace(input.WidgetID)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
