package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is one filter box interaction as delivered to hooks. IDs are plain
// strings; sinks parse them into their own ID types.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Key returns the filter key an event refers to, if any.
func (e Event) Key() string {
	if key, ok := e.Metadata["key"].(string); ok {
		return key
	}
	if e.ObjectType == ObjectTypeFilter {
		return e.ObjectID
	}
	return ""
}

// ActivityHook receives filter events after validation.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans filter events out to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes the event, checks it against the filter event set and
// forwards it to every hook in order. Invalid events reach no hook and are
// reported as an error. Hook failures do not stop the fan-out; they are
// joined and tagged with the verb and the hook position.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if err := ValidateEvent(normalized); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, fmt.Errorf("activity: %s hook %d: %w", normalized.Verb, i, err))
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, lower-cases the verb and applies the
// filter box defaults: DefaultChannel, the current time and, for filter
// events without an object id, the key recorded in metadata. Metadata and
// recipients are copied so hooks never share state with the caller.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.ToLower(strings.TrimSpace(event.Verb))
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.UserID = strings.TrimSpace(event.UserID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.DefinitionCode = strings.TrimSpace(event.DefinitionCode)
	normalized.Metadata = cloneMap(event.Metadata)

	if normalized.Channel == "" {
		normalized.Channel = DefaultChannel
	}
	if normalized.ObjectID == "" && normalized.ObjectType == ObjectTypeFilter {
		if key, ok := normalized.Metadata["key"].(string); ok {
			normalized.ObjectID = strings.TrimSpace(key)
		}
	}
	if len(event.Recipients) > 0 {
		normalized.Recipients = append([]string{}, event.Recipients...)
	} else {
		normalized.Recipients = nil
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		if keys, ok := value.([]string); ok {
			value = append([]string{}, keys...)
		}
		dst[key] = value
	}
	return dst
}
