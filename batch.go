package filterbox

import (
	"context"
	"errors"
	"fmt"
)

// Notification is delivered to the host for every selection it must apply.
// Refresh asks the host to re-query; AppendToURL asks it to reflect the
// filter in the page URL.
type Notification struct {
	Key         string
	Value       Value
	AppendToURL bool
	Refresh     bool
}

// Notifier receives notifications from a widget. Delivery is fire-and-forget:
// returned errors are logged but never retried.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (fn NotifierFunc) Notify(ctx context.Context, n Notification) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, n)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }

// ApplyAll notifies every entry of selections in insertion order. Only the
// final notification carries Refresh so the host re-queries once per batch.
// An empty map notifies nothing. Notifier failures do not stop the batch;
// they are joined into the returned error. The returned count is the number
// of notifications attempted.
func ApplyAll(ctx context.Context, selections *Selections, notifier Notifier) (int, error) {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	total := selections.Len()
	sent := 0
	var errs []error
	selections.Each(func(key string, value Value) bool {
		sent++
		n := Notification{
			Key:         key,
			Value:       value,
			AppendToURL: false,
			Refresh:     sent == total,
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("filterbox: notify %q: %w", key, err))
		}
		return true
	})
	if len(errs) == 0 {
		return sent, nil
	}
	return sent, errors.Join(errs...)
}
