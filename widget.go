package filterbox

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-filterbox/pkg/activity"
	"github.com/google/uuid"
)

// Widget holds the selection state of one filter box instance. Every change
// goes through ApplyChange. In instant mode each change is sent to the host
// immediately; otherwise changes accumulate, the widget turns dirty, and
// Apply sends them all at once.
//
// A Widget is safe for concurrent use, but notifications are delivered
// outside its lock, so a Notifier may call back into the widget.
type Widget struct {
	mu         sync.Mutex
	id         string
	instant    bool
	keys       KeyMap
	notifier   Notifier
	logger     Logger
	emitter    *activity.Emitter
	actor      Actor
	mutator    *ChoiceMutator
	fields     []FilterField
	selections *Selections
	dirty      bool
	revision   uint64
}

// New builds a widget. The selection map starts from the initial snapshot,
// or empty, and the widget starts clean.
func New(opts ...Option) *Widget {
	cfg := applyOptions(opts)
	id := cfg.widgetID
	if id == "" {
		id = uuid.NewString()
	}
	selections := cfg.initial
	if selections == nil {
		selections = NewSelections()
	}
	return &Widget{
		id:         id,
		instant:    cfg.instant,
		keys:       cfg.keyMap,
		notifier:   cfg.notifier,
		logger:     cfg.logger,
		emitter:    activity.NewEmitter(cfg.activityHooks, cfg.activityConfig),
		actor:      cfg.actor,
		mutator:    cfg.mutator,
		fields:     cfg.fields,
		selections: selections,
	}
}

// ID returns the widget identifier.
func (w *Widget) ID() string {
	return w.id
}

// Instant reports whether the widget runs in instant mode.
func (w *Widget) Instant() bool {
	return w.instant
}

// KeyMap returns the key table in use.
func (w *Widget) KeyMap() KeyMap {
	return w.keys
}

// Dirty reports whether changes were made since the last Apply.
func (w *Widget) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Selections returns a copy of the current selection map.
func (w *Widget) Selections() *Selections {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selections.Clone()
}

// Value returns the selection stored under a canonical key.
func (w *Widget) Value(canonicalKey string) (Value, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selections.Get(canonicalKey)
}

// ControlValue returns the selection for a semantic control name, e.g. the
// value of "time_range" is read from "__time_range".
func (w *Widget) ControlValue(semanticKey string) (Value, bool) {
	return w.Value(w.keys.Canonicalize(semanticKey))
}

// ChangeFilter decodes a raw select-control payload and applies it.
func (w *Widget) ChangeFilter(ctx context.Context, semanticKey string, raw any) {
	w.ApplyChange(ctx, semanticKey, ParseChange(raw))
}

// ApplyChange stores value under the canonical form of semanticKey,
// replacing any previous value, and marks the widget dirty. In instant mode
// the host is notified with Refresh set for this key only. Instant mode
// does not clear the dirty flag; only Apply does.
func (w *Widget) ApplyChange(ctx context.Context, semanticKey string, value Value) {
	if ctx == nil {
		ctx = context.Background()
	}
	key := w.keys.Canonicalize(semanticKey)

	w.mu.Lock()
	previous, _ := w.selections.Get(key)
	w.selections.Set(key, value)
	w.dirty = true
	w.revision++
	w.mu.Unlock()

	w.logger.LogEvent(LogEvent{Op: OpChange, WidgetID: w.id, Key: key, Count: value.Len()})
	w.emitChange(ctx, key, previous, value)

	if !w.instant {
		return
	}
	err := w.notifier.Notify(ctx, Notification{
		Key:         key,
		Value:       value,
		AppendToURL: false,
		Refresh:     true,
	})
	w.logger.LogEvent(LogEvent{Op: OpNotify, WidgetID: w.id, Key: key, Refresh: true, Count: 1, Err: err})
}

// Apply sends every pending selection to the host in insertion order, with
// Refresh set on the last one only, then marks the widget clean. A change
// made while the batch is being delivered keeps the widget dirty.
func (w *Widget) Apply(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.Lock()
	snapshot := w.selections.Clone()
	revision := w.revision
	w.mu.Unlock()

	start := time.Now()
	sent, err := ApplyAll(ctx, snapshot, w.notifier)

	w.mu.Lock()
	if w.revision == revision {
		w.dirty = false
	}
	w.mu.Unlock()

	w.logger.LogEvent(LogEvent{
		Op:       OpApply,
		WidgetID: w.id,
		Refresh:  sent > 0,
		Count:    sent,
		Duration: time.Since(start),
		Err:      err,
	})
	w.emitActivity(ctx, activity.BuildFiltersAppliedEvent(w.eventInput(activity.FilterEventInput{
		Keys: snapshot.Keys(),
	})))
}

// Reconcile returns choices augmented with the widget's orphan selections.
func (w *Widget) Reconcile(choices ChoiceSet) ChoiceSet {
	selections := w.Selections()
	out := Reconcile(choices, selections)
	added := 0
	for key, list := range out {
		added += len(list) - len(choices[key])
	}
	if added > 0 {
		w.logger.LogEvent(LogEvent{Op: OpReconcile, WidgetID: w.id, Count: added})
	}
	return out
}

func (w *Widget) emitChange(ctx context.Context, key string, previous, value Value) {
	input := w.eventInput(activity.FilterEventInput{
		Key:      key,
		OldValue: previous.Any(),
		NewValue: value.Any(),
		Instant:  w.instant,
	})
	if value.IsCleared() {
		w.emitActivity(ctx, activity.BuildFilterClearedEvent(input))
		return
	}
	w.emitActivity(ctx, activity.BuildFilterChangedEvent(input))
}

func (w *Widget) eventInput(input activity.FilterEventInput) activity.FilterEventInput {
	input.ActorID = w.actor.ActorID
	input.UserID = w.actor.UserID
	input.TenantID = w.actor.TenantID
	input.WidgetID = w.id
	return input
}

func (w *Widget) emitActivity(ctx context.Context, event activity.Event) {
	if !w.emitter.Enabled() {
		return
	}
	if err := w.emitter.Emit(ctx, event); err != nil {
		w.logger.LogEvent(LogEvent{Op: OpActivity, WidgetID: w.id, Key: event.ObjectID, Err: err})
	}
}
