package filterbox

import (
	"strings"

	"github.com/goliatone/go-filterbox/pkg/activity"
)

// Option configures a Widget.
type Option func(*config)

// Actor identifies who interacts with a widget in emitted activity.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

type config struct {
	instant        bool
	keyMap         KeyMap
	initial        *Selections
	notifier       Notifier
	logger         Logger
	activityHooks  activity.Hooks
	activityConfig activity.Config
	actor          Actor
	mutator        *ChoiceMutator
	widgetID       string
	fields         []FilterField
}

func defaultConfig() config {
	return config{
		instant:        true,
		keyMap:         DefaultKeyMap(),
		notifier:       noopNotifier{},
		logger:         noopLogger{},
		activityConfig: activity.Config{Enabled: true},
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithInstantFiltering selects instant mode (every change notifies the host
// at once) or explicit-apply mode. Defaults to true.
func WithInstantFiltering(instant bool) Option {
	return func(cfg *config) {
		cfg.instant = instant
	}
}

// WithKeyMap replaces the semantic to canonical key table.
func WithKeyMap(keys KeyMap) Option {
	return func(cfg *config) {
		cfg.keyMap = NewKeyMap(keys.table)
	}
}

// WithInitialSelections seeds the widget with previously persisted filters.
// The snapshot is copied.
func WithInitialSelections(selections *Selections) Option {
	return func(cfg *config) {
		cfg.initial = selections.Clone()
	}
}

// WithInitialFilters seeds the widget from an untyped filter snapshot.
func WithInitialFilters(filters map[string]any) Option {
	return func(cfg *config) {
		cfg.initial = SelectionsFromMap(filters)
	}
}

// WithNotifier sets the host callback receiving notifications.
func WithNotifier(notifier Notifier) Option {
	return func(cfg *config) {
		if notifier == nil {
			cfg.notifier = noopNotifier{}
			return
		}
		cfg.notifier = notifier
	}
}

// WithActivityHooks attaches activity hooks. Nil hooks are dropped and the
// slice is copied.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig controls activity emission; it is enabled by default
// whenever hooks are present.
func WithActivityConfig(activityConfig activity.Config) Option {
	return func(cfg *config) {
		cfg.activityConfig = activityConfig
	}
}

// WithActor sets the identities recorded on emitted activity.
func WithActor(actor Actor) Option {
	return func(cfg *config) {
		cfg.actor = Actor{
			ActorID:  strings.TrimSpace(actor.ActorID),
			UserID:   strings.TrimSpace(actor.UserID),
			TenantID: strings.TrimSpace(actor.TenantID),
		}
	}
}

// WithChoiceMutator rewrites choices before every reconciliation.
func WithChoiceMutator(mutator *ChoiceMutator) Option {
	return func(cfg *config) {
		cfg.mutator = mutator
	}
}

// WithWidgetID overrides the generated widget identifier.
func WithWidgetID(id string) Option {
	return func(cfg *config) {
		cfg.widgetID = strings.TrimSpace(id)
	}
}

// WithFields sets the filter fields rendered by View, in display order.
func WithFields(fields ...FilterField) Option {
	return func(cfg *config) {
		cfg.fields = append([]FilterField(nil), fields...)
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
