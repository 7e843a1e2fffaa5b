package filterbox

import (
	"context"
	"log/slog"
	"time"
)

// Operations reported through Logger.
const (
	OpChange    = "change"
	OpNotify    = "notify"
	OpApply     = "apply"
	OpReconcile = "reconcile"
	OpMutate    = "mutate"
	OpActivity  = "activity"
)

// LogEvent describes one widget operation for logging.
type LogEvent struct {
	Op       string
	WidgetID string
	Key      string
	Refresh  bool
	Count    int
	Duration time.Duration
	Err      error
}

// Logger records widget events.
type Logger interface {
	LogEvent(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(LogEvent) {}

// WithLogger attaches a logger to the widget.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogLogger forwards events to a structured slog logger. Failed events are
// logged at warn level, the rest at debug.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return LoggerFunc(func(event LogEvent) {
		attrs := []slog.Attr{
			slog.String("op", event.Op),
			slog.String("widget", event.WidgetID),
		}
		if event.Key != "" {
			attrs = append(attrs, slog.String("key", event.Key))
		}
		if event.Refresh {
			attrs = append(attrs, slog.Bool("refresh", true))
		}
		if event.Count > 0 {
			attrs = append(attrs, slog.Int("count", event.Count))
		}
		if event.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Duration))
		}
		level := slog.LevelDebug
		if event.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("error", event.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, "filterbox", attrs...)
	})
}
