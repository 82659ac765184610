package observe

import (
	"context"
	"log/slog"
	"time"
)

// LogOp names the registry operation a LogEvent describes.
type LogOp string

const (
	LogOpDefine        LogOp = "define"
	LogOpDeclare       LogOp = "declare"
	LogOpPlainOverride LogOp = "override.plain"
	LogOpBind          LogOp = "bind"
	LogOpActivity      LogOp = "activity"
)

// LogEvent describes a declaration or binding step.
type LogEvent struct {
	Op       LogOp
	Class    string
	Key      string
	Kind     Kind
	ObjectID string
	Duration time.Duration
	Err      error
}

// Logger records registry events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// EvaluatorLogEvent describes an expression evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Scope    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger attaches an evaluator logger to the registry.
func WithEvaluatorLogger(logger EvaluatorLogger) RegistryOption {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}

// SlogLogger writes registry and evaluator events to a slog.Logger. Failures
// log at warn level, everything else at debug.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger; a nil logger falls back to slog.Default.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger.With(slog.String("component", "observe"))}
}

// Log implements Logger.
func (l *SlogLogger) Log(event LogEvent) {
	attrs := []slog.Attr{
		slog.String("op", string(event.Op)),
		slog.String("class", event.Class),
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Kind != 0 {
		attrs = append(attrs, slog.String("kind", event.Kind.String()))
	}
	if event.ObjectID != "" {
		attrs = append(attrs, slog.String("object_id", event.ObjectID))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "observe event failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "observe event", attrs...)
}

// LogEvaluation implements EvaluatorLogger.
func (l *SlogLogger) LogEvaluation(event EvaluatorLogEvent) {
	attrs := []slog.Attr{
		slog.String("engine", event.Engine),
		slog.String("expr", event.Expr),
		slog.String("scope", event.Scope),
		slog.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "expression evaluation failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "expression evaluated", attrs...)
}
