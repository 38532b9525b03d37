package logger

import (
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fields is the structured payload attached to a log event.
type Fields = map[string]interface{}

// Logger is a zerolog logger that may carry bound fields.
type Logger struct {
	logger zerolog.Logger
}

// Config selects level, encoding and destination.
type Config struct {
	Level       string
	Format      string // "json" or "console"
	Output      io.Writer
	EnableColor bool
}

var (
	globalLogger *Logger
	initOnce     sync.Once
)

// Initialize replaces the process-wide logger. Unknown levels fall back to info.
func Initialize(cfg Config) {
	zerolog.SetGlobalLevel(parseLogLevel(cfg.Level))

	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.EnableColor,
		}
	}

	l := zerolog.New(output).With().Timestamp().Logger()
	globalLogger = &Logger{logger: l}
	log.Logger = l
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the process-wide logger, creating a console one on first use.
func Get() *Logger {
	initOnce.Do(func() {
		if globalLogger == nil {
			Initialize(Config{
				Level:       "info",
				Format:      "console",
				EnableColor: true,
			})
		}
	})
	return globalLogger
}

// WithContext binds fields to every event of the returned logger.
func (l *Logger) WithContext(fields Fields) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

// emit decorates the event with the caller skip frames above it and the
// optional field map, then writes it.
func emit(event *zerolog.Event, skip int, msg string, fields []Fields) {
	if event == nil {
		return
	}
	pc, file, line, _ := runtime.Caller(skip + 1)
	event = event.Str("caller", zerolog.CallerMarshalFunc(pc, file, line))
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	emit(l.logger.Debug(), 1, msg, fields)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	emit(l.logger.Info(), 1, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	emit(l.logger.Warn(), 1, msg, fields)
}

func (l *Logger) Error(msg string, err error, fields ...Fields) {
	emit(l.logger.Error().Err(err), 1, msg, fields)
}

// Fatal writes the event and exits the process.
func (l *Logger) Fatal(msg string, err error, fields ...Fields) {
	emit(l.logger.Fatal().Err(err), 1, msg, fields)
}

func Debug(msg string, fields ...Fields) {
	emit(Get().logger.Debug(), 1, msg, fields)
}

func Info(msg string, fields ...Fields) {
	emit(Get().logger.Info(), 1, msg, fields)
}

func Warn(msg string, fields ...Fields) {
	emit(Get().logger.Warn(), 1, msg, fields)
}

func Error(msg string, err error, fields ...Fields) {
	emit(Get().logger.Error().Err(err), 1, msg, fields)
}

func Fatal(msg string, err error, fields ...Fields) {
	emit(Get().logger.Fatal().Err(err), 1, msg, fields)
}

func WithContext(fields Fields) *Logger {
	return Get().WithContext(fields)
}
