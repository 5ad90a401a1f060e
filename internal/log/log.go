package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = timeFormat
		zerolog.ErrorFieldName = "err"
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
		logger = zerolog.New(cw).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
}

func SetLevel(l Level) {
	initLogger()
	logger = logger.Level(parseLevel(l))
}

func Debug(msg string, kv ...any) {
	initLogger()
	emit(logger.Debug(), msg, kv)
}

func Info(msg string, kv ...any) {
	initLogger()
	emit(logger.Info(), msg, kv)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	emit(logger.Error().Err(err), msg, kv)
}

// emit appends structured key-value pairs to the event and writes it.
// kv is expected as pairs: key, value, key, value, ...
// Non-string keys are skipped; if the count is odd, the last value is ignored.
func emit(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

func parseLevel(l Level) zerolog.Level {
	switch Level(strings.ToUpper(strings.TrimSpace(string(l)))) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
