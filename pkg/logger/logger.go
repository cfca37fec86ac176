package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"parley/config"
)

// Logger wraps zerolog behind the two call shapes used across the codebase:
// structured key/value pairs (Info("msg", "key", val)) and printf variants
// (Infof). Mode and level come from config.LoggerMode.
type Logger struct {
	z zerolog.Logger
}

func NewLogger(cfg *config.Config) (*Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(cfg.LoggerMode.Level)
	if err != nil || cfg.LoggerMode.Level == "" {
		level = zerolog.InfoLevel
	}

	var z zerolog.Logger
	if cfg.LoggerMode.Development && !cfg.LoggerMode.Prod {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(output).Level(level).With().Timestamp().Logger()
	} else {
		z = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}

	return &Logger{z: z}, nil
}

// With returns a child logger carrying the given fields on every entry.
func (l Logger) With(keysAndValues ...any) Logger {
	return Logger{z: l.z.With().Fields(fields(keysAndValues)).Logger()}
}

func (l Logger) Debug(msg string, keysAndValues ...any) {
	l.z.Debug().Fields(fields(keysAndValues)).Msg(msg)
}

func (l Logger) Info(msg string, keysAndValues ...any) {
	l.z.Info().Fields(fields(keysAndValues)).Msg(msg)
}

func (l Logger) Warn(msg string, keysAndValues ...any) {
	l.z.Warn().Fields(fields(keysAndValues)).Msg(msg)
}

func (l Logger) Error(msg string, keysAndValues ...any) {
	l.z.Error().Fields(fields(keysAndValues)).Msg(msg)
}

func (l Logger) Debugf(format string, args ...any) { l.z.Debug().Msgf(format, args...) }
func (l Logger) Infof(format string, args ...any)  { l.z.Info().Msgf(format, args...) }
func (l Logger) Warnf(format string, args ...any)  { l.z.Warn().Msgf(format, args...) }
func (l Logger) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }

// fields normalizes a kv list for zerolog; an odd trailing key gets a
// placeholder value rather than being dropped.
func fields(keysAndValues []any) map[string]any {
	if len(keysAndValues) == 0 {
		return nil
	}
	m := make(map[string]any, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 < len(keysAndValues) {
			m[key] = keysAndValues[i+1]
		} else {
			m[key] = "(MISSING)"
		}
	}
	return m
}
