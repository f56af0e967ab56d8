package utils

import (
	"bytes"
	"context"
	"log/slog"
	"time"
)

// ErrAttr returns a slog attribute for an error under the "error" key.
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}

// SlogReplacer renders times and durations as plain strings so JSON and text
// output look the same.
func SlogReplacer(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindTime:
		return slog.String(a.Key, a.Value.Time().Format(time.DateTime))
	case slog.KindDuration:
		return slog.String(a.Key, a.Value.Duration().String())
	default:
		return a
	}
}

// LogOnError runs fn and logs msg with the returned error, if any.
// Meant for deferred Close calls.
func LogOnError(l *slog.Logger, fn func() error, msg string) {
	if err := fn(); err != nil {
		l.Error(msg, ErrAttr(err))
	}
}

// LogWriter adapts a slog.Logger to io.Writer, one record per write.
type LogWriter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogWriter creates a writer that logs every write at info level.
func NewSlogWriter(l *slog.Logger) *LogWriter {
	return &LogWriter{logger: l, level: slog.LevelInfo}
}

// NewSlogLevelWriter creates a writer that logs every write at the given level.
func NewSlogLevelWriter(l *slog.Logger, level slog.Level) *LogWriter {
	return &LogWriter{logger: l, level: level}
}

// Write implements io.Writer. Trailing newlines are trimmed and empty lines dropped.
func (w *LogWriter) Write(p []byte) (int, error) {
	msg := bytes.TrimRight(p, "\r\n")
	if len(msg) == 0 {
		return len(p), nil
	}

	w.logger.Log(context.Background(), w.level, string(msg))

	return len(p), nil
}
