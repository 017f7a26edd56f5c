// Package logging строит *slog.Logger по настройкам уровня, формата и файла.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options настройки логгера
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	File   string // пустая строка - вывод в Output

	// Output используется, если File не задан (по умолчанию os.Stderr)
	Output io.Writer

	// Параметры ротации файла
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New создает логгер. Второе значение закрывает файл лога (если он открыт).
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	closer := func() error { return nil }

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    valueOr(opts.MaxSizeMB, 10),
			MaxBackups: valueOr(opts.MaxBackups, 3),
			MaxAge:     valueOr(opts.MaxAgeDays, 28),
		}
		out = rotator
		closer = rotator.Close
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q: must be text or json", opts.Format)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel преобразует строку в slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
