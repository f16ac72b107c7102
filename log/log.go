// Package log re-exports github.com/luxfi/log the way the teacher repo's
// own log/compat.go does for go-ethereum-style call sites. Every record is
// expected to carry structured fields (mint, signature, error) rather than
// free-form text.
package log

import (
	"context"
	"io"
	"log/slog"

	luxlog "github.com/luxfi/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelCrit:  "CRIT",
}

// Logger is re-exported from luxfi/log so every call site in this module
// programs against the same interface the teacher's compat layer exposes.
type Logger = luxlog.Logger

// New and Root re-export luxfi/log's root-logger constructors.
var (
	New  = luxlog.New
	Root = luxlog.Root
)

func Trace(msg string, ctx ...interface{}) { luxlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { luxlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { luxlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { luxlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { luxlog.Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { luxlog.Root().Crit(msg, ctx...) }

// SetDefault installs l as the package-level root logger.
func SetDefault(l Logger) { luxlog.SetDefault(l) }

// LvlFromString parses a case-insensitive level name via luxfi/log.
func LvlFromString(s string) (slog.Level, error) {
	lvl, err := luxlog.ToLevel(s)
	return slog.Level(lvl), err
}

// NewLogger mirrors compat.go's own NewLogger stub verbatim: the handler
// argument exists only so go-ethereum-style call sites (log.NewLogger(h))
// keep compiling unchanged, but it is not attached to anything. luxfi/log's
// own Logger implementation owns its output; this package has no way to
// splice a foreign slog.Handler into it without reimplementing the
// interface, and the teacher's two in-tree attempts at that
// (plugin/evm/logger_adapter.go's zapToLuxLogAdapter and
// plugin/evm/gossip/logger_adapter.go's loggerAdapter) disagree with each
// other on what the interface actually requires, so this package doesn't
// attempt a third one.
func NewLogger(h slog.Handler) Logger { return luxlog.Root() }

// NewTerminalHandler returns a human-readable handler suitable for a TTY.
func NewTerminalHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelTrace,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl := a.Value.Any().(slog.Level)
				if name, ok := levelNames[lvl]; ok {
					a.Value = slog.StringValue(name)
				}
			}
			return a
		},
	})
}

// NewFileHandler returns a JSON handler backed by a rotating log file.
func NewFileHandler(path string, maxSizeMB, maxBackups, maxAgeDays int) slog.Handler {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	return slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: LevelTrace})
}

func DiscardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

// levelFilterHandler wraps h, discarding records below min.
type levelFilterHandler struct {
	min slog.Level
	h   slog.Handler
}

func LvlFilterHandler(min slog.Level, h slog.Handler) slog.Handler {
	return &levelFilterHandler{min: min, h: h}
}

func (f *levelFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= f.min && f.h.Enabled(ctx, level)
}
func (f *levelFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	return f.h.Handle(ctx, r)
}
func (f *levelFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilterHandler{min: f.min, h: f.h.WithAttrs(attrs)}
}
func (f *levelFilterHandler) WithGroup(name string) slog.Handler {
	return &levelFilterHandler{min: f.min, h: f.h.WithGroup(name)}
}
