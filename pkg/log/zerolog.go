package log

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// ZerologLogger is the zerolog backed Logger used by the CLI.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger writes JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	return &ZerologLogger{
		logger: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// NewConsoleLogger writes human readable lines to w.
func NewConsoleLogger(w io.Writer, level Level) *ZerologLogger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return &ZerologLogger{
		logger: zerolog.New(out).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// Nop returns a Logger that discards everything.
func Nop() *ZerologLogger {
	return &ZerologLogger{logger: zerolog.Nop()}
}

func (z *ZerologLogger) Debug(msg string, fields ...any) { emit(z.logger.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...any)  { emit(z.logger.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...any)  { emit(z.logger.Warn(), msg, fields) }

func (z *ZerologLogger) Error(msg string, fields ...any) {
	ev := z.logger.Error()
	if err, rest, ok := leadingError(fields); ok {
		ev = ev.Err(err)
		fields = rest
	}
	emit(ev, msg, fields)
}

func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(fields).Logger()}
}

func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	lvl := toZerologLevel(level)
	return lvl >= z.logger.GetLevel() && lvl >= zerolog.GlobalLevel()
}

// InstallWarnHook routes errors.Warn through this logger. Warnings that
// implement zerolog.LogObjectMarshaler are embedded as structured fields.
func (z *ZerologLogger) InstallWarnHook() {
	errors.SetZerologWarnFunc(func(w error) {
		ev := z.logger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
}

func emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider hands out ZerologLoggers sharing one writer.
type ZerologProvider struct {
	w       io.Writer
	console bool
	base    *ZerologLogger
}

// NewZerologProvider creates a JSON provider writing to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{w: w, base: NewZerologLogger(w, level)}
}

// NewConsoleProvider creates a console provider writing to w.
func NewConsoleProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{w: w, console: true, base: NewConsoleLogger(w, level)}
}

func (p *ZerologProvider) GetLogger() Logger { return p.base }

func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.base.With(ComponentKey, name)
}

func (p *ZerologProvider) SetLevel(level Level) {
	if p.console {
		p.base = NewConsoleLogger(p.w, level)
		return
	}
	p.base = NewZerologLogger(p.w, level)
}
