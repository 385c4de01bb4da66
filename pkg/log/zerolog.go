package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	scierrors "github.com/YuminosukeSato/scitab/pkg/errors"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelWarn)
)

// SetProvider replaces the global provider used by GetLogger and
// GetLoggerWithName. A nil provider is ignored.
func SetProvider(p LoggerProvider) {
	if p == nil {
		return
	}
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns a logger from the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger from the global provider tagged with name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// ZerologProvider is the default LoggerProvider. Records are written as JSON
// lines by rs/zerolog.
type ZerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider returns a provider writing to w at the given minimum level.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	p := &ZerologProvider{base: zerolog.New(w).With().Timestamp().Logger()}
	p.SetLevel(level)
	return p
}

func (p *ZerologProvider) GetLogger() Logger {
	l := p.base
	return &zerologLogger{logger: &l}
}

func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	l := p.base.With().Str(ComponentKey, name).Logger()
	return &zerologLogger{logger: &l}
}

func (p *ZerologProvider) SetLevel(level Level) {
	p.base = p.base.Level(toZerologLevel(level))
}

// RouteWarnings sends errors.Warn output through this provider as structured
// warn records instead of the standard library logger.
func (p *ZerologProvider) RouteWarnings() {
	logger := p.base.With().Str(ComponentKey, "warnings").Logger()
	scierrors.SetZerologWarnFunc(func(w error) {
		event := logger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			event = event.Object("warning", m)
		}
		event.Msg(w.Error())
	})
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

type zerologLogger struct {
	logger *zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.logger.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.logger.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.logger.Warn(), msg, fields) }

func (z *zerologLogger) Error(msg string, fields ...any) {
	event := z.logger.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			event = withError(event, ErrAttrKey, err)
			fields = fields[1:]
		}
	}
	z.emit(event, msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			ctx = ctx.AnErr(key, err)
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	l := ctx.Logger()
	return &zerologLogger{logger: &l}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

func (z *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	if event == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			event = withError(event, key, v)
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

func withError(event *zerolog.Event, key string, err error) *zerolog.Event {
	event = event.AnErr(key, err)
	if code := ErrorCode(err); code != "" {
		event = event.Str(ErrorCodeKey, code)
	}
	var m zerolog.LogObjectMarshaler
	if scierrors.As(err, &m) {
		event = event.Object(key+".detail", m)
	}
	return event
}
