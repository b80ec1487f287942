package xlog

import (
	antsv2 "github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ antsv2.Logger = (*AntsXLogger)(nil)

// AntsXLogger receives the ants pool messages, mostly the recovered
// task panics, so they are printed at error level.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	return &AntsXLogger{
		logger: newComponentXLogger(logger, "Ants", nil),
	}
}

// newComponentXLogger derives a named logger whose output drops the
// caller. A nil lvlEnabler keeps following the parent level.
func newComponentXLogger(parent XLogger, name string, lvlEnabler zapcore.LevelEnabler) XLogger {
	zl := parent.zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return wrapComponentCore(core, lvlEnabler)
		}))
	if pl, ok := parent.(*xLogger); ok {
		return pl.child(zl)
	}
	l := &xLogger{
		dynamicLevelEnabler: zap.NewAtomicLevel(),
	}
	l.logger.Store(zl)
	return l
}
