package xlog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConsoleCore(t *testing.T) {
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	var cc XLogCore = newConsoleCore(
		&lvlEnabler,
		JSON,
		_writerMax,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.Nil(t, cc)

	cc = newConsoleCore(
		&lvlEnabler,
		JSON,
		StdOut,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())
	require.NotNil(t, cc.(*consoleCore).core.lvlEnabler)
	require.NotNil(t, cc.(*consoleCore).core.core)

	require.True(t, cc.Enabled(zapcore.DebugLevel))
	require.True(t, cc.Enabled(zapcore.InfoLevel))
	require.True(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.DebugLevel))
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.DebugLevel)

	core := cc.With([]zap.Field{zap.String("key", "value")})
	require.NotNil(t, core)

	ent := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel}, nil)
	require.NotNil(t, ent)
	err := cc.Write(ent.Entry, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	_ = cc.Sync()

	cc, err = WrapCore(cc, componentCoreEncoderCfg)
	require.NoError(t, err)
	require.NotNil(t, cc)
	err = cc.Write(zapcore.Entry{Level: zapcore.DebugLevel, LoggerName: "commonCore"}, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	_ = cc.Sync()

	_, err = WrapCore(nil, componentCoreEncoderCfg)
	require.Error(t, err)
	_, err = WrapCore(cc, nil)
	require.Error(t, err)
}

func TestTeeCore_ComponentWrap(t *testing.T) {
	w := &testMemOutWriter{data: make([]byte, 0, 1024)}
	setOutWriterByType(testMemAsOut, zapcore.AddSync(w))

	lvlEnabler := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	tee := XLogTeeCore(
		newConsoleCore(&lvlEnabler, JSON, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
		newConsoleCore(&lvlEnabler, JSON, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
	)
	require.Equal(t, zapcore.InfoLevel, zapcore.LevelOf(tee))
	require.False(t, tee.Enabled(zapcore.DebugLevel))

	warnOnly := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	wrapped := wrapComponentCore(tee, warnOnly)
	l := zap.New(wrapped).Named("Comp")
	l.Info("dropped")
	l.Warn("kept")
	lines := w.Lines(t)
	require.Len(t, lines, 2)
	for _, line := range lines {
		require.Equal(t, "kept", line["msg"])
		require.Equal(t, "Comp", line["component"])
		require.NotContains(t, line, "callAt")
	}
	require.NoError(t, tee.Sync())

	require.Panics(t, func() {
		wrapComponentCore(zapcore.NewNopCore(), nil)
	})
}
