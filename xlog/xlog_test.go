package xlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data []byte
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testMemOutWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return string(w.data)
}

func (w *testMemOutWriter) Lines(t *testing.T) []map[string]any {
	w.lock.Lock()
	defer w.lock.Unlock()
	lines := make([]map[string]any, 0, 8)
	scanner := bufio.NewScanner(bytes.NewReader(w.data))
	for scanner.Scan() {
		line := map[string]any{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	return lines
}

func (w *testMemOutWriter) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = make([]byte, 0, 4096)
}

func newTestMemXLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *testMemOutWriter) {
	t.Helper()
	w := &testMemOutWriter{data: make([]byte, 0, 4096)}
	setOutWriterByType(testMemAsOut, zapcore.AddSync(w))
	opts = append([]XLoggerOption{
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerConsoleCore(),
		WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	}, opts...)
	return NewXLogger(opts...), w
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())

	type testcase struct {
		text     string
		expected zapcore.Level
	}
	testcases := []testcase{
		{"", zapcore.DebugLevel},
		{"  ", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{" Warn ", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"verbose", zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, getLogLevelOrDefault(tc.text), tc.text)
	}
}

type testBanner struct{}

func (b testBanner) JSON() string {
	return "{\"app\":\"xtree\"}"
}

func (b testBanner) PlainText() string {
	return `
 __  __  _____  ____   ____  ____
 \ \/ / |_   _||  _ \ | ___|| ___|
  >  <    | |  | |_) ||  _| |  _|
 /_/\_\   |_|  |_| \_\|____||____|
`
}

func TestLoggerPrintBanner(t *testing.T) {
	printBanner = sync.Once{}
	logger, w := newTestMemXLogger(t)
	logger.Banner(testBanner{})
	require.Equal(t, "{\"banner\":\"{\\\"app\\\":\\\"xtree\\\"}\"}\n", w.String())

	// Printed once.
	w.Reset()
	logger.Banner(testBanner{})
	require.Empty(t, w.String())

	printBanner = sync.Once{}
	logger, w = newTestMemXLogger(t, WithXLoggerEncoder(PlainText))
	logger.Banner(testBanner{})
	require.Equal(t, testBanner{}.PlainText()+"\n", w.String())
}

func TestXLogger_JSONFieldsAndLevel(t *testing.T) {
	logger, w := newTestMemXLogger(t)
	require.Equal(t, "debug", logger.Level())

	logger.Debug("debug msg", zap.Int("n", 1))
	logger.Info("info msg", zap.String("tree", "avl"))
	logger.Warn("warn msg")
	logger.Error(errors.New("boom"), "error msg")
	logger.Error(nil, "error without err")
	logger.Logf(zapcore.InfoLevel, "formatted %d", 42)

	lines := w.Lines(t)
	require.Len(t, lines, 6)
	require.Equal(t, "debug msg", lines[0]["msg"])
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, float64(1), lines[0]["n"])
	require.Contains(t, lines[0]["callAt"], "xlog_test.go")
	require.Equal(t, "avl", lines[1]["tree"])
	require.Equal(t, "WARN", lines[2]["lvl"])
	require.Equal(t, "boom", lines[3]["error"])
	require.NotContains(t, lines[4], "error")
	require.Equal(t, "formatted 42", lines[5]["msg"])

	w.Reset()
	logger.IncreaseLogLevel(zapcore.ErrorLevel)
	require.Equal(t, "error", logger.Level())
	logger.Info("dropped")
	logger.Warn("dropped")
	require.Empty(t, w.String())
	logger.Error(errors.New("kept"), "kept")
	require.Len(t, w.Lines(t), 1)
	require.NoError(t, logger.Sync())
}

func TestXLogger_ErrorStack(t *testing.T) {
	logger, w := newTestMemXLogger(t)

	err := infra.WrapErrorStackWithMessage(errors.New("base"), "[test] wrapped")
	logger.ErrorStack(err, "with frames", zap.String("op", "insert"))
	logger.ErrorStack(errors.New("plain"), "without frames")

	lines := w.Lines(t)
	require.Len(t, lines, 2)
	require.Equal(t, "[test] wrapped: base", lines[0]["error"])
	frames, ok := lines[0]["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	require.Contains(t, frames[0], "xlog_test.go")
	require.Equal(t, "insert", lines[0]["op"])

	require.Equal(t, "plain", lines[1]["error"])
	require.NotContains(t, lines[1], "errorStack")
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, w := newTestMemXLogger(t,
		WithXLoggerContextFieldExtract("traceID"),
		WithXLoggerContextFieldExtract("workload", "wl"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)

	ctx := context.WithValue(context.Background(), "traceID", "abc") //nolint:staticcheck
	ctx = context.WithValue(ctx, "workload", "mixed")                 //nolint:staticcheck
	ctx = context.WithValue(ctx, "secret", "hidden")                  //nolint:staticcheck
	logger.InfoContext(ctx, "ctx info")
	logger.DebugContext(context.Background(), "ctx debug")
	logger.WarnContext(ctx, "ctx warn")
	logger.ErrorContext(ctx, errors.New("ctx boom"), "ctx error")

	lines := w.Lines(t)
	require.Len(t, lines, 4)
	require.Equal(t, "abc", lines[0]["traceID"])
	require.Equal(t, "mixed", lines[0]["wl"])
	require.NotContains(t, lines[0], "secret")
	require.Equal(t, "nil", lines[1]["traceID"])
	require.Equal(t, "nil", lines[1]["wl"])
	require.Equal(t, "WARN", lines[2]["lvl"])
	require.Equal(t, "ctx boom", lines[3]["error"])
	require.Equal(t, "abc", lines[3]["traceID"])
}

func TestXLogger_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	logger := NewXLogger(nil, WithXLoggerLevelText("warn"))
	require.Equal(t, "warn", logger.Level())
}
