package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_InfoContextAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "coupon locked", "user_id", "user-1", "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "user-1", fields["user_id"])
	require.Equal(t, "boom", fields["error"])
	require.Equal(t, traceID.String(), fields["trace_id"])
	require.Equal(t, spanID.String(), fields["span_id"])
}

func TestLogger_OddArgsAndNilReceiver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "scoring")

	logger.Warn("dangling", "day")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "scoring", fields["component"])
	require.Contains(t, fields, "day")

	var nilLogger *Logger
	require.NotPanics(t, func() { nilLogger.Info("ignored") })
}

func TestLogger_MirrorReceivesEnabledEntries(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.Debug("skipped")
	logger.InfoContext(context.Background(), "settled", "day", "2026-02-11")
	logger.Error("failed")

	require.Equal(t, []string{"info:settled", "error:failed"}, got)
}
