package telemetry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/reload/internal/adapters/telemetry"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/reload/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_Attributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer(telemetry.NewProvider(recorder), "test")

	_, span := tracer.Start(t.Context(), "load api",
		ports.WithAttribute("unit", "api"),
		ports.WithAttribute("attempt", 2),
	)
	span.SetAttribute("status", "Completed")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "load api", ended[0].Name())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("unit", "api"),
		attribute.Int("attempt", 2),
		attribute.String("status", "Completed"),
	}, ended[0].Attributes())
}

func TestOTelTracer_RecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer(telemetry.NewProvider(recorder), "test")

	_, span := tracer.Start(t.Context(), "load m")
	span.RecordError(errors.New("boom"))
	span.RecordError(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer(telemetry.NewProvider(recorder), "test")

	ctx, span := tracer.Start(t.Context(), "run")
	tracer.EmitPlan(ctx, []string{"unload a", "load a"})
	n, err := span.Write([]byte("output"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "plan_emitted", events[0].Name)
	assert.Equal(t, []attribute.KeyValue{attribute.StringSlice("tasks", []string{"unload a", "load a"})}, events[0].Attributes)
	assert.Equal(t, "log", events[1].Name)
}

func TestLogBridge_LogsEndedSpans(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug("span load m", gomock.Any()).Do(func(_ string, args ...any) {
		assert.Contains(t, args, "unit")
		assert.Contains(t, args, "m")
		assert.Contains(t, args, "error")
		assert.Contains(t, args, "boom")
	})

	tracer := telemetry.NewLoggingTracer(log)
	_, span := tracer.Start(t.Context(), "load m", ports.WithAttribute("unit", "m"))
	span.RecordError(errors.New("boom"))
	span.End()
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx, span := tracer.Start(t.Context(), "noop")
	tracer.EmitPlan(ctx, nil)
	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	n, err := span.Write([]byte("test log"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	span.End()
}
