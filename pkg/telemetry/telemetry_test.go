package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestWithSpanRecordsStatus(t *testing.T) {
	recorder := recordSpans(t)
	ctx := context.Background()

	require.NoError(t, WithSpan(ctx, "ok", func(ctx context.Context) error {
		SetAttributes(ctx, attribute.Int("quality.score", 81))
		AddEvent(ctx, "checkpoint")
		return nil
	}, attribute.String("format", "cursor")))

	boom := errors.New("boom")
	err := WithSpan(ctx, "failing", func(context.Context) error { return boom })
	assert.Equal(t, boom, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "ok", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("format", "cursor"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("quality.score", 81))
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "checkpoint", spans[0].Events()[0].Name)

	assert.Equal(t, "failing", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
}

func TestWithSpanFunc(t *testing.T) {
	recorder := recordSpans(t)

	called := false
	WithSpanFunc(context.Background(), "step", func(context.Context) { called = true })

	assert.True(t, called)
	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, codes.Ok, recorder.Ended()[0].Status().Code)
}

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(Config{SamplerType: "never"}).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(Config{}).Description())
	assert.Contains(t, sampler(Config{SamplerType: "ratio", SamplerRatio: 0.5}).Description(), "TraceIDRatioBased{0.5}")
}
