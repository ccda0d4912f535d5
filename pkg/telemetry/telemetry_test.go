package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestInitDisabled(t *testing.T) {
	restoreGlobals(t)

	ctx := context.Background()
	tp, shutdown, err := Init(ctx, Options{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, tp)
	assert.NoError(t, shutdown(ctx))
}

func TestInitEnabledNoneExporter(t *testing.T) {
	restoreGlobals(t)

	ctx := context.Background()
	tp, shutdown, err := Init(ctx, Options{
		Enabled:      true,
		Exporter:     ExporterNone,
		ServiceName:  "test-service",
		SamplingRate: 1.0,
		Logger:       zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, shutdown(ctx)) }()

	assert.IsType(t, &sdktrace.TracerProvider{}, tp)
	assert.Equal(t, tp, otel.GetTracerProvider())
}

func TestInitStdoutExporterWritesSpans(t *testing.T) {
	restoreGlobals(t)

	ctx := context.Background()
	var buf bytes.Buffer
	tp, shutdown, err := Init(ctx, Options{
		Enabled:  true,
		Exporter: ExporterStdout,
		Writer:   &buf,
	})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "GET")
	span.End()
	require.NoError(t, shutdown(ctx))

	assert.Contains(t, buf.String(), `"Name": "GET"`)
	assert.Contains(t, buf.String(), DefaultServiceName)
}

func TestInitInvalidExporter(t *testing.T) {
	_, _, err := Init(context.Background(), Options{
		Enabled:  true,
		Exporter: "invalid-exporter",
	})
	require.ErrorContains(t, err, "unknown trace exporter")
}

func TestInitSamplingRateOutOfRange(t *testing.T) {
	for _, rate := range []float64{-0.5, 2.0} {
		restoreGlobals(t)

		ctx := context.Background()
		tp, shutdown, err := Init(ctx, Options{
			Enabled:      true,
			Exporter:     ExporterNone,
			SamplingRate: rate,
		})
		require.NoError(t, err)
		_, span := tp.Tracer("test").Start(ctx, "op")
		assert.True(t, span.SpanContext().IsSampled(), "rate %v", rate)
		span.End()
		_ = shutdown(ctx)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	restoreGlobals(t)

	ctx := context.Background()
	_, shutdown, err := Init(ctx, Options{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))
	_ = shutdown(ctx)
}

func TestInitOTLPExporterCreation(t *testing.T) {
	restoreGlobals(t)

	// The gRPC exporter connects lazily, so a non-routable endpoint is fine.
	ctx := context.Background()
	tp, shutdown, err := Init(ctx, Options{
		Enabled:  true,
		Exporter: ExporterOTLP,
		Endpoint: "localhost:0",
		Insecure: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(ctx) })
	require.NotNil(t, tp)
}

func TestPropagatorFields(t *testing.T) {
	assert.Contains(t, Propagator().Fields(), "traceparent")
}
