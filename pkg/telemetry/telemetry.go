// Package telemetry sets up OpenTelemetry tracing for medctl. Each API
// request becomes a client span, and the trace context is propagated to the
// server through W3C traceparent headers.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"

	DefaultServiceName = "medctl"
)

// Options configures the TracerProvider.
type Options struct {
	// Enabled controls whether tracing is active. When false a no-op
	// TracerProvider is installed and the shutdown function does nothing.
	Enabled bool

	ServiceName    string
	ServiceVersion string

	// Exporter selects the span exporter: "otlp" (default), "stdout" or "none".
	Exporter string

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	// When empty the exporter falls back to OTEL_EXPORTER_OTLP_ENDPOINT.
	Endpoint string
	Insecure bool

	// Writer receives spans from the stdout exporter. Defaults to os.Stderr.
	Writer io.Writer

	// SamplingRate is the probability of sampling a trace (0.0-1.0).
	SamplingRate float64

	Logger *zap.SugaredLogger
}

// ShutdownFunc flushes pending spans and stops the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

// Init installs the global TracerProvider and propagator and returns the
// provider together with its shutdown function.
func Init(ctx context.Context, opts Options) (trace.TracerProvider, ShutdownFunc, error) {
	if !opts.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}

	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.SamplingRate <= 0 || opts.SamplingRate > 1.0 {
		if opts.SamplingRate != 0 {
			log.Warnw("OTel sampling rate out of range, using 1.0", "provided", opts.SamplingRate)
		}
		opts.SamplingRate = 1.0
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTel resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch opts.Exporter {
	case ExporterOTLP, "":
		var grpcOpts []otlptracegrpc.Option
		if opts.Endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpoint(opts.Endpoint))
		}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("creating OTLP gRPC exporter: %w", err)
		}
		log.Debugw("OTel OTLP exporter initialized", "endpoint", opts.Endpoint, "insecure", opts.Insecure)

	case ExporterStdout:
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("creating stdout exporter: %w", err)
		}

	case ExporterNone:
		log.Debugw("OTel tracing enabled with no exporter")

	default:
		return nil, nil, fmt.Errorf("unknown trace exporter %q: supported values are otlp, stdout, none", opts.Exporter)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SamplingRate))),
	}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(Propagator())
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Warnw("OpenTelemetry internal error", "error", err)
	}))

	shutdown := func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(shutdownCtx)
	}
	return tp, shutdown, nil
}

// Propagator returns the W3C trace context and baggage propagator.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}
