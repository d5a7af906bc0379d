// Package apm sets up OpenTelemetry tracing.
package apm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "none"
)

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyProvider struct{}

func (emptyProvider) Stop() error { return nil }

// NewEmptyTraceProvider returns a provider that exports nothing.
func NewEmptyTraceProvider() TraceProvider {
	return emptyProvider{}
}

func newExporter(ctx context.Context, provider Provider, endpoint string) (sdktrace.SpanExporter, error) {
	switch provider {
	case ZipkinProvider:
		return zipkin.New(endpoint)
	case OTLPGRPCProvider:
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
	case OTLPHTTPProvider:
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	case ConsoleProvider:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", provider)
	}
}

// NewTraceProvider installs the global tracer provider described by cfg.
// A disabled config or the "none" exporter yields an empty provider.
func NewTraceProvider(ctx context.Context, cfg config.TelemetryConfig, log logger.LoggerInterface) (TraceProvider, error) {
	provider := Provider(strings.ToLower(cfg.TraceExporter))
	if !cfg.Enabled || provider == EmptyProvider || provider == "" {
		return NewEmptyTraceProvider(), nil
	}

	exp, err := newExporter(ctx, provider, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			attribute.String("otel.provider", string(provider)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "tracing initialized", "provider", string(provider), "endpoint", cfg.OTLPEndpoint)

	return &traceProvider{tp}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
