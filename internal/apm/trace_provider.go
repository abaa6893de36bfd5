// Package apm provides OpenTelemetry tracing setup and thin tracer wrappers.
package apm

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
)

// Provider identifies a tracing backend.
type Provider string

const (
	ZipkinProvider  Provider = "zipkin"
	OTLPProvider    Provider = "otlp"
	ConsoleProvider Provider = "console"
	EmptyProvider   Provider = "empty"
)

// TraceProvider owns the installed tracer provider.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// TracerOptions collects exporter selection.
type TracerOptions struct {
	exporter     sdktrace.SpanExporter
	providerName string
	useEmpty     bool
}

// TracerOption configures the trace provider.
type TracerOption func(*TracerOptions)

// WithProvider selects a tracing backend by name. Endpoints come from the
// conventional OTEL_EXPORTER_OTLP_ENDPOINT variable.
func WithProvider(provider Provider, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider:
		return useZipkin()
	case OTLPProvider:
		return useOTLP()
	case ConsoleProvider:
		return useConsole()
	default:
		log.Warn(context.Background(), "unknown trace provider, tracing disabled", "provider", provider)
		return useEmpty()
	}
}

func useEmpty() TracerOption {
	return func(o *TracerOptions) {
		o.useEmpty = true
		o.providerName = string(EmptyProvider)
	}
}

func useConsole() TracerOption {
	return func(o *TracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.providerName = string(ConsoleProvider)
	}
}

func useZipkin() TracerOption {
	return func(o *TracerOptions) {
		url := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

		exp, err := zipkin.New(url)
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.providerName = string(ZipkinProvider)
	}
}

func useOTLP() TracerOption {
	return func(o *TracerOptions) {
		url := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

		exp, err := otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(url),
		)
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.providerName = string(OTLPProvider)
	}
}

// NewTraceProvider installs a global tracer provider with the selected
// exporter. With no options it is a no-op provider.
func NewTraceProvider(log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	serviceName := os.Getenv("OTEL_SERVICE_NAME")

	opts := &TracerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty || opts.exporter == nil {
		return emptyTraceProvider{}
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("otel.provider", opts.providerName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return o.tp.Shutdown(ctx)
}
