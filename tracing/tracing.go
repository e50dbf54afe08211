// Package tracing configures OpenTelemetry tracing for the sigv4auth server.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultServiceName is reported when Config.ServiceName is empty.
const DefaultServiceName = "sigv4auth"

// ErrDisabled is returned by Init when tracing is not enabled.
var ErrDisabled = errors.New("tracing not enabled")

// Config controls span export.
type Config struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"min=0,max=1"`
	ServiceName string  `mapstructure:"service_name"`
}

// NewExporter creates an OTLP gRPC exporter for cfg.Endpoint. The connection
// is established lazily.
func NewExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("exporter endpoint is required")
	}

	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{Enabled: true}),
	}
	if cfg.Insecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}

	exp, err := otlptracegrpc.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	return exp, nil
}

// NewProvider returns a tracer provider that samples by cfg.SampleRatio and
// batches finished spans to exp.
func NewProvider(cfg Config, exp sdktrace.SpanExporter, version string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource(cfg, version)),
	)
}

// Init builds the exporter and provider for cfg and installs them as the
// global tracer provider together with W3C trace context propagation.
// Callers shut the returned provider down to flush pending spans.
func Init(ctx context.Context, cfg Config, version string) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	exp, err := NewExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := NewProvider(cfg, exp, version)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

func newResource(cfg Config, version string) *resource.Resource {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = DefaultServiceName
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", name),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return resource.Default()
	}
	return r
}
