// Package otel installs the process-wide tracer provider. Spans come from
// otelfiber (requests), otelsql (queries) and otelhttp (storage REST calls).
package otel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// settings is the subset of the standard OTEL_* environment this service reads.
type settings struct {
	disabled    bool
	serviceName string
	protocol    string
	endpoint    string
	sampler     string
	samplerArg  string
}

func settingsFromEnv() settings {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	return settings{
		disabled:    os.Getenv("OTEL_SDK_DISABLED") == "true",
		serviceName: getEnv("OTEL_SERVICE_NAME", "docpress"),
		protocol:    nonEmpty(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"), "grpc"),
		endpoint:    endpoint,
		sampler:     nonEmpty(os.Getenv("OTEL_TRACES_SAMPLER"), "parentbased_traceidratio"),
		samplerArg:  nonEmpty(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), "1.0"),
	}
}

func noopShutdown(context.Context) error { return nil }

// Init installs a tracer provider exporting over OTLP and returns its shutdown
// func. OTEL_SDK_DISABLED=true or an unusable exporter leaves tracing off;
// propagation is installed either way so inbound trace context is kept.
func Init(ctx context.Context, log *slog.Logger) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	s := settingsFromEnv()
	if s.disabled {
		logStartup(log, s, false)
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(s.serviceName)),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(ctx, s.protocol)
	if err != nil {
		log.Error("tracing_init_failed", "error", err.Error())
		return noopShutdown, nil
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(s.newSampler()),
	)
	otel.SetTracerProvider(tp)

	logStartup(log, s, true)
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, protocol string) (*otlptrace.Exporter, error) {
	switch protocol {
	case "grpc":
		return otlptracegrpc.New(ctx)
	case "http/protobuf":
		return otlptracehttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol: %s", protocol)
	}
}

// newSampler maps OTEL_TRACES_SAMPLER names onto SDK samplers. An unparsable
// ratio samples everything.
func (s settings) newSampler() trace.Sampler {
	ratio, err := strconv.ParseFloat(s.samplerArg, 64)
	if err != nil {
		ratio = 1.0
	}
	switch s.sampler {
	case "always_on":
		return trace.AlwaysSample()
	case "always_off":
		return trace.NeverSample()
	case "traceidratio":
		return trace.TraceIDRatioBased(ratio)
	case "parentbased_always_off":
		return trace.ParentBased(trace.NeverSample())
	case "parentbased_traceidratio":
		return trace.ParentBased(trace.TraceIDRatioBased(ratio))
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func logStartup(log *slog.Logger, s settings, enabled bool) {
	attrs := []any{"tracing_enabled", enabled, "service", s.serviceName}
	if enabled {
		attrs = append(attrs,
			"otlp_protocol", s.protocol,
			"otlp_endpoint", s.endpoint,
			"sampler", s.sampler,
			"sampler_arg", s.samplerArg,
		)
	}
	log.Info("tracing_configured", attrs...)
}
