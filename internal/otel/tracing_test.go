package otel

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"msg":"tracing_configured"`)
	assert.Contains(t, buf.String(), `"tracing_enabled":false`)
	assert.Contains(t, buf.String(), `"service":"docpress"`)
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing_init_failed")
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "")
	t.Setenv("OTEL_SERVICE_NAME", "docpress-staging")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_TRACES_SAMPLER", "")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "")

	s := settingsFromEnv()
	assert.False(t, s.disabled)
	assert.Equal(t, "docpress-staging", s.serviceName)
	assert.Equal(t, "grpc", s.protocol)
	assert.Equal(t, "http://collector:4317", s.endpoint)
	assert.Equal(t, "parentbased_traceidratio", s.sampler)
	assert.Equal(t, "1.0", s.samplerArg)

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "http://traces:4318")
	assert.Equal(t, "http://traces:4318", settingsFromEnv().endpoint)
}

func TestNewSampler(t *testing.T) {
	tests := map[string]string{
		"always_on":                "AlwaysOnSampler",
		"always_off":               "AlwaysOffSampler",
		"traceidratio":             "TraceIDRatioBased{0.5}",
		"parentbased_always_off":   "ParentBased{root:AlwaysOffSampler",
		"parentbased_traceidratio": "ParentBased{root:TraceIDRatioBased{0.5}",
		"":                         "ParentBased{root:AlwaysOnSampler",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			s := settings{sampler: name, samplerArg: "0.5"}
			assert.Contains(t, s.newSampler().Description(), want)
		})
	}

	t.Run("bad ratio samples everything", func(t *testing.T) {
		s := settings{sampler: "traceidratio", samplerArg: "half"}
		assert.Equal(t, "AlwaysOnSampler", s.newSampler().Description())
	})
}
