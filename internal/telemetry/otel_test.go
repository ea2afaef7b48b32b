package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", " collector:4318 ")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, broken ,=v")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "collector:4318", cfg.Endpoint)
	assert.Equal(t, map[string]string{"x-api-key": "abc"}, cfg.Headers)
	assert.True(t, cfg.Insecure)
	assert.InDelta(t, 0.5, cfg.SampleRatio, 1e-9)
}

func TestParseRatio(t *testing.T) {
	assert.InDelta(t, 0.1, parseRatio(""), 1e-9)
	assert.InDelta(t, 0.1, parseRatio("lots"), 1e-9)
	assert.InDelta(t, 0.0, parseRatio("-2"), 1e-9)
	assert.InDelta(t, 1.0, parseRatio("7"), 1e-9)
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), nil, Config{})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupStdoutExporter(t *testing.T) {
	shutdown := Setup(context.Background(), nil, Config{Enabled: true, SampleRatio: 1})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
