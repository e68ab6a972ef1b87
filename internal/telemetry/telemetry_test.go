package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupNone(t *testing.T) {
	for _, name := range []string{"", ExporterNone} {
		shutdown, err := Setup(Config{Exporter: name})
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestSetupUnknown(t *testing.T) {
	_, err := Setup(Config{Exporter: "jaeger"})
	assert.True(t, errors.Is(err, ErrUnknownExporter))
}

func TestSetupStdoutRequiresWriter(t *testing.T) {
	_, err := Setup(Config{Exporter: ExporterStdout})
	assert.Error(t, err)
}

func TestSetupStdoutExportsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(Config{Exporter: ExporterStdout, Writer: &buf, ServiceVersion: "test"})
	require.NoError(t, err)

	ctx := context.Background()
	counter, err := otel.Meter("telemetry_test").Int64Counter("test_total")
	require.NoError(t, err)
	counter.Add(ctx, 3)
	_, span := otel.Tracer("telemetry_test").Start(ctx, "test.span")
	span.End()

	require.NoError(t, shutdown(ctx))
	out := buf.String()
	assert.Contains(t, out, "test_total")
	assert.Contains(t, out, "test.span")
	assert.Contains(t, out, "elixir-analyzer")
}
