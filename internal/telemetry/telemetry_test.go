package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestParseExportOption(t *testing.T) {
	t.Parallel()

	for input, expected := range map[string]ExportOption{
		"":       ExportOptionNone,
		"none":   ExportOptionNone,
		"STDOUT": ExportOptionStdout,
		" grpc ": ExportOptionGrpc,
		"otlp":   ExportOptionGrpc,
	} {
		option, err := ParseExportOption(input)
		require.NoError(t, err, input)
		require.Equal(t, expected, option, input)
	}

	_, err := ParseExportOption("prometheus")
	require.Error(t, err)
}

func TestInitWithoutExporters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.NoError(t, Init(ctx, NewDefaultConfig()))
	require.NoError(t, Init(ctx, nil))
	Shutdown(ctx)
}

func TestMeasurerRecordsCountAndDuration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { require.NoError(t, provider.Shutdown(ctx)) }()

	measurer, err := NewMeasurer(provider.Meter("test"), "token_operations")
	require.NoError(t, err)

	attrs := metric.WithAttributes(attribute.String("operation", "mint"))
	measurer.Measure(ctx, attrs)
	measurer.Restart()
	measurer.Measure(ctx, attrs)

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &collected))
	require.Len(t, collected.ScopeMetrics, 1)

	names := make(map[string]metricdata.Aggregation)
	for _, m := range collected.ScopeMetrics[0].Metrics {
		names[m.Name] = m.Data
	}
	require.Contains(t, names, "token_operations_total")
	require.Contains(t, names, "token_operations_duration")

	sum, ok := names["token_operations_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(2), sum.DataPoints[0].Value)
}
