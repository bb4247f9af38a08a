package telemetry_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestInitMeterProvider_SetsGlobalProvider(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	mp, err := telemetry.InitMeterProvider(context.Background(), "library-service-test", "0.0.0", testLogger())
	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.Same(t, mp, otel.GetMeterProvider())
}

// Counters created via otel.Meter must record into whatever provider is
// installed globally. A manual reader stands in for the OTLP exporter here.
func TestCounters_RecordThroughGlobalProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	ctx := context.Background()
	m, err := metrics.New(ctx, "library-service-test", testLogger())
	require.NoError(t, err)

	m.RecordUserRegistration(ctx)
	m.RecordLoanCreated(ctx)
	m.RecordLoanCreated(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, inst := range scope.Metrics {
			sum, ok := inst.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[inst.Name] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(1), totals["library.users.registered"])
	assert.Equal(t, int64(2), totals["library.loans.created"])
}
