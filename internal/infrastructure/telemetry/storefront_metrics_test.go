package telemetry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*StorefrontMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	sm, err := NewStorefrontMetrics(StorefrontMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)
	t.Cleanup(sm.Stop)
	return sm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(m metricdata.Metrics) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return -1
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewStorefrontMetrics_RequiresMeter(t *testing.T) {
	_, err := NewStorefrontMetrics(StorefrontMetricsConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meter is required")
}

func TestStorefrontMetrics_CatalogLoads(t *testing.T) {
	sm, reader := newTestMetrics(t)
	ctx := context.Background()

	sm.RecordCatalogLoad(ctx, 12, 2)
	sm.RecordCatalogLoad(ctx, 0, 0)
	sm.RecordCatalogLoadFailure(ctx, "TRANSPORT_ERROR")

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(metrics["catalog_load_total"]))
	assert.Equal(t, int64(2), sumOf(metrics["catalog_normalization_warnings_total"]))
	assert.Equal(t, int64(1), sumOf(metrics["catalog_load_failures_total"]))

	hist, ok := metrics["catalog_load_products"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, 12.0, hist.DataPoints[0].Sum)
}

func TestStorefrontMetrics_CartActivity(t *testing.T) {
	sm, reader := newTestMetrics(t)
	ctx := context.Background()

	sm.RecordCartMutation(ctx, "add")
	sm.RecordCartMutation(ctx, "add")
	sm.RecordCartMutation(ctx, "clear")
	sm.RecordCheckout(ctx, 5, decimal.RequireFromString("28.5"))

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(metrics["cart_mutation_total"]))
	assert.Equal(t, int64(1), sumOf(metrics["cart_checkout_total"]))

	sum := metrics["cart_mutation_total"].Data.(metricdata.Sum[int64])
	assert.Len(t, sum.DataPoints, 2)

	value := metrics["cart_checkout_value"].Data.(metricdata.Histogram[float64])
	assert.Equal(t, 28.5, value.DataPoints[0].Sum)
}

type countingSessions struct{ n atomic.Int64 }

func (c *countingSessions) Len() int { return int(c.n.Load()) }

func TestStorefrontMetrics_PeriodicCollection(t *testing.T) {
	sm, reader := newTestMetrics(t)
	sessions := &countingSessions{}
	sessions.n.Store(4)

	sm.StartPeriodicCollection(context.Background(), sessions, 10*time.Millisecond)
	// a second call is ignored
	sm.StartPeriodicCollection(context.Background(), sessions, time.Hour)

	require.Eventually(t, func() bool {
		g, ok := collect(t, reader)["storefront_active_sessions"].Data.(metricdata.Gauge[int64])
		return ok && len(g.DataPoints) == 1 && g.DataPoints[0].Value == 4
	}, time.Second, 10*time.Millisecond)

	sm.Stop()
	sm.Stop()
}
