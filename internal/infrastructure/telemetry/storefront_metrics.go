package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SessionCounter reports how many visitor sessions are live
type SessionCounter interface {
	Len() int
}

// StorefrontMetrics records catalog loads, cart activity and checkouts.
// It satisfies the recorder interfaces of the catalog loader and the cart
// service.
type StorefrontMetrics struct {
	logger *zap.Logger

	catalogLoadTotal    *Counter
	catalogLoadFailures *Counter
	catalogProducts     *Histogram
	catalogWarnings     *Counter
	cartMutationTotal   *Counter
	checkoutTotal       *Counter
	checkoutItems       *Histogram
	checkoutValue       *Histogram
	activeSessions      *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// StorefrontMetricsConfig holds configuration for storefront metrics.
type StorefrontMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewStorefrontMetrics creates all instruments on the given meter.
func NewStorefrontMetrics(cfg StorefrontMetricsConfig) (*StorefrontMetrics, error) {
	if cfg.Meter == nil {
		return nil, &MetricsError{Message: "meter is required"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &StorefrontMetrics{logger: logger, stopChan: make(chan struct{})}
	var err error

	if sm.catalogLoadTotal, err = NewCounter(cfg.Meter,
		"catalog_load_total", "Successful catalog loads", "{load}"); err != nil {
		return nil, err
	}
	if sm.catalogLoadFailures, err = NewCounter(cfg.Meter,
		"catalog_load_failures_total", "Failed catalog loads by error code", "{load}"); err != nil {
		return nil, err
	}
	if sm.catalogProducts, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "catalog_load_products",
		Description: "Products returned per catalog load",
		Unit:        "{product}",
		Boundaries:  ItemCountBuckets,
	}); err != nil {
		return nil, err
	}
	if sm.catalogWarnings, err = NewCounter(cfg.Meter,
		"catalog_normalization_warnings_total", "Defaults applied while normalizing products", "{warning}"); err != nil {
		return nil, err
	}
	if sm.cartMutationTotal, err = NewCounter(cfg.Meter,
		"cart_mutation_total", "Cart mutations by operation", "{mutation}"); err != nil {
		return nil, err
	}
	if sm.checkoutTotal, err = NewCounter(cfg.Meter,
		"cart_checkout_total", "Completed checkouts", "{checkout}"); err != nil {
		return nil, err
	}
	if sm.checkoutItems, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "cart_checkout_items",
		Description: "Units per checkout",
		Unit:        "{unit}",
		Boundaries:  ItemCountBuckets,
	}); err != nil {
		return nil, err
	}
	if sm.checkoutValue, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "cart_checkout_value",
		Description: "Checkout totals",
		Unit:        "{currency}",
		Boundaries:  CartValueBuckets,
	}); err != nil {
		return nil, err
	}
	if sm.activeSessions, err = NewGauge(cfg.Meter,
		"storefront_active_sessions", "Live visitor sessions", "{session}"); err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordCatalogLoad records a successful load
func (sm *StorefrontMetrics) RecordCatalogLoad(ctx context.Context, productCount, warningCount int) {
	sm.catalogLoadTotal.Inc(ctx)
	sm.catalogProducts.Record(ctx, float64(productCount))
	if warningCount > 0 {
		sm.catalogWarnings.Add(ctx, int64(warningCount))
	}
}

// RecordCatalogLoadFailure records a failed load by error code
func (sm *StorefrontMetrics) RecordCatalogLoadFailure(ctx context.Context, code string) {
	sm.catalogLoadFailures.Inc(ctx, KeyErrorCode.String(code))
}

// RecordCartMutation counts one cart mutation
func (sm *StorefrontMetrics) RecordCartMutation(ctx context.Context, operation string) {
	sm.cartMutationTotal.Inc(ctx, KeyOperation.String(operation))
}

// RecordCheckout records a completed checkout
func (sm *StorefrontMetrics) RecordCheckout(ctx context.Context, itemCount int, total decimal.Decimal) {
	sm.checkoutTotal.Inc(ctx)
	sm.checkoutItems.Record(ctx, float64(itemCount))
	sm.checkoutValue.Record(ctx, total.InexactFloat64())
}

// RecordActiveSessions records the current number of live sessions
func (sm *StorefrontMetrics) RecordActiveSessions(ctx context.Context, count int) {
	sm.activeSessions.Record(ctx, int64(count))
}

// StartPeriodicCollection samples the session count every interval until
// Stop is called or ctx is done. Only the first call starts a collector.
func (sm *StorefrontMetrics) StartPeriodicCollection(ctx context.Context, sessions SessionCounter, interval time.Duration) {
	if sessions == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	sm.collectOnce.Do(func() {
		go sm.runPeriodicCollection(ctx, sessions, interval)
	})
}

func (sm *StorefrontMetrics) runPeriodicCollection(ctx context.Context, sessions SessionCounter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sm.RecordActiveSessions(ctx, sessions.Len())
	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopChan:
			return
		case <-ticker.C:
			sm.RecordActiveSessions(ctx, sessions.Len())
		}
	}
}

// Stop stops periodic collection
func (sm *StorefrontMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}

// MetricsError represents a metrics setup error
type MetricsError struct {
	Message string
}

func (e *MetricsError) Error() string {
	return "metrics error: " + e.Message
}
