package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks order, payment, cancellation and cash shift activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	orderCreatedTotal   *Counter
	paymentTotal        *Counter
	paymentAmountTotal  *Counter
	cancellationTotal   *Counter
	refundAmountTotal   *Counter
	shiftDiscrepancy    *Histogram
	activeSessionsGauge *Gauge
	openShiftsGauge     *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	floorProvider FloorMetricsProvider
}

// FloorMetricsProvider supplies point-in-time counts for periodic collection.
type FloorMetricsProvider interface {
	CountActiveSessions(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountOpenShifts(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	FloorProvider   FloorMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		floorProvider: cfg.FloorProvider,
	}

	var err error
	if bm.orderCreatedTotal, err = NewCounter(cfg.Meter,
		"resto_order_created_total", "Total number of orders created", "{orders}"); err != nil {
		return nil, err
	}
	if bm.paymentTotal, err = NewCounter(cfg.Meter,
		"resto_payment_total", "Total number of payments recorded", "{payments}"); err != nil {
		return nil, err
	}
	if bm.paymentAmountTotal, err = NewCounter(cfg.Meter,
		"resto_payment_amount_total", "Total amount paid in cents", "{cents}"); err != nil {
		return nil, err
	}
	if bm.cancellationTotal, err = NewCounter(cfg.Meter,
		"resto_order_cancelled_total", "Total number of cancelled orders", "{orders}"); err != nil {
		return nil, err
	}
	if bm.refundAmountTotal, err = NewCounter(cfg.Meter,
		"resto_refund_amount_total", "Total amount refunded in cents", "{cents}"); err != nil {
		return nil, err
	}
	if bm.shiftDiscrepancy, err = NewHistogram(cfg.Meter,
		"resto_shift_discrepancy", "Counted minus expected cash at shift close", "{currency}",
		[]float64{-100, -20, -5, -1, 0, 1, 5, 20, 100}); err != nil {
		return nil, err
	}
	if bm.activeSessionsGauge, err = NewGauge(cfg.Meter,
		"resto_table_sessions_active", "Number of active table sessions", "{sessions}"); err != nil {
		return nil, err
	}
	if bm.openShiftsGauge, err = NewGauge(cfg.Meter,
		"resto_shifts_open", "Number of open cash shifts", "{shifts}"); err != nil {
		return nil, err
	}

	return bm, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// RecordOrderCreated records an order creation.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID, orderType string) {
	bm.orderCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOrderType.String(orderType),
	)
}

// RecordCancellation records a cancelled order and the amount refunded for it.
func (bm *BusinessMetrics) RecordCancellation(ctx context.Context, tenantID uuid.UUID, refund decimal.Decimal) {
	bm.cancellationTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrRefunded.Bool(refund.IsPositive()),
	)
	if refund.IsPositive() {
		bm.refundAmountTotal.Add(ctx, toCents(refund), AttrTenantID.String(tenantID.String()))
	}
}

// RecordPayment records one payment and its amount.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentMethod, paymentStatus string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(paymentMethod),
	}
	bm.paymentTotal.Inc(ctx, append(attrs, AttrPaymentStatus.String(paymentStatus))...)
	bm.paymentAmountTotal.Add(ctx, toCents(amount), attrs...)
}

// RecordShiftDiscrepancy records the counted minus expected cash at close.
func (bm *BusinessMetrics) RecordShiftDiscrepancy(ctx context.Context, tenantID uuid.UUID, discrepancy decimal.Decimal) {
	bm.shiftDiscrepancy.Record(ctx, discrepancy.InexactFloat64(),
		AttrTenantID.String(tenantID.String()),
	)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectFloorMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectFloorMetrics(ctx, tenantProvider)
		}
	}
}

func (bm *BusinessMetrics) collectFloorMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.floorProvider == nil {
		bm.logger.Debug("No floor provider configured, skipping gauge collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		attr := AttrTenantID.String(tenantID.String())
		if n, err := bm.floorProvider.CountActiveSessions(ctx, tenantID); err != nil {
			bm.logger.Warn("Failed to count active sessions",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			bm.activeSessionsGauge.Record(ctx, n, attr)
		}
		if n, err := bm.floorProvider.CountOpenShifts(ctx, tenantID); err != nil {
			bm.logger.Warn("Failed to count open shifts",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			bm.openShiftsGauge.Record(ctx, n, attr)
		}
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

