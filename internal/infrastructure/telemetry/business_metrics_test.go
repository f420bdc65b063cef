package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMetrics(t *testing.T, provider telemetry.FloorMetricsProvider) *telemetry.BusinessMetrics {
	t.Helper()
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         noop.NewMeterProvider().Meter("test"),
		Logger:        zap.NewNop(),
		FloorProvider: provider,
	})
	require.NoError(t, err)
	return bm
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_Recorders(t *testing.T) {
	bm := newTestMetrics(t, nil)
	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	bm.RecordOrderCreated(ctx, tenantID, "dine_in")
	bm.RecordPayment(ctx, tenantID, "cash", "partial", decimal.RequireFromString("6.00"))
	bm.RecordPayment(ctx, tenantID, "pix", "paid", decimal.RequireFromString("4.00"))
	bm.RecordCancellation(ctx, tenantID, decimal.RequireFromString("10.00"))
	bm.RecordCancellation(ctx, tenantID, decimal.Zero)
	bm.RecordShiftDiscrepancy(ctx, tenantID, decimal.RequireFromString("5.00"))
	bm.RecordShiftDiscrepancy(ctx, tenantID, decimal.RequireFromString("-0.50"))
}

func TestBusinessMetrics_PaymentAmountInCents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	bm.RecordPayment(ctx, tenantID, "cash", "partial", decimal.RequireFromString("6.00"))
	bm.RecordPayment(ctx, tenantID, "cash", "paid", decimal.RequireFromString("4.00"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	m, ok := findMetric(rm, "resto_payment_amount_total")
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1000), sum.DataPoints[0].Value)

	m, ok = findMetric(rm, "resto_payment_total")
	require.True(t, ok)
	assert.Len(t, m.Data.(metricdata.Sum[int64]).DataPoints, 2)
}

type mockTenantProvider struct {
	tenantIDs []uuid.UUID
	err       error
}

func (m *mockTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.tenantIDs, m.err
}

type mockFloorProvider struct {
	calls atomic.Int32
	err   error
}

func (m *mockFloorProvider) CountActiveSessions(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	m.calls.Add(1)
	return 3, m.err
}

func (m *mockFloorProvider) CountOpenShifts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return 1, m.err
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	provider := &mockFloorProvider{}
	bm := newTestMetrics(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, &mockTenantProvider{tenantIDs: []uuid.UUID{uuid.New()}}, 50*time.Millisecond)

	assert.Eventually(t, func() bool { return provider.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_ProviderErrors(t *testing.T) {
	provider := &mockFloorProvider{err: errors.New("db down")}
	bm := newTestMetrics(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, &mockTenantProvider{tenantIDs: []uuid.UUID{uuid.New()}}, 50*time.Millisecond)
	assert.Eventually(t, func() bool { return provider.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	bm := newTestMetrics(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, &mockTenantProvider{tenantIDs: []uuid.UUID{uuid.New()}}, 50*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	bm := newTestMetrics(t, nil)

	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	bm := newTestMetrics(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{}
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Hour)
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Minute)

	bm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{Op: "Op", Err: "bad"}
	assert.Equal(t, "Op: bad", err.Error())
}
