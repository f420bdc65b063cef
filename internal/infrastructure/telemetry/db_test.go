package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tableRow struct {
	ID     uuid.UUID `gorm:"type:text;primaryKey"`
	Number int
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestInstrumentDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	require.NoError(t, telemetry.InstrumentDB(db, telemetry.DBConfig{
		TraceEnabled:   true,
		DBName:         "sqlite",
		TracerProvider: tp,
	}, meter, zap.NewNop()))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).AutoMigrate(&tableRow{}))
	require.NoError(t, db.WithContext(ctx).Create(&tableRow{ID: uuid.New(), Number: 7}).Error)
	var rows []tableRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.Len(t, rows, 1)

	assert.NotEmpty(t, recorder.Ended())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	durations, ok := findMetric(rm, "resto_db_query_duration")
	require.True(t, ok)
	hist, ok := durations.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.GreaterOrEqual(t, count, uint64(2))

	_, ok = findMetric(rm, "resto_db_pool_connections")
	assert.True(t, ok)
}

func TestInstrumentDB_NoMeter(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	assert.NoError(t, telemetry.InstrumentDB(db, telemetry.DBConfig{}, nil, nil))
}
