package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "resto:query_start"

// DBConfig controls database instrumentation
type DBConfig struct {
	// TraceEnabled registers the otelgorm span plugin
	TraceEnabled bool
	// LogFullSQL keeps bound variables in span statements
	LogFullSQL bool
	DBName     string
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

type dbInstruments struct {
	duration *Histogram
}

// InstrumentDB registers query tracing, a per-operation duration histogram
// and connection pool gauges on db.
func InstrumentDB(db *gorm.DB, cfg DBConfig, meter metric.Meter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DBName == "" {
		cfg.DBName = "postgresql"
	}

	if cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if cfg.TracerProvider != nil {
			opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("register otelgorm: %w", err)
		}
	}

	if meter == nil {
		return nil
	}
	duration, err := NewHistogram(meter, "resto_db_query_duration",
		"Duration of database operations", "s", DBDurationBuckets)
	if err != nil {
		return err
	}
	inst := &dbInstruments{duration: duration}
	if err := inst.registerCallbacks(db); err != nil {
		return err
	}
	if err := registerPoolGauges(db, meter); err != nil {
		return err
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.TraceEnabled),
		zap.Bool("full_sql", cfg.LogFullSQL),
	)
	return nil
}

func (i *dbInstruments) registerCallbacks(db *gorm.DB) error {
	start := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	finish := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			began, ok := v.(time.Time)
			if !ok {
				return
			}
			ctx := tx.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}
			i.duration.Record(ctx, time.Since(began).Seconds(), AttrDBOperation.String(op))
		}
	}

	cb := db.Callback()
	steps := []struct {
		op  string
		reg func(before bool, name string, fn func(*gorm.DB)) error
	}{
		{"create", func(before bool, name string, fn func(*gorm.DB)) error {
			if before {
				return cb.Create().Before("gorm:create").Register(name, fn)
			}
			return cb.Create().After("gorm:create").Register(name, fn)
		}},
		{"select", func(before bool, name string, fn func(*gorm.DB)) error {
			if before {
				return cb.Query().Before("gorm:query").Register(name, fn)
			}
			return cb.Query().After("gorm:query").Register(name, fn)
		}},
		{"update", func(before bool, name string, fn func(*gorm.DB)) error {
			if before {
				return cb.Update().Before("gorm:update").Register(name, fn)
			}
			return cb.Update().After("gorm:update").Register(name, fn)
		}},
		{"delete", func(before bool, name string, fn func(*gorm.DB)) error {
			if before {
				return cb.Delete().Before("gorm:delete").Register(name, fn)
			}
			return cb.Delete().After("gorm:delete").Register(name, fn)
		}},
		{"raw", func(before bool, name string, fn func(*gorm.DB)) error {
			if before {
				return cb.Raw().Before("gorm:raw").Register(name, fn)
			}
			return cb.Raw().After("gorm:raw").Register(name, fn)
		}},
		{"row", func(before bool, name string, fn func(*gorm.DB)) error {
			if before {
				return cb.Row().Before("gorm:row").Register(name, fn)
			}
			return cb.Row().After("gorm:row").Register(name, fn)
		}},
	}
	for _, s := range steps {
		if err := s.reg(true, "resto:metrics_before_"+s.op, start); err != nil {
			return fmt.Errorf("register %s metrics callback: %w", s.op, err)
		}
		if err := s.reg(false, "resto:metrics_after_"+s.op, finish(s.op)); err != nil {
			return fmt.Errorf("register %s metrics callback: %w", s.op, err)
		}
	}
	return nil
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	conns, err := meter.Int64ObservableGauge("resto_db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("resto_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(s.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, conns, waits)
	return err
}
