// Package integration runs the engine against one PostgreSQL container shared
// by every test in the package. The schema comes from the SQL files under
// migrations/ and each test starts from empty tables.
package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// engineServer is started on first use and terminated by TestMain
var engineServer struct {
	once      sync.Once
	container *tcpostgres.PostgresContainer
	dsn       string
	tables    []string
	err       error
}

// EngineDB is a connection to the shared, migrated engine database
type EngineDB struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// OpenEngineDB connects to the shared database after truncating every engine
// table, so rows written by earlier tests are gone.
func OpenEngineDB(t *testing.T) *EngineDB {
	t.Helper()

	engineServer.once.Do(func() {
		engineServer.container, engineServer.dsn, engineServer.tables, engineServer.err = startEngineServer(context.Background())
	})
	require.NoError(t, engineServer.err, "Failed to start the engine database")

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(engineServer.dsn), &gorm.Config{
		Logger: logger.NewGormLogger(zaptest.NewLogger(t), level),
	})
	require.NoError(t, err, "Failed to connect to the engine database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// room for the concurrent writers in the race tests
	sqlDB.SetMaxOpenConns(10)

	edb := &EngineDB{DB: db, sqlDB: sqlDB}
	t.Cleanup(func() { _ = sqlDB.Close() })
	edb.Truncate(t)
	return edb
}

// Truncate empties every engine table in one statement
func (e *EngineDB) Truncate(t *testing.T) {
	t.Helper()
	if len(engineServer.tables) == 0 {
		return
	}
	quoted := make([]string, len(engineServer.tables))
	for i, name := range engineServer.tables {
		quoted[i] = pq.QuoteIdentifier(name)
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	require.NoError(t, e.DB.Exec(stmt).Error, "Failed to truncate engine tables")
}

// startEngineServer boots PostgreSQL, applies the migrations and lists the
// tables they created.
func startEngineServer(ctx context.Context) (*tcpostgres.PostgresContainer, string, []string, error) {
	dir, err := migrationsDir()
	if err != nil {
		return nil, "", nil, err
	}
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("resto_engine_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second)),
	)
	if err != nil {
		return nil, "", nil, fmt.Errorf("start postgres container: %w", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", nil, fmt.Errorf("connection string: %w", err)
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", nil, err
	}
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, dir, nil)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", nil, fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil {
		_ = container.Terminate(ctx)
		return nil, "", nil, fmt.Errorf("apply migrations: %w", err)
	}

	tables, err := engineTables(ctx, sqlDB)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", nil, err
	}
	return container, dsn, tables, nil
}

func engineTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// migrationsDir walks up from this file to the module root
func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("cannot locate test sources")
	}
	for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations"), nil
		}
	}
	return "", errors.New("module root not found above " + file)
}

// terminateEngineServer stops the shared container if a test started it
func terminateEngineServer() {
	if engineServer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := engineServer.container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "terminate engine database: %v\n", err)
	}
}
