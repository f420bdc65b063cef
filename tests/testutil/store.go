package testutil

import (
	"path/filepath"
	"testing"

	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// EngineModels lists every table the order and table engine writes or reads
func EngineModels() []any {
	return []any{
		&models.MenuItemModel{},
		&models.MenuItemOptionModel{},
		&models.CouponModel{},
		&models.TableModel{},
		&models.TableSessionModel{},
		&models.TableGuestModel{},
		&models.TableBillSplitModel{},
		&models.SplitAllocationModel{},
		&models.OrderItemAuditLogModel{},
		&models.CashRegisterModel{},
		&models.ShiftModel{},
		&models.FinancialCategoryModel{},
		&models.FinancialTransactionModel{},
		&models.RecipeIngredientModel{},
		&models.BranchStockModel{},
		&models.StockMovementModel{},
		&models.CustomerModel{},
		&models.LoyaltyProgramModel{},
		&models.LoyaltyTransactionModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.OrderItemOptionModel{},
	}
}

// NewSQLiteDB opens a file-backed SQLite database in the test's temp dir and
// migrates the engine tables into it. A file is used instead of :memory: so
// every pooled connection sees the same data.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "engine.db") + "?_busy_timeout=5000&_foreign_keys=off"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open SQLite database")

	require.NoError(t, db.AutoMigrate(EngineModels()...), "Failed to migrate engine tables")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
