package infra

import (
	"fmt"

	"backoffice/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date (AutoMigrate followed by idempotent SQL patches).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables and applies the schema patches.
// Safe to run on every startup.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.BankAccount{},
		&model.BankTransaction{},
		&model.StockReceipt{},
		&model.Sale{},
		&model.OwnerDrawing{},
		&model.HistoricalSale{},
		&model.StockMovement{},
		&model.CostHistory{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// checkConstraints are the row-level rules GORM tags cannot express.
var checkConstraints = []struct{ name, table, expr string }{
	{"chk_products_quantity", "products", "quantity >= 0"},
	{"chk_products_average_cost", "products", "average_cost >= 0"},
	{"chk_products_reorder_level", "products", "reorder_level >= 0"},
	{"chk_stock_receipts_quantity", "stock_receipts", "quantity > 0"},
	{"chk_stock_receipts_unit_cost", "stock_receipts", "unit_cost >= 0"},
	{"chk_sales_quantity", "sales", "quantity > 0"},
	{"chk_sales_payment_method", "sales", "payment_method IN ('cash', 'transfer')"},
	{"chk_bank_transactions_amount", "bank_transactions", "amount > 0"},
	{"chk_bank_transactions_direction", "bank_transactions", "direction IN ('in', 'out')"},
	{"chk_owner_drawings_amount", "owner_drawings", "amount > 0"},
	{"chk_historical_sales_quantity", "historical_sales", "quantity > 0"},
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own. Each statement is guarded by an existence check so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := make([]string, 0, len(checkConstraints)+2)
	for _, c := range checkConstraints {
		patches = append(patches, fmt.Sprintf(`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		    ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
		  END IF;
		END $$`, c.name, c.table, c.name, c.expr))
	}

	patches = append(patches,
		// dashboard "last 50 transactions" query
		`CREATE INDEX IF NOT EXISTS idx_bank_transactions_recent
		    ON bank_transactions (occurred_at DESC, created_at DESC)`,
		// low-stock scan
		`CREATE INDEX IF NOT EXISTS idx_products_low_stock
		    ON products (quantity) WHERE quantity <= reorder_level`,
	)

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
