package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// NewDatabase establishes a GORM connection, runs AutoMigrate for all models,
// then applies the idempotent SQL patches that GORM cannot express.
//
// DSNs starting with sqlite:// open a local SQLite file (development only);
// everything else is treated as a PostgreSQL URL served through pgx.
func NewDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return NewSQLiteDatabase(strings.TrimPrefix(dsn, sqlitePrefix))
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewSQLiteDatabase opens a SQLite database and migrates it. SQLite has no row
// locks, so the pool is pinned to a single connection: transactions are
// serialized by the pool instead of by SELECT ... FOR UPDATE.
//
// Tests use a shared-cache in-memory DSN: "file:<name>?mode=memory&cache=shared".
func NewSQLiteDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates / updates all tables and applies schema patches.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Every statement must be valid on both PostgreSQL and SQLite.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One ACTIVE session per table. Concurrent starts on the same table
		// fail with a unique violation instead of double-booking it.
		{"one active session per table", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_table_sessions_one_active
    ON table_sessions (table_id)
    WHERE status = 'ACTIVE'`},
		// A tracked item can be settled by at most one order line.
		{"tracked item settled once", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_pos_order_items_tracked_once
    ON pos_order_items (tracked_item_id)
    WHERE tracked_item_id IS NOT NULL`},
		// Older schemas allowed one tracked row per (session, item). A settled
		// row and a fresh one for the same item now coexist.
		{"drop tracked row uniqueness", `
DROP INDEX IF EXISTS idx_tracked_session_item`},
		{"ledger scan index", `
CREATE INDEX IF NOT EXISTS idx_stock_movements_item_created
    ON stock_movements (item_id, created_at)`},
		{"report scan index", `
CREATE INDEX IF NOT EXISTS idx_pos_orders_company_created
    ON pos_orders (company_id, created_at)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
