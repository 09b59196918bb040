package database

import (
	"fmt"
	"time"

	"bistro/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

var DB *gorm.DB

// InitDB opens the database connection and configures the pool.
// Supported drivers are "sqlite3" and "postgres".
func InitDB(driver, dsn string) error {
	var err error
	DB, err = gorm.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB.DB().SetMaxIdleConns(10)
	DB.DB().SetMaxOpenConns(100)
	DB.DB().SetConnMaxLifetime(time.Hour)

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Migrate creates all tables and the index that keeps the open-order
// invariant honest: at most one undelivered order per customer. Relying on
// a check-then-insert alone leaves a race between concurrent first adds, so
// the uniqueness lives in the schema and the aggregator retries on conflict.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.CartLine{},
	).Error
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	openOrderIndex := "CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_customer " +
		"ON orders(customer_id) WHERE delivered = %s AND deleted_at IS NULL"
	literal := "0"
	if db.Dialect().GetName() == "postgres" {
		literal = "false"
	}
	if err := db.Exec(fmt.Sprintf(openOrderIndex, literal)).Error; err != nil {
		return fmt.Errorf("open order index failed: %w", err)
	}
	return nil
}

// Seed ensures the role groups exist.
func Seed(db *gorm.DB) error {
	for _, name := range []string{models.GroupAdmins, models.GroupManagers, models.GroupDeliveryCrew} {
		var count int64
		db.Model(&models.Group{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := db.Create(&models.Group{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed group %s: %w", name, err)
			}
		}
	}
	return nil
}
