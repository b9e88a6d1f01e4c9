package database

import (
	"fmt"
	"log"
	"strings"

	"catalog-backend/internal/config"
	"catalog-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the Postgres connection and brings the schema up to date.
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.DBLogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database connection established. Migration finished.")
	return db, nil
}

// Migrate creates or updates every table. It is safe to run on each start.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Brand{},
		&models.Product{},
		&models.User{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Brand names are unique regardless of case. The plain unique index from
	// the struct tag stays as well.
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_name_lower ON brands (LOWER(name))").Error; err != nil {
		return fmt.Errorf("brand name index: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := ensureProductBrandCascade(db); err != nil {
			return err
		}
	}

	return nil
}

// ensureProductBrandCascade recreates the products -> brands foreign key when
// a database created before the constraint existed lacks ON DELETE CASCADE.
func ensureProductBrandCascade(db *gorm.DB) error {
	var rule string
	err := db.Raw(`
		SELECT rc.delete_rule
		FROM information_schema.referential_constraints rc
		WHERE rc.constraint_name = 'fk_products_brand'
	`).Scan(&rule).Error
	if err != nil {
		return fmt.Errorf("inspect products foreign key: %w", err)
	}

	if rule == "CASCADE" {
		return nil
	}

	log.Println("Adding ON DELETE CASCADE to products.brand_id ...")
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("ALTER TABLE products DROP CONSTRAINT IF EXISTS fk_products_brand").Error; err != nil {
			return err
		}
		return tx.Exec(`
			ALTER TABLE products
			ADD CONSTRAINT fk_products_brand
			FOREIGN KEY (brand_id) REFERENCES brands(id)
			ON UPDATE CASCADE ON DELETE CASCADE
		`).Error
	})
}

func logLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
