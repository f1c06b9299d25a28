package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"fournil/internal/models"
)

// Open initializes the database connection and migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	if driver == "" {
		driver = "sqlite3"
	}
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	db.AutoMigrate(
		&models.Ingredient{},
		&models.Product{},
		&models.ProductLine{},
		&models.Customer{},
		&models.WeeklyDelivery{},
		&models.DeliveryDate{},
		&models.Order{},
		&models.OrderLine{},
	)
	if err := db.Error; err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
