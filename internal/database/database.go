package database

import (
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the PostgreSQL connection. The handle is passed to services
// explicitly; there is no package-level singleton.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the ledger schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Citizen{},
		&models.Transaction{},
		&models.CitizenGem{},
		&models.DriverGem{},
		&models.GemPenaltyRecord{},
		&models.OutstandingDebt{},
		&models.ViolationReport{},
		&models.DrivingLicense{},
		&models.PaymentConfig{},
		&models.FinePaymentOrder{},
	)
}
