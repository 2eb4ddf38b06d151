package models

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	migrations := []interface{}{
		&Account{},
		&VerificationToken{},
		&Coupon{},
		&RedemptionLog{},
		&Settings{},
		&AdminSession{},
	}

	for _, migration := range migrations {
		if err := db.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}
