package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables and unique indexes for every schema
// in this package.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}, &BookingSchema{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
