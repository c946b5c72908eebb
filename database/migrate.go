package database

import (
	"fmt"

	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/utils"
	"gorm.io/gorm"
)

// SlotIndex is the unique (table_id, booking_date, booking_time) index
// that backs double-booking protection.
const SlotIndex = "idx_booking_slot"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Table{}, &models.Booking{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if !db.Migrator().HasIndex(&models.Booking{}, SlotIndex) {
		return fmt.Errorf("index %s missing after migration", SlotIndex)
	}
	utils.InfoLogger.Printf("Index verified: %s on bookings", SlotIndex)

	if db.Dialector.Name() == "sqlite" {
		var enabled int
		if err := db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
			return fmt.Errorf("check foreign keys: %w", err)
		}
		if enabled != 1 {
			utils.ErrorLogger.Println("Warning: sqlite foreign keys are off; add _foreign_keys=on to DB_DSN")
		}
	}
	return nil
}
