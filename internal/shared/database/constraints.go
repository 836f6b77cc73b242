package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes the overlap checks depend on. The seat
// conflict query filters by route, seat and live status on every booking,
// so it gets a partial index covering exactly those rows.
func MigrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_live_seat
		ON tickets (route_id, seat_number, from_stop_index, to_stop_index)
		WHERE status IN ('RESERVED', 'CONFIRMED');
	`).Error
	if err != nil {
		return err
	}

	// Expiry sweeper scans reservations by age
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_reserved_created
		ON tickets (created_at)
		WHERE status = 'RESERVED';
	`).Error
	if err != nil {
		return err
	}

	// Counter lookups by passenger
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_phone_number
		ON tickets (phone_number);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
