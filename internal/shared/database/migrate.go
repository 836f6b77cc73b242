package database

import (
	"viabus/internal/buses"
	"viabus/internal/routes"
	"viabus/internal/tickets"
	"viabus/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 defaults need the extension present
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&users.User{},
		&buses.Bus{},
		&routes.Route{},
		&routes.RouteStation{},
		&routes.SegmentPrice{},
		&tickets.Ticket{},
	)
}
