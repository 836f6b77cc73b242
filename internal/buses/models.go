package buses

import (
	"time"

	"github.com/google/uuid"
)

// Bus is the vehicle assigned to a route. SeatCount is the capacity every
// ticket's seat number is validated against.
type Bus struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Plate     string    `gorm:"uniqueIndex;not null" json:"plate"`
	Model     string    `gorm:"type:varchar(100)" json:"model"`
	SeatCount int       `gorm:"not null" json:"seat_count"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Bus
func (Bus) TableName() string {
	return "buses"
}
