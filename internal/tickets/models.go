package tickets

import (
	"time"

	"github.com/google/uuid"

	"viabus/internal/routes"
)

// Ticket is a seat occupation on a contiguous stop range of a route.
// FromStopIndex/ToStopIndex are positions in the route's full stop list
// (origin = 0, stations follow in order, destination last). The range is
// half open: the seat is held from boarding stop inclusive to alighting
// stop exclusive, so back-to-back segments never collide.
type Ticket struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PNRNumber     string        `gorm:"column:pnr_number;type:varchar(16);uniqueIndex;not null" json:"pnrNumber"`
	RouteID       uuid.UUID     `gorm:"type:uuid;not null;index;index:idx_tickets_route_seat,priority:1" json:"routeId"`
	Route         *routes.Route `gorm:"foreignKey:RouteID;constraint:OnDelete:RESTRICT" json:"route,omitempty"`
	UserID        *uuid.UUID    `gorm:"type:uuid;index" json:"userId,omitempty"`
	IssuedByID    *uuid.UUID    `gorm:"type:uuid" json:"issuedById,omitempty"`
	SeatNumber    int           `gorm:"not null;index:idx_tickets_route_seat,priority:2" json:"seatNumber"`
	FromCity      string        `gorm:"type:varchar(100);not null" json:"fromCity"`
	ToCity        string        `gorm:"type:varchar(100);not null" json:"toCity"`
	FromStopIndex int           `gorm:"not null" json:"fromStopIndex"`
	ToStopIndex   int           `gorm:"not null" json:"toStopIndex"`
	Status        Status        `gorm:"type:varchar(20);not null;default:'RESERVED';check:status IN ('RESERVED','CONFIRMED','SUSPENDED','CANCELLED')" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';check:payment_status IN ('PENDING','PAID','REFUNDED')" json:"paymentStatus"`
	Price         float64       `gorm:"type:decimal(10,2);not null" json:"price"`
	PassengerName string        `gorm:"type:varchar(200);not null" json:"passengerName"`
	Gender        string        `gorm:"type:varchar(10);not null" json:"gender"`
	NationalID    string        `gorm:"type:varchar(11)" json:"nationalId,omitempty"`
	PhoneNumber   string        `gorm:"type:varchar(20);not null" json:"phoneNumber"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
	CancelledAt   *time.Time    `json:"cancelledAt,omitempty"`
	SuspendedAt   *time.Time    `json:"suspendedAt,omitempty"`
}

// TableName specifies the table name for Ticket model
func (Ticket) TableName() string {
	return "tickets"
}

// Overlaps reports whether this ticket's stop range intersects the given
// half-open range. Sharing a boundary stop is not an overlap.
func (t *Ticket) Overlaps(fromIndex, toIndex int) bool {
	return t.FromStopIndex < toIndex && t.ToStopIndex > fromIndex
}
