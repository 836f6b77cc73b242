package routes

import (
	"time"

	"viabus/internal/buses"

	"github.com/google/uuid"
)

// Route is one physical trip of a bus. Tickets sell arbitrary sub-segments
// of it: the ordered stop sequence [FromCity, stations..., ToCity] defines
// the index space every ticket's [fromStopIndex, toStopIndex) range refers
// to. Indices are never renumbered while tickets reference them; see
// Service.Update for the freeze rule.
type Route struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FromCity      string    `gorm:"not null" json:"from_city"`
	ToCity        string    `gorm:"not null" json:"to_city"`
	DepartureTime time.Time `gorm:"not null;index" json:"departure_time"`
	ArrivalTime   time.Time `gorm:"not null" json:"arrival_time"`
	Price         float64   `gorm:"not null" json:"price"`
	Type          string    `gorm:"type:varchar(20);default:'STANDARD'" json:"type"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	BusID         uuid.UUID `gorm:"type:uuid;not null" json:"bus_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Bus           *buses.Bus     `json:"bus,omitempty" gorm:"foreignKey:BusID;constraint:OnDelete:RESTRICT;"`
	RouteStations []RouteStation `json:"route_stations,omitempty" gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE;"`
	Prices        []SegmentPrice `json:"prices,omitempty" gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE;"`
}

// RouteStation is an intermediate stop. Order is the position within the
// intermediate sequence; the stop's index in the full stop list is Order+1.
type RouteStation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RouteID   uuid.UUID `gorm:"type:uuid;index;not null" json:"route_id"`
	Station   string    `gorm:"not null" json:"station"`
	Time      time.Time `gorm:"not null" json:"time"`
	Order     int       `gorm:"column:stop_order;not null" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// SegmentPrice overrides the base price for one named city pair. IsSold=false
// disables direct sale of the segment even when seats are free.
type SegmentPrice struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RouteID   uuid.UUID `gorm:"type:uuid;index;not null" json:"route_id"`
	FromCity  string    `gorm:"not null" json:"from_city"`
	ToCity    string    `gorm:"not null" json:"to_city"`
	Price     float64   `gorm:"not null" json:"price"`
	IsSold    bool      `gorm:"default:true" json:"is_sold"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for Route
func (Route) TableName() string {
	return "routes"
}

// TableName sets the table name for RouteStation
func (RouteStation) TableName() string {
	return "route_stations"
}

// TableName sets the table name for SegmentPrice
func (SegmentPrice) TableName() string {
	return "segment_prices"
}

// SeatCount returns the capacity of the assigned bus, 0 if not loaded.
func (r *Route) SeatCount() int {
	if r.Bus == nil {
		return 0
	}
	return r.Bus.SeatCount
}

// HasDeparted reports whether the route's origin departure is in the past.
func (r *Route) HasDeparted(now time.Time) bool {
	return r.DepartureTime.Before(now)
}
