package realtime

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a seat update.
type EventType string

const (
	EventSeatReserved  EventType = "SEAT_RESERVED"
	EventSeatConfirmed EventType = "SEAT_CONFIRMED"
	EventSeatSuspended EventType = "SEAT_SUSPENDED"
	EventSeatCancelled EventType = "SEAT_CANCELLED"
	EventSeatAvailable EventType = "SEAT_AVAILABLE"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventSeatReserved, EventSeatConfirmed, EventSeatSuspended, EventSeatCancelled, EventSeatAvailable:
		return true
	}
	return false
}

func (e EventType) String() string {
	return string(e)
}

// SeatUpdateEvent is pushed to every subscriber watching a route whenever a
// seat's lifecycle state changes. Origin tags the producing instance so a
// broker bridge can drop messages it published itself.
type SeatUpdateEvent struct {
	RouteID       uuid.UUID              `json:"routeId"`
	SeatNumber    int                    `json:"seatNumber"`
	EventType     EventType              `json:"eventType"`
	TicketID      uuid.UUID              `json:"ticketId"`
	PNR           string                 `json:"pnr"`
	FromStopIndex int                    `json:"fromStopIndex"`
	ToStopIndex   int                    `json:"toStopIndex"`
	Timestamp     time.Time              `json:"timestamp"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Origin        string                 `json:"origin,omitempty"`
}
