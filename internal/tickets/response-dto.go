package tickets

import (
	"time"

	"github.com/google/uuid"
)

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID            uuid.UUID     `json:"id"`
	PNRNumber     string        `json:"pnrNumber"`
	RouteID       uuid.UUID     `json:"routeId"`
	SeatNumber    int           `json:"seatNumber"`
	FromCity      string        `json:"fromCity"`
	ToCity        string        `json:"toCity"`
	FromStopIndex int           `json:"fromStopIndex"`
	ToStopIndex   int           `json:"toStopIndex"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Price         float64       `json:"price"`
	PassengerName string        `json:"passengerName"`
	Gender        string        `json:"gender"`
	PhoneNumber   string        `json:"phoneNumber"`
	DepartureTime *time.Time    `json:"departureTime,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// AvailabilityResponse lists the seats free on a stop range.
type AvailabilityResponse struct {
	RouteID        uuid.UUID `json:"routeId"`
	FromCity       string    `json:"fromCity"`
	ToCity         string    `json:"toCity"`
	FromStopIndex  int       `json:"fromStopIndex"`
	ToStopIndex    int       `json:"toStopIndex"`
	SeatCount      int       `json:"seatCount"`
	AvailableSeats []int     `json:"availableSeats"`
}

// ToTicketResponse converts a Ticket to its response form.
func ToTicketResponse(t *Ticket) TicketResponse {
	resp := TicketResponse{
		ID:            t.ID,
		PNRNumber:     t.PNRNumber,
		RouteID:       t.RouteID,
		SeatNumber:    t.SeatNumber,
		FromCity:      t.FromCity,
		ToCity:        t.ToCity,
		FromStopIndex: t.FromStopIndex,
		ToStopIndex:   t.ToStopIndex,
		Status:        t.Status,
		PaymentStatus: t.PaymentStatus,
		Price:         t.Price,
		PassengerName: t.PassengerName,
		Gender:        t.Gender,
		PhoneNumber:   t.PhoneNumber,
		CreatedAt:     t.CreatedAt,
	}
	if t.Route != nil {
		dep := t.Route.DepartureTime
		resp.DepartureTime = &dep
	}
	return resp
}

// ToTicketResponses converts a slice of tickets.
func ToTicketResponses(tickets []Ticket) []TicketResponse {
	responses := make([]TicketResponse, len(tickets))
	for i := range tickets {
		responses[i] = ToTicketResponse(&tickets[i])
	}
	return responses
}
