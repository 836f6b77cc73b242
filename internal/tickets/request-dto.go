package tickets

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// CreateTicketRequest represents the request body for buying a seat on a
// stop range of a route.
type CreateTicketRequest struct {
	RouteID       string `json:"routeId" binding:"required,uuid"`
	FromCity      string `json:"fromCity" binding:"required,min=2,max=100"`
	ToCity        string `json:"toCity" binding:"required,min=2,max=100"`
	SeatNumber    int    `json:"seatNumber" binding:"required,min=1"`
	PassengerName string `json:"passengerName" binding:"required,min=2,max=200"`
	Gender        string `json:"gender" binding:"required,oneof=MALE FEMALE"`
	PhoneNumber   string `json:"phoneNumber" binding:"required,trphone"`
	NationalID    string `json:"nationalId" binding:"omitempty,len=11,numeric"`
}

// SearchTicketsQuery represents query parameters for ticket lookup.
type SearchTicketsQuery struct {
	PNR         string `form:"pnr" binding:"omitempty,min=5,max=16"`
	PhoneNumber string `form:"phone_number" binding:"omitempty,trphone"`
	NationalID  string `form:"national_id" binding:"omitempty,len=11,numeric"`
}

// RegisterValidators installs custom binding rules. Must run once before
// the router starts handling traffic.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Turkish mobile number without country code, e.g. 5321234567.
	_ = v.RegisterValidation("trphone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != 10 {
			return false
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return value[0] == '5'
	})
}
