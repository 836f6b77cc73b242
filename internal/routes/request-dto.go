package routes

import "time"

type StationInput struct {
	Station string    `json:"station" binding:"required"`
	Time    time.Time `json:"time" binding:"required"`
}

type SegmentPriceInput struct {
	FromCity string  `json:"from_city" binding:"required"`
	ToCity   string  `json:"to_city" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	IsSold   *bool   `json:"is_sold"`
}

type CreateRouteRequest struct {
	FromCity      string              `json:"from_city" binding:"required"`
	ToCity        string              `json:"to_city" binding:"required"`
	DepartureTime time.Time           `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time           `json:"arrival_time" binding:"required"`
	Price         float64             `json:"price" binding:"required,gt=0"`
	Type          string              `json:"type" binding:"omitempty,oneof=STANDARD PREMIUM"`
	BusID         string              `json:"bus_id" binding:"required,uuid"`
	Stations      []StationInput      `json:"stations" binding:"omitempty,dive"`
	Prices        []SegmentPriceInput `json:"prices" binding:"omitempty,dive"`
}

// UpdateRouteRequest carries partial updates. Stations are only replaceable
// while no live ticket references the route's stop indices.
type UpdateRouteRequest struct {
	Price    *float64            `json:"price" binding:"omitempty,gt=0"`
	IsActive *bool               `json:"is_active"`
	Stations []StationInput      `json:"stations" binding:"omitempty,dive"`
	Prices   []SegmentPriceInput `json:"prices" binding:"omitempty,dive"`
}

type SearchRoutesQuery struct {
	FromCity string `form:"from_city"`
	ToCity   string `form:"to_city"`
	Date     string `form:"date"` // YYYY-MM-DD
	// IgnoreTimeCheck lets back-office screens see routes inside the sales
	// cutoff window. Customer-facing search leaves it unset.
	IgnoreTimeCheck bool `form:"ignore_time_check"`
	Page            int  `form:"page"`
	Limit           int  `form:"limit"`
}
