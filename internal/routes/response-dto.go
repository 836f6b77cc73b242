package routes

import "time"

// RouteSearchResult is a route decorated for a specific searched segment:
// segment-level price, departure/arrival at the passenger's own stops and
// the free-seat count for exactly that segment.
type RouteSearchResult struct {
	Route             *Route    `json:"route"`
	MainDepartureTime time.Time `json:"main_departure_time"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`
	Price             float64   `json:"price"`
	AvailableSeats    int       `json:"available_seats"`
	Stations          []string  `json:"stations"`
}

type RouteListResponse struct {
	Routes     []Route `json:"routes"`
	TotalCount int64   `json:"total_count"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}
