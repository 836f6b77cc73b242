package routes

import (
	"context"
	"fmt"
	"time"

	"viabus/internal/buses"
	"viabus/internal/shared/apperr"

	"github.com/google/uuid"
)

// TicketCounter reports how many distinct seats are occupied on a route for
// a stop-index range. Implemented by the tickets repository; injected here
// to avoid a package cycle.
type TicketCounter interface {
	OccupiedSeatCount(ctx context.Context, routeID uuid.UUID, fromIndex, toIndex int) (int, error)
}

// Service interface defines the contract for route business logic
type Service interface {
	Create(ctx context.Context, req CreateRouteRequest) (*Route, error)
	Get(ctx context.Context, id uuid.UUID) (*Route, error)
	List(ctx context.Context, query RouteListQuery) ([]Route, int64, error)
	Search(ctx context.Context, query SearchRoutesQuery) ([]RouteSearchResult, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRouteRequest) (*Route, error)
}

type service struct {
	repo        Repository
	busRepo     buses.Repository
	tickets     TicketCounter
	salesCutoff time.Duration
}

// NewService creates a new route service instance. tickets may be nil, seat
// counts are then omitted from search results.
func NewService(repo Repository, busRepo buses.Repository, tickets TicketCounter, salesCutoff time.Duration) Service {
	return &service{
		repo:        repo,
		busRepo:     busRepo,
		tickets:     tickets,
		salesCutoff: salesCutoff,
	}
}

func (s *service) Create(ctx context.Context, req CreateRouteRequest) (*Route, error) {
	busID, err := uuid.Parse(req.BusID)
	if err != nil {
		return nil, apperr.Validation("invalid bus id %q", req.BusID)
	}

	bus, err := s.busRepo.GetByID(ctx, busID)
	if err != nil {
		return nil, err
	}

	if !req.ArrivalTime.After(req.DepartureTime) {
		return nil, apperr.Validation("arrival time must be after departure time")
	}

	routeType := req.Type
	if routeType == "" {
		routeType = "STANDARD"
	}

	route := &Route{
		FromCity:      req.FromCity,
		ToCity:        req.ToCity,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Price:         req.Price,
		Type:          routeType,
		IsActive:      true,
		BusID:         bus.ID,
		RouteStations: buildStations(req.Stations),
		Prices:        buildPrices(req.Prices),
	}

	if err := s.repo.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return s.repo.GetByID(ctx, route.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Route, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, query RouteListQuery) ([]Route, int64, error) {
	return s.repo.List(ctx, query)
}

// Search finds routes selling the requested segment on the requested day.
// A route qualifies when both cities appear on its stop list in travel
// order, the segment is not disabled by a price override, and its boarding
// stop departs after the sales cutoff.
func (s *service) Search(ctx context.Context, query SearchRoutesQuery) ([]RouteSearchResult, error) {
	windowStart, windowEnd, err := searchWindow(query.Date, query.IgnoreTimeCheck)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListDepartingBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	now := time.Now()
	results := make([]RouteSearchResult, 0, len(candidates))

	for i := range candidates {
		route := &candidates[i]

		fromIndex, toIndex := 0, route.LastStopIndex()
		if query.FromCity != "" && query.ToCity != "" {
			fi := route.StopIndex(query.FromCity)
			ti := route.StopIndex(query.ToCity)
			if fi == -1 || ti == -1 || fi >= ti {
				continue
			}
			fromIndex, toIndex = fi, ti

			// A price override can disable the segment outright.
			if override := route.SegmentPriceFor(query.FromCity, query.ToCity); override != nil && !override.IsSold {
				continue
			}
		}

		boarding := route.DepartureAtStop(fromIndex)
		if !query.IgnoreTimeCheck && boarding.Before(now.Add(s.salesCutoff)) {
			continue
		}

		result := RouteSearchResult{
			Route:             route,
			MainDepartureTime: route.DepartureTime,
			DepartureTime:     boarding,
			ArrivalTime:       s.arrivalAtStop(route, toIndex),
			Price:             s.displayPrice(route, query.FromCity, query.ToCity),
			Stations:          route.FullStops(),
		}

		if s.tickets != nil && route.SeatCount() > 0 {
			occupied, err := s.tickets.OccupiedSeatCount(ctx, route.ID, fromIndex, toIndex)
			if err != nil {
				return nil, fmt.Errorf("failed to count occupied seats: %w", err)
			}
			result.AvailableSeats = route.SeatCount() - occupied
		}

		results = append(results, result)
	}

	return results, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRouteRequest) (*Route, error) {
	route, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Stations != nil {
		// Stop indices are positional; renumbering them under live tickets
		// would silently corrupt every ticket's range. Sequences freeze at
		// first sale.
		live, err := s.repo.HasLiveTickets(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check route tickets: %w", err)
		}
		if live {
			return nil, apperr.Conflict("stop sequence of route %s is frozen: tickets reference its stop indices", id)
		}
		stations := buildStations(req.Stations)
		for i := range stations {
			stations[i].RouteID = id
		}
		if err := s.repo.ReplaceStations(ctx, id, stations); err != nil {
			return nil, fmt.Errorf("failed to replace stations: %w", err)
		}
	}

	if req.Prices != nil {
		prices := buildPrices(req.Prices)
		for i := range prices {
			prices[i].RouteID = id
		}
		if err := s.repo.ReplacePrices(ctx, id, prices); err != nil {
			return nil, fmt.Errorf("failed to replace segment prices: %w", err)
		}
	}

	if req.Price != nil {
		route.Prices = nil
		route.RouteStations = nil
		route.Price = *req.Price
		if err := s.repo.Update(ctx, route); err != nil {
			return nil, fmt.Errorf("failed to update route: %w", err)
		}
	}

	if req.IsActive != nil {
		route.Prices = nil
		route.RouteStations = nil
		route.IsActive = *req.IsActive
		if err := s.repo.Update(ctx, route); err != nil {
			return nil, fmt.Errorf("failed to update route: %w", err)
		}
	}

	return s.repo.GetByID(ctx, id)
}

// arrivalAtStop is the scheduled arrival at a stop index: a station's own
// time for intermediates, the route arrival for the destination.
func (s *service) arrivalAtStop(route *Route, index int) time.Time {
	if index >= route.LastStopIndex() || index <= 0 {
		return route.ArrivalTime
	}
	return route.RouteStations[index-1].Time
}

func (s *service) displayPrice(route *Route, fromCity, toCity string) float64 {
	if fromCity == "" || toCity == "" {
		return route.Price
	}
	if override := route.SegmentPriceFor(fromCity, toCity); override != nil {
		return override.Price
	}
	return route.Price
}

// searchWindow expands a YYYY-MM-DD date into the departure window. The
// customer window reaches 24h back so overnight buses passing the boarding
// city after midnight still show up; back-office queries see the day as-is.
func searchWindow(date string, ignoreTimeCheck bool) (time.Time, time.Time, error) {
	if date == "" {
		now := time.Now()
		return now.Add(-24 * time.Hour), now.Add(14 * 24 * time.Hour), nil
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}

	start := day
	if !ignoreTimeCheck {
		start = day.Add(-24 * time.Hour)
	}
	end := day.Add(27 * time.Hour)
	return start, end, nil
}

func buildStations(inputs []StationInput) []RouteStation {
	stations := make([]RouteStation, 0, len(inputs))
	for i, in := range inputs {
		stations = append(stations, RouteStation{
			Station: in.Station,
			Time:    in.Time,
			Order:   i,
		})
	}
	return stations
}

func buildPrices(inputs []SegmentPriceInput) []SegmentPrice {
	prices := make([]SegmentPrice, 0, len(inputs))
	for _, in := range inputs {
		isSold := true
		if in.IsSold != nil {
			isSold = *in.IsSold
		}
		prices = append(prices, SegmentPrice{
			FromCity: in.FromCity,
			ToCity:   in.ToCity,
			Price:    in.Price,
			IsSold:   isSold,
		})
	}
	return prices
}
