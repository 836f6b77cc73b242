package routes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"viabus/internal/buses"
	"viabus/internal/shared/apperr"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, route *Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Route), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query RouteListQuery) ([]Route, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]Route), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListDepartingBetween(ctx context.Context, from, to time.Time) ([]Route, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]Route), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, route *Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRepository) ReplaceStations(ctx context.Context, routeID uuid.UUID, stations []RouteStation) error {
	args := m.Called(ctx, routeID, stations)
	return args.Error(0)
}

func (m *MockRepository) ReplacePrices(ctx context.Context, routeID uuid.UUID, prices []SegmentPrice) error {
	args := m.Called(ctx, routeID, prices)
	return args.Error(0)
}

func (m *MockRepository) HasLiveTickets(ctx context.Context, routeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, routeID)
	return args.Bool(0), args.Error(1)
}

type MockBusRepository struct {
	mock.Mock
}

func (m *MockBusRepository) Create(ctx context.Context, bus *buses.Bus) error {
	args := m.Called(ctx, bus)
	return args.Error(0)
}

func (m *MockBusRepository) GetByID(ctx context.Context, id uuid.UUID) (*buses.Bus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buses.Bus), args.Error(1)
}

func (m *MockBusRepository) List(ctx context.Context) ([]buses.Bus, error) {
	args := m.Called(ctx)
	return args.Get(0).([]buses.Bus), args.Error(1)
}

type MockTicketCounter struct {
	mock.Mock
}

func (m *MockTicketCounter) OccupiedSeatCount(ctx context.Context, routeID uuid.UUID, fromIndex, toIndex int) (int, error) {
	args := m.Called(ctx, routeID, fromIndex, toIndex)
	return args.Int(0), args.Error(1)
}

func searchableRoute(departure time.Time) Route {
	return Route{
		ID:            uuid.New(),
		FromCity:      "İstanbul",
		ToCity:        "Ankara",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(6 * time.Hour),
		Price:         650,
		IsActive:      true,
		Bus:           &buses.Bus{ID: uuid.New(), SeatCount: 40},
		RouteStations: []RouteStation{
			{Station: "İzmit", Time: departure.Add(90 * time.Minute), Order: 0},
			{Station: "Bolu", Time: departure.Add(3 * time.Hour), Order: 1},
		},
		Prices: []SegmentPrice{
			{FromCity: "İzmit", ToCity: "Bolu", Price: 180, IsSold: true},
			{FromCity: "Bolu", ToCity: "Ankara", Price: 250, IsSold: false},
		},
	}
}

func TestSearch_SegmentMatching(t *testing.T) {
	repo := new(MockRepository)
	counter := new(MockTicketCounter)
	departure := time.Now().Add(48 * time.Hour)
	route := searchableRoute(departure)

	repo.On("ListDepartingBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return([]Route{route}, nil)
	counter.On("OccupiedSeatCount", mock.Anything, route.ID, 1, 2).Return(12, nil)

	svc := NewService(repo, new(MockBusRepository), counter, 15*time.Minute)
	results, err := svc.Search(context.Background(), SearchRoutesQuery{FromCity: "İzmit", ToCity: "Bolu"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	got := results[0]
	assert.Equal(t, 180.0, got.Price)
	assert.Equal(t, 40-12, got.AvailableSeats)
	// Boarding at İzmit departs later than the route origin
	assert.Equal(t, departure.Add(90*time.Minute), got.DepartureTime)
	assert.Equal(t, departure, got.MainDepartureTime)
	assert.Equal(t, []string{"İstanbul", "İzmit", "Bolu", "Ankara"}, got.Stations)
}

func TestSearch_SkipsUnmatchedRoutes(t *testing.T) {
	repo := new(MockRepository)
	departure := time.Now().Add(48 * time.Hour)
	route := searchableRoute(departure)

	repo.On("ListDepartingBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return([]Route{route}, nil)

	svc := NewService(repo, new(MockBusRepository), nil, 15*time.Minute)

	t.Run("city not on route", func(t *testing.T) {
		results, err := svc.Search(context.Background(), SearchRoutesQuery{FromCity: "İzmir", ToCity: "Ankara"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("cities in reverse travel order", func(t *testing.T) {
		results, err := svc.Search(context.Background(), SearchRoutesQuery{FromCity: "Bolu", ToCity: "İzmit"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("segment disabled by price override", func(t *testing.T) {
		results, err := svc.Search(context.Background(), SearchRoutesQuery{FromCity: "Bolu", ToCity: "Ankara"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearch_SalesCutoff(t *testing.T) {
	repo := new(MockRepository)
	// Departs in 5 minutes, inside the 15 minute cutoff
	route := searchableRoute(time.Now().Add(5 * time.Minute))

	repo.On("ListDepartingBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return([]Route{route}, nil)

	svc := NewService(repo, new(MockBusRepository), nil, 15*time.Minute)

	results, err := svc.Search(context.Background(), SearchRoutesQuery{FromCity: "İstanbul", ToCity: "Ankara"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.Search(context.Background(), SearchRoutesQuery{FromCity: "İstanbul", ToCity: "Ankara", IgnoreTimeCheck: true})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_InvalidDate(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockBusRepository), nil, 15*time.Minute)
	_, err := svc.Search(context.Background(), SearchRoutesQuery{Date: "31-12-2026"})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdate_StationsFrozenAfterFirstSale(t *testing.T) {
	repo := new(MockRepository)
	departure := time.Now().Add(48 * time.Hour)
	route := searchableRoute(departure)

	repo.On("GetByID", mock.Anything, route.ID).Return(&route, nil)
	repo.On("HasLiveTickets", mock.Anything, route.ID).Return(true, nil)

	svc := NewService(repo, new(MockBusRepository), nil, 15*time.Minute)
	_, err := svc.Update(context.Background(), route.ID, UpdateRouteRequest{
		Stations: []StationInput{{Station: "Düzce", Time: departure.Add(2 * time.Hour)}},
	})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	repo.AssertNotCalled(t, "ReplaceStations", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_StationsReplacedWhileUnsold(t *testing.T) {
	repo := new(MockRepository)
	departure := time.Now().Add(48 * time.Hour)
	route := searchableRoute(departure)

	repo.On("GetByID", mock.Anything, route.ID).Return(&route, nil)
	repo.On("HasLiveTickets", mock.Anything, route.ID).Return(false, nil)
	repo.On("ReplaceStations", mock.Anything, route.ID, mock.AnythingOfType("[]routes.RouteStation")).
		Run(func(args mock.Arguments) {
			stations := args.Get(2).([]RouteStation)
			require.Len(t, stations, 2)
			// Order is assigned positionally
			assert.Equal(t, 0, stations[0].Order)
			assert.Equal(t, 1, stations[1].Order)
			assert.Equal(t, route.ID, stations[0].RouteID)
		}).
		Return(nil)

	svc := NewService(repo, new(MockBusRepository), nil, 15*time.Minute)
	_, err := svc.Update(context.Background(), route.ID, UpdateRouteRequest{
		Stations: []StationInput{
			{Station: "Düzce", Time: departure.Add(2 * time.Hour)},
			{Station: "Gerede", Time: departure.Add(4 * time.Hour)},
		},
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdate_Deactivation(t *testing.T) {
	repo := new(MockRepository)
	route := searchableRoute(time.Now().Add(48 * time.Hour))

	repo.On("GetByID", mock.Anything, route.ID).Return(&route, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*routes.Route")).Return(nil)

	inactive := false
	svc := NewService(repo, new(MockBusRepository), nil, 15*time.Minute)
	updated, err := svc.Update(context.Background(), route.ID, UpdateRouteRequest{IsActive: &inactive})

	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestCreate_RejectsArrivalBeforeDeparture(t *testing.T) {
	repo := new(MockRepository)
	busRepo := new(MockBusRepository)
	bus := &buses.Bus{ID: uuid.New(), SeatCount: 40}
	busRepo.On("GetByID", mock.Anything, bus.ID).Return(bus, nil)

	departure := time.Now().Add(48 * time.Hour)
	svc := NewService(repo, busRepo, nil, 15*time.Minute)
	_, err := svc.Create(context.Background(), CreateRouteRequest{
		FromCity:      "İstanbul",
		ToCity:        "Ankara",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(-time.Hour),
		Price:         650,
		BusID:         bus.ID.String(),
	})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
