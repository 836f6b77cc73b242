package tickets

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"viabus/internal/buses"
	"viabus/internal/realtime"
	"viabus/internal/routes"
	"viabus/internal/shared/apperr"
	"viabus/internal/users"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateWithSegmentLock(ctx context.Context, ticket *Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Ticket), args.Error(1)
}

func (m *MockRepository) GetByPNR(ctx context.Context, pnr string) (*Ticket, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Ticket), args.Error(1)
}

func (m *MockRepository) GetBlockingForRoute(ctx context.Context, routeID uuid.UUID) ([]Ticket, error) {
	args := m.Called(ctx, routeID)
	return args.Get(0).([]Ticket), args.Error(1)
}

func (m *MockRepository) OccupiedSeatCount(ctx context.Context, routeID uuid.UUID, fromIndex, toIndex int) (int, error) {
	args := m.Called(ctx, routeID, fromIndex, toIndex)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SaveStatus(ctx context.Context, ticket *Ticket, from Status) error {
	args := m.Called(ctx, ticket, from)
	return args.Error(0)
}

func (m *MockRepository) Search(ctx context.Context, query SearchTicketsQuery) ([]Ticket, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]Ticket), args.Error(1)
}

func (m *MockRepository) GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Ticket), args.Error(1)
}

func (m *MockRepository) ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]Ticket, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]Ticket), args.Error(1)
}

type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) Create(ctx context.Context, route *routes.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*routes.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*routes.Route), args.Error(1)
}

func (m *MockRouteRepository) List(ctx context.Context, query routes.RouteListQuery) ([]routes.Route, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]routes.Route), args.Get(1).(int64), args.Error(2)
}

func (m *MockRouteRepository) ListDepartingBetween(ctx context.Context, from, to time.Time) ([]routes.Route, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]routes.Route), args.Error(1)
}

func (m *MockRouteRepository) Update(ctx context.Context, route *routes.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRouteRepository) ReplaceStations(ctx context.Context, routeID uuid.UUID, stations []routes.RouteStation) error {
	args := m.Called(ctx, routeID, stations)
	return args.Error(0)
}

func (m *MockRouteRepository) ReplacePrices(ctx context.Context, routeID uuid.UUID, prices []routes.SegmentPrice) error {
	args := m.Called(ctx, routeID, prices)
	return args.Error(0)
}

func (m *MockRouteRepository) HasLiveTickets(ctx context.Context, routeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, routeID)
	return args.Bool(0), args.Error(1)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []realtime.SeatUpdateEvent
}

func (f *fakeNotifier) PublishSeatEvent(_ context.Context, event realtime.SeatUpdateEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) lastEvent() *realtime.SeatUpdateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return &f.events[len(f.events)-1]
}

func futureRoute() *routes.Route {
	depart := time.Now().Add(48 * time.Hour)
	return &routes.Route{
		ID:            uuid.New(),
		FromCity:      "İstanbul",
		ToCity:        "Ankara",
		DepartureTime: depart,
		ArrivalTime:   depart.Add(6 * time.Hour),
		Price:         650,
		IsActive:      true,
		Bus:           &buses.Bus{ID: uuid.New(), SeatCount: 4},
		RouteStations: []routes.RouteStation{
			{Station: "İzmit", Time: depart.Add(90 * time.Minute), Order: 0},
			{Station: "Bolu", Time: depart.Add(3 * time.Hour), Order: 1},
		},
		Prices: []routes.SegmentPrice{
			{FromCity: "İstanbul", ToCity: "İzmit", Price: 200, IsSold: true},
			{FromCity: "Bolu", ToCity: "Ankara", Price: 250, IsSold: false},
		},
	}
}

func validRequest(routeID uuid.UUID) CreateTicketRequest {
	return CreateTicketRequest{
		RouteID:       routeID.String(),
		FromCity:      "İstanbul",
		ToCity:        "Ankara",
		SeatNumber:    1,
		PassengerName: "Ayşe Yılmaz",
		Gender:        "FEMALE",
		PhoneNumber:   "5321112233",
	}
}

func newTestService(repo Repository, routeRepo routes.Repository, notifier Notifier) Service {
	return NewService(repo, routeRepo, notifier, 15*time.Minute, 30*time.Minute)
}

func expectInsert(repo *MockRepository) {
	repo.On("CreateWithSegmentLock", mock.Anything, mock.AnythingOfType("*tickets.Ticket")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*Ticket).ID = uuid.New()
		}).
		Return(nil)
}

func TestCreateTicket_CustomerReserves(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	notifier := &fakeNotifier{}
	route := futureRoute()

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
	expectInsert(repo)

	userID := uuid.New()
	svc := newTestService(repo, routeRepo, notifier)
	ticket, err := svc.Create(context.Background(), validRequest(route.ID), Issuer{UserID: &userID, Role: users.RoleCustomer})

	require.NoError(t, err)
	assert.Equal(t, StatusReserved, ticket.Status)
	assert.Equal(t, PaymentPending, ticket.PaymentStatus)
	assert.Equal(t, 0, ticket.FromStopIndex)
	assert.Equal(t, 3, ticket.ToStopIndex)
	assert.Equal(t, 650.0, ticket.Price)
	assert.Equal(t, "VV00", ticket.PNRNumber[:4])
	require.NotNil(t, ticket.UserID)
	assert.Equal(t, userID, *ticket.UserID)
	assert.Nil(t, ticket.IssuedByID)

	event := notifier.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, realtime.EventSeatReserved, event.EventType)
	assert.Equal(t, route.ID, event.RouteID)
}

func TestCreateTicket_AgentSellsConfirmed(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	notifier := &fakeNotifier{}
	route := futureRoute()

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
	expectInsert(repo)

	agentID := uuid.New()
	svc := newTestService(repo, routeRepo, notifier)
	ticket, err := svc.Create(context.Background(), validRequest(route.ID), Issuer{UserID: &agentID, Role: users.RoleAgent})

	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, ticket.Status)
	assert.Equal(t, PaymentPaid, ticket.PaymentStatus)
	require.NotNil(t, ticket.IssuedByID)
	assert.Equal(t, agentID, *ticket.IssuedByID)
	assert.Nil(t, ticket.UserID)

	event := notifier.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, realtime.EventSeatConfirmed, event.EventType)
}

func TestCreateTicket_SegmentPriceOverride(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	route := futureRoute()

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
	expectInsert(repo)

	req := validRequest(route.ID)
	req.ToCity = "İzmit"

	svc := newTestService(repo, routeRepo, &fakeNotifier{})
	ticket, err := svc.Create(context.Background(), req, Issuer{Role: users.RoleCustomer})

	require.NoError(t, err)
	assert.Equal(t, 200.0, ticket.Price)
	assert.Equal(t, 0, ticket.FromStopIndex)
	assert.Equal(t, 1, ticket.ToStopIndex)
}

func TestCreateTicket_Rejections(t *testing.T) {
	route := futureRoute()

	tests := []struct {
		name   string
		mutate func(*CreateTicketRequest)
		kind   apperr.Kind
	}{
		{
			name:   "unknown stop",
			mutate: func(r *CreateTicketRequest) { r.FromCity = "Eskişehir" },
			kind:   apperr.KindValidation,
		},
		{
			name: "reversed stops",
			mutate: func(r *CreateTicketRequest) {
				r.FromCity = "Ankara"
				r.ToCity = "İstanbul"
			},
			kind: apperr.KindValidation,
		},
		{
			name:   "seat beyond capacity",
			mutate: func(r *CreateTicketRequest) { r.SeatNumber = 5 },
			kind:   apperr.KindValidation,
		},
		{
			name: "segment closed for sale",
			mutate: func(r *CreateTicketRequest) {
				r.FromCity = "Bolu"
				r.ToCity = "Ankara"
			},
			kind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			routeRepo := new(MockRouteRepository)
			routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)

			req := validRequest(route.ID)
			tt.mutate(&req)

			svc := newTestService(repo, routeRepo, &fakeNotifier{})
			_, err := svc.Create(context.Background(), req, Issuer{Role: users.RoleCustomer})

			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.kind), "expected %s, got %v", tt.kind, err)
			repo.AssertNotCalled(t, "CreateWithSegmentLock", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateTicket_InactiveRoute(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	route := futureRoute()
	route.IsActive = false

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)

	svc := newTestService(repo, routeRepo, &fakeNotifier{})
	_, err := svc.Create(context.Background(), validRequest(route.ID), Issuer{Role: users.RoleCustomer})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateTicket_SalesCutoff(t *testing.T) {
	route := futureRoute()
	// Departure 10 minutes away, inside the 15 minute cutoff
	route.DepartureTime = time.Now().Add(10 * time.Minute)
	route.RouteStations = nil
	route.Prices = nil

	t.Run("customer blocked", func(t *testing.T) {
		repo := new(MockRepository)
		routeRepo := new(MockRouteRepository)
		routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)

		svc := newTestService(repo, routeRepo, &fakeNotifier{})
		_, err := svc.Create(context.Background(), validRequest(route.ID), Issuer{Role: users.RoleCustomer})

		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("agent bypasses cutoff", func(t *testing.T) {
		repo := new(MockRepository)
		routeRepo := new(MockRouteRepository)
		routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
		expectInsert(repo)

		agentID := uuid.New()
		svc := newTestService(repo, routeRepo, &fakeNotifier{})
		_, err := svc.Create(context.Background(), validRequest(route.ID), Issuer{UserID: &agentID, Role: users.RoleAgent})

		assert.NoError(t, err)
	})
}

func TestCreateTicket_ConflictFromRepository(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	route := futureRoute()

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
	repo.On("CreateWithSegmentLock", mock.Anything, mock.AnythingOfType("*tickets.Ticket")).
		Return(apperr.Conflict("seat 1 is already taken between the selected stops"))

	svc := newTestService(repo, routeRepo, &fakeNotifier{})
	_, err := svc.Create(context.Background(), validRequest(route.ID), Issuer{Role: users.RoleCustomer})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestConfirm(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	notifier := &fakeNotifier{}
	userID := uuid.New()
	ticket := &Ticket{
		ID:            uuid.New(),
		RouteID:       uuid.New(),
		PNRNumber:     "VV00AB12C",
		SeatNumber:    3,
		Status:        StatusReserved,
		PaymentStatus: PaymentPending,
		UserID:        &userID,
	}

	repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)
	repo.On("SaveStatus", mock.Anything, ticket, StatusReserved).Return(nil)

	svc := newTestService(repo, routeRepo, notifier)
	updated, err := svc.Confirm(context.Background(), ticket.ID, Issuer{UserID: &userID, Role: users.RoleCustomer})

	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, realtime.EventSeatConfirmed, notifier.lastEvent().EventType)
}

func TestConfirmLosesRaceToExpiry(t *testing.T) {
	repo := new(MockRepository)
	notifier := &fakeNotifier{}
	userID := uuid.New()
	ticket := &Ticket{
		ID:            uuid.New(),
		RouteID:       uuid.New(),
		PNRNumber:     "VV00ZZ99X",
		SeatNumber:    4,
		Status:        StatusReserved,
		PaymentStatus: PaymentPending,
		UserID:        &userID,
	}

	repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)
	// The expiry sweeper cancelled the reservation between the read and the
	// write, so the conditional update matches zero rows
	repo.On("SaveStatus", mock.Anything, ticket, StatusReserved).
		Return(apperr.Conflict("ticket %s is no longer %s", ticket.PNRNumber, StatusReserved))

	svc := newTestService(repo, new(MockRouteRepository), notifier)
	_, err := svc.Confirm(context.Background(), ticket.ID, Issuer{UserID: &userID, Role: users.RoleCustomer})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Nil(t, notifier.lastEvent())
}

func TestCancel(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	newTicket := func() *Ticket {
		return &Ticket{
			ID:            uuid.New(),
			RouteID:       uuid.New(),
			PNRNumber:     "VV00XY34Z",
			SeatNumber:    7,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentPaid,
			UserID:        &owner,
		}
	}

	t.Run("owner cancels, payment refunded", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := &fakeNotifier{}
		ticket := newTicket()
		repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)
		repo.On("SaveStatus", mock.Anything, ticket, StatusConfirmed).Return(nil)

		svc := newTestService(repo, new(MockRouteRepository), notifier)
		updated, err := svc.Cancel(context.Background(), ticket.ID, Issuer{UserID: &owner, Role: users.RoleCustomer})

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, updated.Status)
		assert.Equal(t, PaymentRefunded, updated.PaymentStatus)
		assert.NotNil(t, updated.CancelledAt)
		assert.Equal(t, realtime.EventSeatCancelled, notifier.lastEvent().EventType)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		ticket := newTicket()
		repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)

		svc := newTestService(repo, new(MockRouteRepository), &fakeNotifier{})
		_, err := svc.Cancel(context.Background(), ticket.ID, Issuer{UserID: &stranger, Role: users.RoleCustomer})

		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		repo.AssertNotCalled(t, "SaveStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("staff cancels any ticket", func(t *testing.T) {
		repo := new(MockRepository)
		ticket := newTicket()
		repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)
		repo.On("SaveStatus", mock.Anything, ticket, StatusConfirmed).Return(nil)

		agentID := uuid.New()
		svc := newTestService(repo, new(MockRouteRepository), &fakeNotifier{})
		_, err := svc.Cancel(context.Background(), ticket.ID, Issuer{UserID: &agentID, Role: users.RoleAgent})

		assert.NoError(t, err)
	})

	t.Run("cancelled ticket stays cancelled", func(t *testing.T) {
		repo := new(MockRepository)
		ticket := newTicket()
		ticket.Status = StatusCancelled
		repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)

		svc := newTestService(repo, new(MockRouteRepository), &fakeNotifier{})
		_, err := svc.Cancel(context.Background(), ticket.ID, Issuer{UserID: &owner, Role: users.RoleCustomer})

		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestSuspend(t *testing.T) {
	owner := uuid.New()
	ticket := &Ticket{
		ID:            uuid.New(),
		RouteID:       uuid.New(),
		PNRNumber:     "VV00QQ77A",
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		UserID:        &owner,
	}

	t.Run("customer forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)

		svc := newTestService(repo, new(MockRouteRepository), &fakeNotifier{})
		_, err := svc.Suspend(context.Background(), ticket.ID, Issuer{UserID: &owner, Role: users.RoleCustomer})

		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("staff suspends confirmed ticket", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := &fakeNotifier{}
		repo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)
		repo.On("SaveStatus", mock.Anything, ticket, StatusConfirmed).Return(nil)

		adminID := uuid.New()
		svc := newTestService(repo, new(MockRouteRepository), notifier)
		updated, err := svc.Suspend(context.Background(), ticket.ID, Issuer{UserID: &adminID, Role: users.RoleAdmin})

		require.NoError(t, err)
		assert.Equal(t, StatusSuspended, updated.Status)
		assert.NotNil(t, updated.SuspendedAt)
		assert.Equal(t, realtime.EventSeatSuspended, notifier.lastEvent().EventType)
	})
}

func TestAvailableSeats(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	route := futureRoute()

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
	repo.On("GetBlockingForRoute", mock.Anything, route.ID).Return([]Ticket{
		// Seat 1 held over the middle leg
		{SeatNumber: 1, Status: StatusConfirmed, FromStopIndex: 1, ToStopIndex: 2},
		// Seat 2 rides a leg that ends where the query starts
		{SeatNumber: 2, Status: StatusReserved, FromStopIndex: 0, ToStopIndex: 1},
		// Seat 3 suspended over the whole route
		{SeatNumber: 3, Status: StatusSuspended, FromStopIndex: 0, ToStopIndex: 3},
	}, nil)

	svc := newTestService(repo, routeRepo, &fakeNotifier{})
	availability, err := svc.AvailableSeats(context.Background(), route.ID, "İzmit", "Ankara")

	require.NoError(t, err)
	assert.Equal(t, 1, availability.FromStopIndex)
	assert.Equal(t, 3, availability.ToStopIndex)
	// Seat 1 overlaps, seat 3 suspended-blocks; seat 2 is adjacent and free
	assert.Equal(t, []int{2, 4}, availability.AvailableSeats)
	assert.Equal(t, 4, availability.SeatCount)
}

func TestAvailableSeats_UnknownCitiesFallBackToFullRoute(t *testing.T) {
	repo := new(MockRepository)
	routeRepo := new(MockRouteRepository)
	route := futureRoute()

	routeRepo.On("GetByID", mock.Anything, route.ID).Return(route, nil)
	repo.On("GetBlockingForRoute", mock.Anything, route.ID).Return([]Ticket{
		{SeatNumber: 4, Status: StatusConfirmed, FromStopIndex: 2, ToStopIndex: 3},
	}, nil)

	svc := newTestService(repo, routeRepo, &fakeNotifier{})
	availability, err := svc.AvailableSeats(context.Background(), route.ID, "Nowhere", "Elsewhere")

	require.NoError(t, err)
	assert.Equal(t, 0, availability.FromStopIndex)
	assert.Equal(t, 3, availability.ToStopIndex)
	assert.NotContains(t, availability.AvailableSeats, 4)
}

func TestExpireStaleReservations(t *testing.T) {
	repo := new(MockRepository)
	notifier := &fakeNotifier{}

	expired := []Ticket{
		{ID: uuid.New(), RouteID: uuid.New(), SeatNumber: 5, Status: StatusCancelled, PNRNumber: "VV00AA11B"},
		{ID: uuid.New(), RouteID: uuid.New(), SeatNumber: 6, Status: StatusCancelled, PNRNumber: "VV00BB22C"},
	}
	repo.On("ExpireReservedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return(expired, nil)

	svc := newTestService(repo, new(MockRouteRepository), notifier)
	count, err := svc.ExpireStaleReservations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, notifier.events, 2)
	for _, event := range notifier.events {
		assert.Equal(t, realtime.EventSeatAvailable, event.EventType)
	}
}
