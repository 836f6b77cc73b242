package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viabus/internal/realtime"
	"viabus/internal/routes"
	"viabus/internal/shared/apperr"
	"viabus/internal/users"
	"viabus/pkg/logger"
)

const pnrMaxAttempts = 5

// Notifier fans seat lifecycle events out to live subscribers. Implemented
// by the realtime service; delivery is best effort and never fails a
// booking.
type Notifier interface {
	PublishSeatEvent(ctx context.Context, event realtime.SeatUpdateEvent)
}

// Issuer identifies who is performing a ticket operation.
type Issuer struct {
	UserID *uuid.UUID
	Role   users.Role
}

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest, issuer Issuer) (*Ticket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByPNR(ctx context.Context, pnr string) (*Ticket, error)
	Confirm(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error)
	Cancel(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error)
	Suspend(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error)
	AvailableSeats(ctx context.Context, routeID uuid.UUID, fromCity, toCity string) (*AvailabilityResponse, error)
	Search(ctx context.Context, query SearchTicketsQuery) ([]Ticket, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error)
	ExpireStaleReservations(ctx context.Context) (int, error)
}

type service struct {
	repo           Repository
	routeRepo      routes.Repository
	notifier       Notifier
	log            *logger.Logger
	salesCutoff    time.Duration
	reservationTTL time.Duration
}

func NewService(repo Repository, routeRepo routes.Repository, notifier Notifier, salesCutoff, reservationTTL time.Duration) Service {
	return &service{
		repo:           repo,
		routeRepo:      routeRepo,
		notifier:       notifier,
		log:            logger.GetDefault(),
		salesCutoff:    salesCutoff,
		reservationTTL: reservationTTL,
	}
}

// Create sells or reserves a seat on a stop range. Guards run in order:
// route live, stop names resolve, seat in range, boarding not past the
// sales cutoff, segment open for sale. The overlap check re-runs inside
// the insert transaction under a route lock, so passing here is advisory.
func (s *service) Create(ctx context.Context, req CreateTicketRequest, issuer Issuer) (*Ticket, error) {
	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		return nil, apperr.Validation("invalid route id")
	}

	route, err := s.routeRepo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !route.IsActive {
		return nil, apperr.Validation("route %s is not open for sale", routeID)
	}

	fromIndex, toIndex, resolved := route.ResolveSegment(req.FromCity, req.ToCity)
	if !resolved {
		return nil, apperr.Validation("stops %q and %q are not both on this route", req.FromCity, req.ToCity)
	}
	if fromIndex >= toIndex {
		return nil, apperr.Validation("boarding stop must come before the alighting stop")
	}

	capacity := route.SeatCount()
	if capacity == 0 {
		return nil, apperr.Internal(nil, "route %s has no bus assigned", routeID)
	}
	if req.SeatNumber > capacity {
		return nil, apperr.Validation("seat %d does not exist on this bus (capacity %d)", req.SeatNumber, capacity)
	}

	boarding := route.DepartureAtStop(fromIndex)
	if !issuer.Role.IsStaff() {
		if time.Now().After(boarding.Add(-s.salesCutoff)) {
			return nil, apperr.Validation("online sales for this departure are closed")
		}
	} else if time.Now().After(boarding) {
		return nil, apperr.Validation("this departure has already left %s", route.FullStops()[fromIndex])
	}

	price := route.Price
	if override := route.SegmentPriceFor(req.FromCity, req.ToCity); override != nil {
		if !override.IsSold {
			return nil, apperr.Validation("tickets between %s and %s are not sold on this route", req.FromCity, req.ToCity)
		}
		price = override.Price
	}

	ticket := &Ticket{
		RouteID:       routeID,
		SeatNumber:    req.SeatNumber,
		FromCity:      req.FromCity,
		ToCity:        req.ToCity,
		FromStopIndex: fromIndex,
		ToStopIndex:   toIndex,
		Price:         price,
		PassengerName: req.PassengerName,
		Gender:        req.Gender,
		NationalID:    req.NationalID,
		PhoneNumber:   req.PhoneNumber,
	}
	if issuer.Role.IsStaff() {
		// Counter sales are paid on the spot.
		ticket.Status = StatusConfirmed
		ticket.PaymentStatus = PaymentPaid
		ticket.IssuedByID = issuer.UserID
	} else {
		ticket.Status = StatusReserved
		ticket.PaymentStatus = PaymentPending
		ticket.UserID = issuer.UserID
	}

	for attempt := 0; attempt < pnrMaxAttempts; attempt++ {
		pnr, err := GeneratePNR()
		if err != nil {
			return nil, apperr.Internal(err, "could not generate booking reference")
		}
		ticket.PNRNumber = pnr

		err = s.repo.CreateWithSegmentLock(ctx, ticket)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if apperr.IsKind(err, apperr.KindConflict) {
			s.log.LogSeatConflict(ctx, routeID.String(), req.SeatNumber, fromIndex, toIndex)
		}
		return nil, err
	}
	if ticket.ID == uuid.Nil {
		return nil, apperr.Internal(nil, "could not allocate a unique booking reference")
	}

	s.log.LogTicketCreated(ctx, ticket.ID.String(), routeID.String(), ticket.PNRNumber, ticket.SeatNumber, ticket.Status.String())
	s.publish(ctx, ticket, eventForStatus(ticket.Status), map[string]interface{}{
		"fromCity": ticket.FromCity,
		"toCity":   ticket.ToCity,
		"gender":   ticket.Gender,
		"price":    ticket.Price,
	})
	return ticket, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByPNR(ctx context.Context, pnr string) (*Ticket, error) {
	return s.repo.GetByPNR(ctx, pnr)
}

// Confirm settles payment on a reservation.
func (s *service) Confirm(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ticket, issuer); err != nil {
		return nil, err
	}
	return s.transition(ctx, ticket, StatusConfirmed)
}

// Cancel releases the seat. Customers may only cancel their own tickets.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ticket, issuer); err != nil {
		return nil, err
	}
	return s.transition(ctx, ticket, StatusCancelled)
}

// Suspend parks a confirmed ticket without freeing the seat. Staff only;
// the router enforces the role, this just runs the state machine.
func (s *service) Suspend(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !issuer.Role.IsStaff() {
		return nil, apperr.Forbidden("only staff can suspend tickets")
	}
	return s.transition(ctx, ticket, StatusSuspended)
}

func (s *service) authorize(ticket *Ticket, issuer Issuer) error {
	if issuer.Role.IsStaff() {
		return nil
	}
	if ticket.UserID == nil || issuer.UserID == nil || *ticket.UserID != *issuer.UserID {
		return apperr.Forbidden("this ticket belongs to another passenger")
	}
	return nil
}

func (s *service) transition(ctx context.Context, ticket *Ticket, target Status) (*Ticket, error) {
	if !ticket.Status.CanTransitionTo(target) {
		return nil, apperr.Conflict("ticket %s cannot move from %s to %s", ticket.PNRNumber, ticket.Status, target)
	}

	from := ticket.Status
	now := time.Now()
	ticket.Status = target
	switch target {
	case StatusConfirmed:
		ticket.PaymentStatus = PaymentPaid
	case StatusCancelled:
		ticket.CancelledAt = &now
		if ticket.PaymentStatus == PaymentPaid {
			ticket.PaymentStatus = PaymentRefunded
		}
	case StatusSuspended:
		ticket.SuspendedAt = &now
	}

	if err := s.repo.SaveStatus(ctx, ticket, from); err != nil {
		return nil, err
	}

	s.log.LogTicketTransition(ctx, ticket.ID.String(), from.String(), target.String())
	s.publish(ctx, ticket, eventForStatus(target), nil)
	return ticket, nil
}

// AvailableSeats lists free seats for a stop range. Unknown city names fall
// back to the whole route, which can only under-report availability, never
// oversell.
func (s *service) AvailableSeats(ctx context.Context, routeID uuid.UUID, fromCity, toCity string) (*AvailabilityResponse, error) {
	route, err := s.routeRepo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	fromIndex, toIndex, resolved := route.ResolveSegment(fromCity, toCity)
	if resolved && fromIndex >= toIndex {
		return nil, apperr.Validation("boarding stop must come before the alighting stop")
	}

	tickets, err := s.repo.GetBlockingForRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	taken := make(map[int]bool)
	for i := range tickets {
		if tickets[i].Overlaps(fromIndex, toIndex) {
			taken[tickets[i].SeatNumber] = true
		}
	}

	capacity := route.SeatCount()
	available := make([]int, 0, capacity)
	for seat := 1; seat <= capacity; seat++ {
		if !taken[seat] {
			available = append(available, seat)
		}
	}

	return &AvailabilityResponse{
		RouteID:        routeID,
		FromCity:       fromCity,
		ToCity:         toCity,
		FromStopIndex:  fromIndex,
		ToStopIndex:    toIndex,
		SeatCount:      capacity,
		AvailableSeats: available,
	}, nil
}

func (s *service) Search(ctx context.Context, query SearchTicketsQuery) ([]Ticket, error) {
	if query.PNR == "" && query.PhoneNumber == "" && query.NationalID == "" {
		return nil, apperr.Validation("provide a PNR, phone number or national id to search")
	}
	return s.repo.Search(ctx, query)
}

func (s *service) GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	return s.repo.GetUserTickets(ctx, userID)
}

// ExpireStaleReservations cancels unpaid reservations older than the TTL
// and announces the freed seats. Driven by the background sweeper.
func (s *service) ExpireStaleReservations(ctx context.Context) (int, error) {
	deadline := time.Now().Add(-s.reservationTTL)
	expired, err := s.repo.ExpireReservedBefore(ctx, deadline)
	if err != nil {
		return 0, fmt.Errorf("failed to expire reservations: %w", err)
	}
	for i := range expired {
		s.publish(ctx, &expired[i], realtime.EventSeatAvailable, map[string]interface{}{
			"reason": "reservation_expired",
		})
	}
	return len(expired), nil
}

func (s *service) publish(ctx context.Context, ticket *Ticket, eventType realtime.EventType, metadata map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishSeatEvent(ctx, realtime.SeatUpdateEvent{
		RouteID:       ticket.RouteID,
		SeatNumber:    ticket.SeatNumber,
		EventType:     eventType,
		TicketID:      ticket.ID,
		PNR:           ticket.PNRNumber,
		FromStopIndex: ticket.FromStopIndex,
		ToStopIndex:   ticket.ToStopIndex,
		Timestamp:     time.Now().UTC(),
		Metadata:      metadata,
	})
}

func eventForStatus(status Status) realtime.EventType {
	switch status {
	case StatusConfirmed:
		return realtime.EventSeatConfirmed
	case StatusSuspended:
		return realtime.EventSeatSuspended
	case StatusCancelled:
		return realtime.EventSeatCancelled
	default:
		return realtime.EventSeatReserved
	}
}
