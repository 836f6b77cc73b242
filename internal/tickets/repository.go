package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"viabus/internal/shared/apperr"
)

type Repository interface {
	CreateWithSegmentLock(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByPNR(ctx context.Context, pnr string) (*Ticket, error)
	GetBlockingForRoute(ctx context.Context, routeID uuid.UUID) ([]Ticket, error)
	OccupiedSeatCount(ctx context.Context, routeID uuid.UUID, fromIndex, toIndex int) (int, error)
	SaveStatus(ctx context.Context, ticket *Ticket, from Status) error
	Search(ctx context.Context, query SearchTicketsQuery) ([]Ticket, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error)
	ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// withRowLock appends SELECT ... FOR UPDATE so the matched rows stay locked
// until the surrounding transaction commits.
func withRowLock(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreateWithSegmentLock inserts the ticket after re-checking segment overlap
// inside a transaction. The route row is locked FOR UPDATE first so that
// concurrent bookings on the same route serialize; without the lock two
// transactions could both pass the overlap count and insert conflicting
// tickets.
func (r *repository) CreateWithSegmentLock(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked struct {
			ID uuid.UUID
		}
		err := withRowLock(tx.Table("routes")).
			Select("id").
			Where("id = ?", ticket.RouteID).
			First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("route %s not found", ticket.RouteID)
			}
			return fmt.Errorf("failed to lock route: %w", err)
		}

		var conflicts int64
		err = tx.Model(&Ticket{}).
			Where("route_id = ? AND seat_number = ?", ticket.RouteID, ticket.SeatNumber).
			Where("status IN ?", []Status{StatusReserved, StatusConfirmed}).
			Where("from_stop_index < ? AND to_stop_index > ?", ticket.ToStopIndex, ticket.FromStopIndex).
			Count(&conflicts).Error
		if err != nil {
			return fmt.Errorf("failed to check seat conflicts: %w", err)
		}
		if conflicts > 0 {
			return apperr.Conflict("seat %d is already taken between the selected stops", ticket.SeatNumber)
		}

		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Preload("Route").
		Preload("Route.Bus").
		Preload("Route.RouteStations", func(db *gorm.DB) *gorm.DB {
			return db.Order("route_stations.stop_order ASC")
		}).
		First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ticket %s not found", id)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (r *repository) GetByPNR(ctx context.Context, pnr string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Preload("Route").
		Preload("Route.Bus").
		First(&ticket, "pnr_number = ?", pnr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ticket with PNR %s not found", pnr)
		}
		return nil, fmt.Errorf("failed to get ticket by PNR: %w", err)
	}
	return &ticket, nil
}

// GetBlockingForRoute returns every ticket that keeps a seat out of sale,
// including suspended holds.
func (r *repository) GetBlockingForRoute(ctx context.Context, routeID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Where("status IN ?", []Status{StatusReserved, StatusConfirmed, StatusSuspended}).
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for route: %w", err)
	}
	return tickets, nil
}

// OccupiedSeatCount counts distinct seats blocked on the given stop range.
// It backs the available-seat figure in route search results.
func (r *repository) OccupiedSeatCount(ctx context.Context, routeID uuid.UUID, fromIndex, toIndex int) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Ticket{}).
		Distinct("seat_number").
		Where("route_id = ?", routeID).
		Where("status IN ?", []Status{StatusReserved, StatusConfirmed, StatusSuspended}).
		Where("from_stop_index < ? AND to_stop_index > ?", toIndex, fromIndex).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied seats: %w", err)
	}
	return int(count), nil
}

// SaveStatus persists a lifecycle transition. The update is conditional on
// the status the caller read; if another transition (or the expiry sweeper)
// got there first, zero rows match and the caller's stale write is refused
// instead of silently overwriting the newer state.
func (r *repository) SaveStatus(ctx context.Context, ticket *Ticket, from Status) error {
	updates := map[string]interface{}{
		"status":         ticket.Status,
		"payment_status": ticket.PaymentStatus,
		"cancelled_at":   ticket.CancelledAt,
		"suspended_at":   ticket.SuspendedAt,
		"updated_at":     time.Now(),
	}
	result := r.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ? AND status = ?", ticket.ID, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("ticket %s is no longer %s", ticket.PNRNumber, from)
	}
	return nil
}

func (r *repository) Search(ctx context.Context, query SearchTicketsQuery) ([]Ticket, error) {
	db := r.db.WithContext(ctx).Preload("Route")
	if query.PNR != "" {
		db = db.Where("pnr_number = ?", query.PNR)
	}
	if query.PhoneNumber != "" {
		db = db.Where("phone_number = ?", query.PhoneNumber)
	}
	if query.NationalID != "" {
		db = db.Where("national_id = ?", query.NationalID)
	}

	var tickets []Ticket
	if err := db.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to search tickets: %w", err)
	}
	return tickets, nil
}

func (r *repository) GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Preload("Route").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user tickets: %w", err)
	}
	return tickets, nil
}

// ExpireReservedBefore cancels reservations created before the deadline and
// returns them so the caller can announce the freed seats.
func (r *repository) ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]Ticket, error) {
	var expired []Ticket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).
			Where("status = ?", StatusReserved).
			Where("created_at < ?", deadline).
			Find(&expired).Error; err != nil {
			return fmt.Errorf("failed to find expired reservations: %w", err)
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(expired))
		now := time.Now()
		for i := range expired {
			ids[i] = expired[i].ID
			expired[i].Status = StatusCancelled
			expired[i].CancelledAt = &now
		}
		return tx.Model(&Ticket{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": now,
				"updated_at":   now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
