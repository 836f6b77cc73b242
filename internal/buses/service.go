package buses

import (
	"context"

	"github.com/google/uuid"

	"viabus/internal/shared/apperr"
)

// CreateBusRequest represents the request body for registering a bus.
type CreateBusRequest struct {
	Plate     string `json:"plate" binding:"required,min=5,max=12"`
	Model     string `json:"model" binding:"omitempty,max=100"`
	SeatCount int    `json:"seatCount" binding:"required,min=1,max=90"`
}

type Service interface {
	Create(ctx context.Context, req CreateBusRequest) (*Bus, error)
	Get(ctx context.Context, id uuid.UUID) (*Bus, error)
	List(ctx context.Context) ([]Bus, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateBusRequest) (*Bus, error) {
	bus := &Bus{
		Plate:     req.Plate,
		Model:     req.Model,
		SeatCount: req.SeatCount,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, bus); err != nil {
		return nil, apperr.Internal(err, "failed to register bus")
	}
	return bus, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Bus, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Bus, error) {
	return s.repo.List(ctx)
}
