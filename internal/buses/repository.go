package buses

import (
	"context"
	"errors"

	"viabus/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, bus *Bus) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bus, error)
	List(ctx context.Context) ([]Bus, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, bus *Bus) error {
	return r.db.WithContext(ctx).Create(bus).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Bus, error) {
	var bus Bus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("bus %s not found", id)
		}
		return nil, err
	}
	return &bus, nil
}

func (r *repository) List(ctx context.Context) ([]Bus, error) {
	var list []Bus
	err := r.db.WithContext(ctx).Order("plate ASC").Find(&list).Error
	return list, err
}
