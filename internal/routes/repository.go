package routes

import (
	"context"
	"errors"
	"time"

	"viabus/internal/shared/apperr"
	"viabus/internal/shared/constants"
	"viabus/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RouteListQuery struct {
	Page       int
	Limit      int
	ActiveOnly bool
}

type Repository interface {
	Create(ctx context.Context, route *Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*Route, error)
	List(ctx context.Context, query RouteListQuery) ([]Route, int64, error)
	ListDepartingBetween(ctx context.Context, from, to time.Time) ([]Route, error)
	Update(ctx context.Context, route *Route) error
	ReplaceStations(ctx context.Context, routeID uuid.UUID, stations []RouteStation) error
	ReplacePrices(ctx context.Context, routeID uuid.UUID, prices []SegmentPrice) error
	HasLiveTickets(ctx context.Context, routeID uuid.UUID) (bool, error)
}

type repository struct {
	db       *gorm.DB
	cache    cache.Service
	cacheTTL time.Duration
}

// NewRepository creates the route repository. cacheService may be nil; the
// repository then reads straight from the database.
func NewRepository(db *gorm.DB, cacheService cache.Service, cacheTTL time.Duration) Repository {
	if cacheTTL <= 0 {
		cacheTTL = constants.TTL_ROUTE_DETAIL
	}
	return &repository{db: db, cache: cacheService, cacheTTL: cacheTTL}
}

func (r *repository) Create(ctx context.Context, route *Route) error {
	if err := r.db.WithContext(ctx).Create(route).Error; err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// GetByID loads a route with its stations (ordered), segment prices and bus.
// Stop sequences and price tables are read-mostly, so this is cache-aside.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	if r.cache == nil {
		return r.fetchByID(ctx, id)
	}

	var route Route
	err := r.cache.GetOrSet(ctx, constants.RouteDetailKey(id.String()), r.cacheTTL, func() (interface{}, error) {
		return r.fetchByID(ctx, id)
	}, &route)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) fetchByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	var route Route
	err := r.db.WithContext(ctx).
		Preload("Bus").
		Preload("RouteStations", func(db *gorm.DB) *gorm.DB {
			return db.Order("route_stations.stop_order ASC")
		}).
		Preload("Prices").
		Where("id = ?", id).
		First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("route %s not found", id)
		}
		return nil, err
	}
	return &route, nil
}

// routeListPage is the cached shape of one listing page.
type routeListPage struct {
	Routes []Route `json:"routes"`
	Total  int64   `json:"total"`
}

// List returns a page of routes. Pages are cached briefly; route writes
// invalidate every cached page.
func (r *repository) List(ctx context.Context, query RouteListQuery) ([]Route, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	if r.cache == nil {
		return r.fetchList(ctx, query)
	}

	var page routeListPage
	key := constants.RouteListKey(query.Page, query.Limit, query.ActiveOnly)
	err := r.cache.GetOrSet(ctx, key, constants.TTL_ROUTE_LIST, func() (interface{}, error) {
		routes, total, err := r.fetchList(ctx, query)
		if err != nil {
			return nil, err
		}
		return &routeListPage{Routes: routes, Total: total}, nil
	}, &page)
	if err != nil {
		return nil, 0, err
	}
	return page.Routes, page.Total, nil
}

func (r *repository) fetchList(ctx context.Context, query RouteListQuery) ([]Route, int64, error) {
	var routes []Route
	var totalCount int64

	baseQuery := r.db.WithContext(ctx).Model(&Route{})
	if query.ActiveOnly {
		baseQuery = baseQuery.Where("is_active = ?", true)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Bus").
		Preload("RouteStations", func(db *gorm.DB) *gorm.DB {
			return db.Order("route_stations.stop_order ASC")
		}).
		Preload("Prices").
		Order("departure_time ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&routes).Error

	return routes, totalCount, err
}

// ListDepartingBetween returns active routes whose origin departure falls in
// the window, fully preloaded. Used by route search; segment-level filtering
// happens in the service.
func (r *repository) ListDepartingBetween(ctx context.Context, from, to time.Time) ([]Route, error) {
	var routes []Route
	err := r.db.WithContext(ctx).
		Preload("Bus").
		Preload("RouteStations", func(db *gorm.DB) *gorm.DB {
			return db.Order("route_stations.stop_order ASC")
		}).
		Preload("Prices").
		Where("is_active = ?", true).
		Where("departure_time >= ? AND departure_time <= ?", from, to).
		Order("departure_time ASC").
		Find(&routes).Error
	return routes, err
}

func (r *repository) Update(ctx context.Context, route *Route) error {
	if err := r.db.WithContext(ctx).Save(route).Error; err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *repository) ReplaceStations(ctx context.Context, routeID uuid.UUID, stations []RouteStation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", routeID).Delete(&RouteStation{}).Error; err != nil {
			return err
		}
		if len(stations) == 0 {
			return nil
		}
		return tx.Create(&stations).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *repository) ReplacePrices(ctx context.Context, routeID uuid.UUID, prices []SegmentPrice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", routeID).Delete(&SegmentPrice{}).Error; err != nil {
			return err
		}
		if len(prices) == 0 {
			return nil
		}
		return tx.Create(&prices).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// HasLiveTickets reports whether any non-cancelled ticket references the
// route's stop indices. Queried via the raw tickets table to avoid a package
// cycle with the tickets feature.
func (r *repository) HasLiveTickets(ctx context.Context, routeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("tickets").
		Where("route_id = ?", routeID).
		Where("status <> ?", "CANCELLED").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	// Best effort: stale cache self-heals via TTL anyway.
	_ = r.cache.DeletePattern(ctx, constants.RouteInvalidationPattern())
}
