package routerepo

import (
	"context"
	"errors"
	"fmt"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRouteRepository implements RouteRepository using GORM.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormRouteRepository creates a new GORM route repository.
func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new route with its waypoints.
func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update replaces the stored route when it still carries expectedVersion.
// Returns errs.ObjectNotFoundError for an unknown route and errs.VersionIsInvalidError
// when another writer stored a newer revision first.
func (r *GormRouteRepository) Update(ctx context.Context, aggregate *route.Route, expectedVersion int64) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.Version() <= expectedVersion {
		return errs.NewVersionIsInvalidErrorWithCause("route",
			fmt.Errorf("revision %d does not follow stored version %d", aggregate.Version(), expectedVersion))
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RouteDTO{}).
			Where("id = ? AND version = ?", dto.ID, expectedVersion).
			Select("*").
			Omit(clause.Associations).
			Updates(&dto)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missOrConflict(tx, aggregate.ID(), expectedVersion)
		}

		if err := tx.Where("route_id = ?", dto.ID).Delete(&WaypointDTO{}).Error; err != nil {
			return err
		}
		return tx.Create(&dto.Waypoints).Error
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a route with its waypoints in visit order.
func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	err := r.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence")
		}).
		First(&dto, "id = ?", id.Google()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormRouteRepository) missOrConflict(tx *gorm.DB, id kernel.UUID, expectedVersion int64) error {
	var stored int64
	err := tx.Model(&RouteDTO{}).Select("version").Where("id = ?", id.Google()).Scan(&stored).Error
	if err != nil {
		return err
	}
	if stored == 0 {
		return errs.NewObjectNotFoundError("route", id.String())
	}

	return errs.NewVersionIsInvalidErrorWithCause("route",
		fmt.Errorf("expected version %d, stored version is %d", expectedVersion, stored))
}
