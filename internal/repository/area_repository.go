package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"agrimap/internal/model"
)

// AreaRepository defines area aggregate persistence operations. The granular
// child creators exist so the submission workflow can stage rows one by one
// inside WithTransaction and abort as a unit.
type AreaRepository interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AreaRepository) error) error
	CreateArea(ctx context.Context, area *model.Area) error
	CreateCoordinate(ctx context.Context, c *model.Coordinate) error
	CreateImage(ctx context.Context, img *model.Image) error
	CreateTopography(ctx context.Context, t *model.Topography) error
	CreateFarm(ctx context.Context, f *model.Farm) error
	CreateApproval(ctx context.Context, a *model.Approval) error
	FindByID(ctx context.Context, id uint) (*model.Area, error)
	List(ctx context.Context, offset, limit int, search string) ([]model.Area, error)
}

type areaRepository struct {
	db *gorm.DB
}

// NewAreaRepository creates a new area repository.
func NewAreaRepository(db *gorm.DB) AreaRepository {
	return &areaRepository{db: db}
}

// WithTransaction executes fn within a database transaction; any error rolls
// back every row staged through the transactional repository.
func (r *areaRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AreaRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &areaRepository{db: tx})
	})
}

// CreateArea creates the parent area row.
func (r *areaRepository) CreateArea(ctx context.Context, area *model.Area) error {
	return r.db.WithContext(ctx).Create(area).Error
}

// CreateCoordinate stages one boundary coordinate.
func (r *areaRepository) CreateCoordinate(ctx context.Context, c *model.Coordinate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// CreateImage stages one image row.
func (r *areaRepository) CreateImage(ctx context.Context, img *model.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

// CreateTopography stages the topography row.
func (r *areaRepository) CreateTopography(ctx context.Context, t *model.Topography) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// CreateFarm stages the farm row.
func (r *areaRepository) CreateFarm(ctx context.Context, f *model.Farm) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// CreateApproval stages the approval row.
func (r *areaRepository) CreateApproval(ctx context.Context, a *model.Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// FindByID loads an area with all children eagerly joined.
func (r *areaRepository) FindByID(ctx context.Context, id uint) (*model.Area, error) {
	var area model.Area
	err := r.db.WithContext(ctx).
		Preload("Coordinates").
		Preload("Images").
		Preload("Topography").
		Preload("Farm").
		Preload("Farm.SoilType").
		Preload("Farm.HarvestRecords").
		Preload("Approval").
		Where("id = ?", id).
		First(&area).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

// List returns up to limit areas at the given offset, newest first with id as
// the tiebreaker so paging stays stable under concurrent inserts. Search, when
// present, matches name, region or province as a case-insensitive substring.
func (r *areaRepository) List(ctx context.Context, offset, limit int, search string) ([]model.Area, error) {
	q := r.db.WithContext(ctx).Model(&model.Area{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(region) LIKE ? OR LOWER(province) LIKE ?", like, like, like)
	}

	var areas []model.Area
	err := q.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Preload("Coordinates").
		Preload("Images").
		Find(&areas).Error
	if err != nil {
		return nil, err
	}
	return areas, nil
}
