package repository

import (
	"context"

	"gorm.io/gorm"

	"agrimap/internal/model"
)

// SoilTypeRepository defines soil lookup persistence operations.
type SoilTypeRepository interface {
	Upsert(ctx context.Context, st *model.SoilType) error
	FindByName(ctx context.Context, name string) (*model.SoilType, error)
	List(ctx context.Context) ([]model.SoilType, error)
}

type soilTypeRepository struct {
	db *gorm.DB
}

// NewSoilTypeRepository creates a new soil type repository.
func NewSoilTypeRepository(db *gorm.DB) SoilTypeRepository {
	return &soilTypeRepository{db: db}
}

// Upsert creates the soil type or refreshes its suitability by name.
func (r *soilTypeRepository) Upsert(ctx context.Context, st *model.SoilType) error {
	var existing model.SoilType
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", st.Name).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(st).Error
	}
	if err != nil {
		return err
	}
	existing.Suitability = st.Suitability
	return r.db.WithContext(ctx).Save(&existing).Error
}

// FindByName finds a soil type by name, case-insensitively.
func (r *soilTypeRepository) FindByName(ctx context.Context, name string) (*model.SoilType, error) {
	var st model.SoilType
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// List returns all soil types ordered by name.
func (r *soilTypeRepository) List(ctx context.Context) ([]model.SoilType, error) {
	var types []model.SoilType
	if err := r.db.WithContext(ctx).Order("name").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}
