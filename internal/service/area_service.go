package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"agrimap/internal/cache"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/media"
	"agrimap/internal/model"
	"agrimap/internal/repository"
)

const areaCacheTTL = 5 * time.Minute

// ChildPolicy controls how a failing child item affects the submission
// transaction.
type ChildPolicy int

const (
	// ChildRequired aborts the whole transaction when one item fails.
	ChildRequired ChildPolicy = iota
	// ChildBestEffort skips the failing item and keeps going.
	ChildBestEffort
)

// SubmitPolicy assigns a failure policy per child collection.
type SubmitPolicy struct {
	Coordinates ChildPolicy
	Photos      ChildPolicy
}

// DefaultSubmitPolicy matches the service contract: coordinates are mandatory
// and atomic, photos are best-effort.
func DefaultSubmitPolicy() SubmitPolicy {
	return SubmitPolicy{
		Coordinates: ChildRequired,
		Photos:      ChildBestEffort,
	}
}

// CoordinateInput is one parsed boundary vertex.
type CoordinateInput struct {
	Latitude  float64
	Longitude float64
}

// PhotoInput is one base64 image payload with its declared MIME type.
type PhotoInput struct {
	Payload  string
	MimeType string
}

// TopographyInput carries optional slope and elevation readings.
type TopographyInput struct {
	Slope        *int
	MeanSeaLevel *float64
}

// FarmInput carries optional soil and cultivation metadata.
type FarmInput struct {
	Soil            string
	SoilSuitability string
	Crop            string
	Hectares        decimal.Decimal
	Status          string
}

// SubmitInput is the validated submission payload.
type SubmitInput struct {
	OwnerID      uint
	Name         string
	Region       string
	Province     string
	Organization string
	Coordinates  []CoordinateInput
	Photos       []PhotoInput
	Topography   *TopographyInput
	Farm         *FarmInput
}

// ListResult is one page of areas.
type ListResult struct {
	Entries []model.Area `json:"entries"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	HasMore bool         `json:"has_more"`
}

// AreaService handles area submission and retrieval.
type AreaService interface {
	Submit(ctx context.Context, callerID uint, in SubmitInput, policy SubmitPolicy) (*model.Area, error)
	List(ctx context.Context, page, perPage int, search string) (*ListResult, error)
	Get(ctx context.Context, id uint) (*model.Area, error)
	SoilTypes(ctx context.Context) ([]model.SoilType, error)
}

type areaService struct {
	areas     repository.AreaRepository
	soilTypes repository.SoilTypeRepository
	media     *media.Store
	cache     *cache.Client
}

// NewAreaService creates a new area service.
func NewAreaService(
	areas repository.AreaRepository,
	soilTypes repository.SoilTypeRepository,
	mediaStore *media.Store,
	cache *cache.Client,
) AreaService {
	return &areaService{
		areas:     areas,
		soilTypes: soilTypes,
		media:     mediaStore,
		cache:     cache,
	}
}

func (s *areaService) cacheKey(id uint) string {
	return fmt.Sprintf("area:%d", id)
}

// Submit validates and persists a new area aggregate as one transaction. All
// validation runs before any row is staged; a failing Required child aborts
// everything, a failing BestEffort child is skipped. Photo files written
// before an abort are removed again.
func (s *areaService) Submit(ctx context.Context, callerID uint, in SubmitInput, policy SubmitPolicy) (*model.Area, error) {
	if in.OwnerID != callerID {
		return nil, apperrors.ErrOwnerMismatch
	}

	var fields []string
	if in.Name == "" {
		fields = append(fields, "area_name")
	}
	if len(in.Coordinates) == 0 {
		fields = append(fields, "coordinates")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields...)
	}

	var savedPaths []string
	area := &model.Area{
		UserID:       in.OwnerID,
		Name:         in.Name,
		Region:       in.Region,
		Province:     in.Province,
		Organization: in.Organization,
	}

	err := s.areas.WithTransaction(ctx, func(ctx context.Context, repo repository.AreaRepository) error {
		if err := repo.CreateArea(ctx, area); err != nil {
			return fmt.Errorf("create area: %w", err)
		}

		for _, c := range in.Coordinates {
			coord := &model.Coordinate{AreaID: area.ID, Latitude: c.Latitude, Longitude: c.Longitude}
			if err := repo.CreateCoordinate(ctx, coord); err != nil {
				if policy.Coordinates == ChildBestEffort {
					log.Printf("area %d: skipping coordinate: %v", area.ID, err)
					continue
				}
				return fmt.Errorf("create coordinate: %w", err)
			}
		}

		for i, p := range in.Photos {
			relPath, err := s.media.Save(in.Name, p.Payload, p.MimeType)
			if err != nil {
				if policy.Photos == ChildBestEffort {
					log.Printf("area %d: skipping photo %d: %v", area.ID, i, err)
					continue
				}
				return fmt.Errorf("store photo %d: %w", i, err)
			}
			savedPaths = append(savedPaths, relPath)
			if err := repo.CreateImage(ctx, &model.Image{AreaID: area.ID, Path: relPath}); err != nil {
				return fmt.Errorf("create image row: %w", err)
			}
		}

		if in.Topography != nil {
			topo := &model.Topography{
				AreaID:       area.ID,
				Slope:        in.Topography.Slope,
				MeanSeaLevel: in.Topography.MeanSeaLevel,
			}
			if err := repo.CreateTopography(ctx, topo); err != nil {
				return fmt.Errorf("create topography: %w", err)
			}
		}

		if in.Farm != nil {
			farm := &model.Farm{
				AreaID:          area.ID,
				Soil:            in.Farm.Soil,
				SoilSuitability: in.Farm.SoilSuitability,
				Crop:            in.Farm.Crop,
				Hectares:        in.Farm.Hectares,
				Status:          in.Farm.Status,
			}
			if farm.Status == "" {
				farm.Status = "Inactive"
			}
			if in.Farm.Soil != "" {
				if st, err := s.soilTypes.FindByName(ctx, in.Farm.Soil); err == nil {
					farm.SoilTypeID = &st.ID
				}
			}
			if err := repo.CreateFarm(ctx, farm); err != nil {
				return fmt.Errorf("create farm: %w", err)
			}
		}

		approval := &model.Approval{AreaID: area.ID, Status: model.ApprovalStatusPending}
		if err := repo.CreateApproval(ctx, approval); err != nil {
			return fmt.Errorf("create approval: %w", err)
		}

		return nil
	})
	if err != nil {
		for _, p := range savedPaths {
			if rmErr := s.media.Remove(p); rmErr != nil {
				log.Printf("cleanup of %s after rollback: %v", p, rmErr)
			}
		}
		return nil, err
	}

	full, err := s.areas.FindByID(ctx, area.ID)
	if err != nil {
		return nil, fmt.Errorf("reload area %d: %w", area.ID, err)
	}
	return full, nil
}

// List returns one page of areas. It fetches perPage+1 rows to derive has_more
// without a separate count query; the extra row is trimmed before returning.
func (s *areaService) List(ctx context.Context, page, perPage int, search string) (*ListResult, error) {
	var fields []string
	if page < 1 {
		fields = append(fields, "page")
	}
	if perPage < 1 {
		fields = append(fields, "per_page")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields...)
	}

	areas, err := s.areas.List(ctx, (page-1)*perPage, perPage+1, search)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}

	hasMore := len(areas) > perPage
	if hasMore {
		areas = areas[:perPage]
	}

	return &ListResult{
		Entries: areas,
		Page:    page,
		PerPage: perPage,
		HasMore: hasMore,
	}, nil
}

// Get retrieves an area aggregate by ID with caching. Aggregates are immutable
// once submitted, so cached entries never go stale.
func (s *areaService) Get(ctx context.Context, id uint) (*model.Area, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Area
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	area, err := s.areas.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrAreaNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(area); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, areaCacheTTL)
	}

	return area, nil
}

// SoilTypes lists the soil classification lookup table.
func (s *areaService) SoilTypes(ctx context.Context) ([]model.SoilType, error) {
	return s.soilTypes.List(ctx)
}
