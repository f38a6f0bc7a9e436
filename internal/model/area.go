package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Approval statuses for a submitted area.
const (
	ApprovalStatusPending  = "Pending"
	ApprovalStatusApproved = "Approved"
	ApprovalStatusRejected = "Rejected"
)

// Area represents a surveyed land parcel together with its owned children.
// Areas are immutable once submitted; all children cascade on delete.
type Area struct {
	ID           uint      `json:"area_id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	Name         string    `json:"area_name" gorm:"size:255;not null"`
	Region       string    `json:"region" gorm:"size:255"`
	Province     string    `json:"province" gorm:"size:255"`
	Organization string    `json:"organization" gorm:"size:255"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	User        User         `json:"-" gorm:"foreignKey:UserID"`
	Coordinates []Coordinate `json:"coordinates" gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE"`
	Images      []Image      `json:"images" gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE"`
	Topography  *Topography  `json:"topography,omitempty" gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE"`
	Farm        *Farm        `json:"farm,omitempty" gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE"`
	Approval    *Approval    `json:"approval,omitempty" gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE"`
}

// Coordinate is one GPS vertex of an area boundary.
type Coordinate struct {
	ID        uint    `json:"coordinate_id" gorm:"primaryKey"`
	AreaID    uint    `json:"area_id" gorm:"not null;index"`
	Latitude  float64 `json:"latitude" gorm:"not null"`
	Longitude float64 `json:"longitude" gorm:"not null"`
}

// Image records one stored photo of an area. Path is relative to the upload
// root and always server-generated.
type Image struct {
	ID     uint   `json:"image_id" gorm:"primaryKey"`
	AreaID uint   `json:"area_id" gorm:"not null;index"`
	Path   string `json:"path" gorm:"type:text;not null"`
	URL    string `json:"url,omitempty" gorm:"-"`
}

// Topography holds optional slope and elevation readings, one per area.
type Topography struct {
	ID           uint     `json:"topography_id" gorm:"primaryKey"`
	AreaID       uint     `json:"area_id" gorm:"not null;uniqueIndex"`
	Slope        *int     `json:"slope,omitempty"`
	MeanSeaLevel *float64 `json:"mean_sea_level,omitempty"`
}

// Farm holds soil and cultivation metadata, one per area.
type Farm struct {
	ID              uint            `json:"farm_id" gorm:"primaryKey"`
	AreaID          uint            `json:"area_id" gorm:"not null;uniqueIndex"`
	Soil            string          `json:"soil" gorm:"size:75"`
	SoilSuitability string          `json:"soil_suitability" gorm:"size:75"`
	Crop            string          `json:"crop" gorm:"size:50"`
	Hectares        decimal.Decimal `json:"hectares" gorm:"type:decimal(10,4);not null"`
	Status          string          `json:"status" gorm:"size:20;not null;default:'Inactive'"`
	SoilTypeID      *uint           `json:"soil_type_id,omitempty" gorm:"index"`

	// Relations
	SoilType       *SoilType       `json:"soil_type,omitempty" gorm:"foreignKey:SoilTypeID"`
	HarvestRecords []HarvestRecord `json:"harvest_records,omitempty" gorm:"foreignKey:FarmID;constraint:OnDelete:CASCADE"`
}

// Approval tracks moderation state for an area. A Pending row is staged in the
// same transaction as the area itself.
type Approval struct {
	ID        uint       `json:"approval_id" gorm:"primaryKey"`
	AreaID    uint       `json:"area_id" gorm:"not null;uniqueIndex"`
	UserID    *uint      `json:"moderator_id,omitempty"`
	Status    string     `json:"status" gorm:"size:20;not null;default:'Pending'"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

// HarvestRecord is one sow/harvest cycle on a farm.
type HarvestRecord struct {
	ID          uint      `json:"harvest_id" gorm:"primaryKey"`
	FarmID      uint      `json:"farm_id" gorm:"not null;index"`
	Crop        string    `json:"crop" gorm:"size:50;not null"`
	SowDate     time.Time `json:"sow_date" gorm:"not null"`
	HarvestDate time.Time `json:"harvest_date" gorm:"not null"`
}
