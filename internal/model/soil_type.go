package model

// SoilType is a lookup row for known soil classifications. Seeded by cmd/seed
// and referenced by Farm when the submitted soil name matches.
type SoilType struct {
	ID          uint   `json:"soil_type_id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;size:75;not null"`
	Suitability string `json:"suitability" gorm:"size:75"`
}
