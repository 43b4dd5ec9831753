package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Plant is a shared species record in the catalogue.
type Plant struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ScientificName string `gorm:"type:varchar(255);not null;uniqueIndex"` // Binomial name.
	CommonName     string `gorm:"type:varchar(255)"`                      // Common name.
	PlantType      string `gorm:"type:varchar(100);index"`                // Houseplant, shrub, ...
	ImageURL       string `gorm:"type:varchar(500)"`                      // Reference image.
	Origin         string `gorm:"type:varchar(255)"`                      // Native range.
	Description    string `gorm:"type:text"`                              // Free-form description.

	PoisonousToHumans bool `gorm:"not null;default:false"` // Toxic to humans.
	PoisonousToPets   bool `gorm:"not null;default:false"` // Toxic to pets.
	Invasive          bool `gorm:"not null;default:false"` // Invasive species.
	Rare              bool `gorm:"not null;default:false"` // Rare species.
	Tropical          bool `gorm:"not null;default:false"` // Tropical species.
	Indoor            bool `gorm:"not null;default:false"` // Suitable indoors.
	Outdoor           bool `gorm:"not null;default:false"` // Suitable outdoors.

	DataSources datatypes.JSONSlice[string] `gorm:"type:jsonb"` // Ordered list of data sources.

	LastUpdated time.Time `gorm:"not null"` // Last catalogue update.
}

// DisplayName returns the common name, falling back to the scientific name.
func (p Plant) DisplayName() string {
	if p.CommonName != "" {
		return p.CommonName
	}
	return p.ScientificName
}

func (p Plant) String() string {
	return fmt.Sprintf("<Plant plant_id=%d name=%s>", p.ID, p.DisplayName())
}

// PlantCareDetails holds the care profile of a plant (one per plant by convention).
type PlantCareDetails struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PlantID uint64 `gorm:"not null;index"`                                 // Owning plant ID.
	Plant   *Plant `gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"` // Owning plant.

	WateringFrequency    string `gorm:"type:varchar(100)"` // Human readable frequency.
	WateringIntervalDays *int   `gorm:"type:integer"`      // Days between waterings.

	SunlightRequirements datatypes.JSONSlice[string] `gorm:"type:jsonb"`                     // Light conditions.
	SunlightDurationMin  *int                        `gorm:"type:integer"`                   // Minimum daily light.
	SunlightDurationMax  *int                        `gorm:"type:integer"`                   // Maximum daily light.
	SunlightDurationUnit string                      `gorm:"type:varchar(20);default:hours"` // Light duration unit.

	SoilPreferences     string                      `gorm:"type:text"`         // Soil notes.
	TemperatureRange    string                      `gorm:"type:varchar(100)"` // Preferred temperature range.
	FertilizingSchedule string                      `gorm:"type:text"`         // Fertilizing notes.
	PruningMonths       datatypes.JSONSlice[string] `gorm:"type:jsonb"`        // Months to prune.
	DifficultyLevel     string                      `gorm:"type:varchar(20)"`  // Easy, Moderate, ...
	GrowthRate          string                      `gorm:"type:varchar(20)"`  // Slow, Fast, ...
	PropagationMethods  datatypes.JSONSlice[string] `gorm:"type:jsonb"`        // Propagation methods.
	CompanionPlants     string                      `gorm:"type:text"`         // Companion planting notes.
}

// TableName overrides the default table name.
func (PlantCareDetails) TableName() string {
	return "plant_care_details"
}

func (d PlantCareDetails) String() string {
	return fmt.Sprintf("<PlantCareDetails care_id=%d plant_id=%d>", d.ID, d.PlantID)
}

// PlantHealthIssue is reference data describing a known problem of a species.
type PlantHealthIssue struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PlantID uint64 `gorm:"not null;index"`                                 // Affected plant ID.
	Plant   *Plant `gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"` // Affected plant.

	IssueName  string `gorm:"type:varchar(255);not null"` // Issue name.
	Symptoms   string `gorm:"type:text"`                  // Observable symptoms.
	Treatment  string `gorm:"type:text"`                  // Treatment notes.
	Prevention string `gorm:"type:text"`                  // Prevention notes.
	Severity   string `gorm:"type:varchar(50)"`           // Low, Medium, High.
}

func (i PlantHealthIssue) String() string {
	return fmt.Sprintf("<PlantHealthIssue issue_id=%d name=%s>", i.ID, i.IssueName)
}

// RelatedPlant links two plants. Storage order is irrelevant to callers.
type RelatedPlant struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PlantID1 uint64 `gorm:"column:plant_id_1;not null;index"`                // First plant ID.
	Plant1   *Plant `gorm:"foreignKey:PlantID1;constraint:OnDelete:CASCADE"` // First plant.
	PlantID2 uint64 `gorm:"column:plant_id_2;not null;index"`                // Second plant ID.
	Plant2   *Plant `gorm:"foreignKey:PlantID2;constraint:OnDelete:CASCADE"` // Second plant.

	RelationshipType string `gorm:"type:varchar(100)"` // Companion, same genus, ...
	Notes            string `gorm:"type:text"`         // Free-form notes.
}

func (r RelatedPlant) String() string {
	return fmt.Sprintf("<RelatedPlant related_id=%d type=%s>", r.ID, r.RelationshipType)
}
