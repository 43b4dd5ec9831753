package models

import (
	"fmt"
	"time"
)

// Region is a geographic/climate grouping used for care adjustments.
type Region struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name           string   `gorm:"type:varchar(100);not null"` // Display name.
	ClimateZone    string   `gorm:"type:varchar(50)"`           // Hardiness zone range.
	AvgTemperature *float64 `gorm:"type:real"`                  // Average temperature (F).
	HumidityLevel  string   `gorm:"type:varchar(50)"`           // Low, Moderate, High.
}

func (r Region) String() string {
	return fmt.Sprintf("<Region region_id=%d name=%s>", r.ID, r.Name)
}

// PlantRegionCare holds region-specific care adjustments for a plant.
type PlantRegionCare struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PlantID  uint64  `gorm:"not null;index"`                                  // Plant ID.
	Plant    *Plant  `gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"`  // Plant.
	RegionID uint64  `gorm:"not null;index"`                                  // Region ID.
	Region   *Region `gorm:"foreignKey:RegionID;constraint:OnDelete:CASCADE"` // Region.

	WateringFrequency   string `gorm:"type:varchar(100)"` // Regional watering frequency.
	SunlightAdjustments string `gorm:"type:text"`         // Light adjustments.
	SeasonalNotes       string `gorm:"type:text"`         // Seasonal notes.
}

// TableName overrides the default table name.
func (PlantRegionCare) TableName() string {
	return "plant_region_care"
}

func (c PlantRegionCare) String() string {
	return fmt.Sprintf("<PlantRegionCare id=%d plant_id=%d>", c.ID, c.PlantID)
}

// UserFavorite marks a catalogue plant as a user's favorite.
type UserFavorite struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID  uint64 `gorm:"not null;uniqueIndex:idx_user_favorites_user_plant"`       // User ID.
	User    *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`            // User.
	PlantID uint64 `gorm:"not null;uniqueIndex:idx_user_favorites_user_plant;index"` // Plant ID.
	Plant   *Plant `gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"`           // Plant.

	FavoritedAt time.Time `gorm:"not null"` // When the plant was favorited.
}

func (f UserFavorite) String() string {
	return fmt.Sprintf("<UserFavorite favorite_id=%d user_id=%d>", f.ID, f.UserID)
}

// IdentificationHistory records a photo identification attempt.
type IdentificationHistory struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID            uint64     `gorm:"not null;index"`                                           // Requesting user ID.
	User              *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`            // Requesting user.
	UserPlantID       *uint64    `gorm:"index"`                                                    // Resulting user plant ID.
	UserPlant         *UserPlant `gorm:"foreignKey:UserPlantID;constraint:OnDelete:SET NULL"`      // Resulting user plant.
	IdentifiedPlantID uint64     `gorm:"not null;index"`                                           // Matched plant ID.
	IdentifiedPlant   *Plant     `gorm:"foreignKey:IdentifiedPlantID;constraint:OnDelete:CASCADE"` // Matched plant.

	ImageURL          string    `gorm:"type:varchar(500)"` // Uploaded photo URL.
	ConfidenceScore   float64   `gorm:"type:real"`         // Match confidence in [0,1].
	IdentifiedAt      time.Time `gorm:"not null;index"`    // When the identification ran.
	AddedToCollection bool      `gorm:"not null"`          // Whether it became a user plant.
}

// TableName overrides the default table name.
func (IdentificationHistory) TableName() string {
	return "identification_history"
}

func (h IdentificationHistory) String() string {
	return fmt.Sprintf("<IdentificationHistory id=%d user_id=%d>", h.ID, h.UserID)
}
