package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// UserPlantStatus values accepted for UserPlant.Status.
const (
	UserPlantStatusActive    = "active"
	UserPlantStatusDormant   = "dormant"
	UserPlantStatusGivenAway = "given_away"
	UserPlantStatusDeceased  = "deceased"
)

// ValidUserPlantStatus reports whether status is one of the known values.
func ValidUserPlantStatus(status string) bool {
	switch status {
	case UserPlantStatusActive, UserPlantStatusDormant, UserPlantStatusGivenAway, UserPlantStatusDeceased:
		return true
	default:
		return false
	}
}

// UserPlant is a specific plant owned by a user.
type UserPlant struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID  uint64 `gorm:"not null;index"`                                 // Owner ID.
	User    *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`  // Owner.
	PlantID uint64 `gorm:"not null;index"`                                 // Species ID.
	Plant   *Plant `gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"` // Species.

	Nickname        string     `gorm:"type:varchar(100)"`               // Owner-given name.
	LocationInHome  string     `gorm:"type:varchar(100)"`               // Where the plant lives.
	AcquisitionDate *time.Time `gorm:"type:date"`                       // Day the plant was acquired.
	ImageURL        string     `gorm:"type:varchar(500)"`               // Uploaded photo URL.
	Notes           string     `gorm:"type:text"`                       // Free-form notes.
	Status          string     `gorm:"type:varchar(50);default:active"` // Lifecycle status.
}

func (p UserPlant) String() string {
	return fmt.Sprintf("<UserPlant user_plant_id=%d nickname=%s>", p.ID, p.Nickname)
}

// CareEvent is an immutable care log entry for a user plant.
type CareEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserPlantID uint64     `gorm:"not null;index"`                                       // Owning user plant ID.
	UserPlant   *UserPlant `gorm:"foreignKey:UserPlantID;constraint:OnDelete:CASCADE"` // Owning user plant.

	EventType string    `gorm:"type:varchar(50)"` // Watering, Fertilizing, ...
	Date      time.Time `gorm:"not null;index"`   // When the care happened.
	Notes     string    `gorm:"type:text"`        // Free-form notes.
}

func (e CareEvent) String() string {
	return fmt.Sprintf("<CareEvent event_id=%d type=%s>", e.ID, e.EventType)
}

// Reminder schedules a future care action for a user plant.
type Reminder struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserPlantID uint64     `gorm:"not null;index"`                                       // Owning user plant ID.
	UserPlant   *UserPlant `gorm:"foreignKey:UserPlantID;constraint:OnDelete:CASCADE"` // Owning user plant.

	ReminderType     string    `gorm:"type:varchar(50)"` // Watering, Fertilizing, ...
	Frequency        string    `gorm:"type:varchar(50)"` // Recurrence description.
	NextReminderDate time.Time `gorm:"not null;index"`   // Next due day (midnight UTC).
	IsActive         bool      `gorm:"not null"`         // Whether the reminder is live.
}

func (r Reminder) String() string {
	return fmt.Sprintf("<Reminder reminder_id=%d type=%s>", r.ID, r.ReminderType)
}

// HealthAssessment is a diagnostic record for a user plant.
type HealthAssessment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserPlantID uint64     `gorm:"not null;index"`                                       // Assessed user plant ID.
	UserPlant   *UserPlant `gorm:"foreignKey:UserPlantID;constraint:OnDelete:CASCADE"` // Assessed user plant.

	AssessmentDate           time.Time                   `gorm:"not null"`          // When the assessment was made.
	Symptoms                 datatypes.JSONSlice[string] `gorm:"type:jsonb"`        // Observed symptoms.
	Diagnosis                string                      `gorm:"type:varchar(255)"` // Diagnosis summary.
	TreatmentRecommendations string                      `gorm:"type:text"`         // Recommended treatment.
	ImageURL                 string                      `gorm:"type:varchar(500)"` // Uploaded photo URL.
	Resolved                 bool                        `gorm:"not null"`          // One-way resolved flag.
}

func (a HealthAssessment) String() string {
	return fmt.Sprintf("<HealthAssessment assessment_id=%d diagnosis=%s>", a.ID, a.Diagnosis)
}
