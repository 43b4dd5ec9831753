package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/datatypes"
)

// CareDetailsUpdate lists the care profile fields that may change.
type CareDetailsUpdate struct {
	WateringFrequency    *string
	WateringIntervalDays *int
	SunlightRequirements *[]string
	SunlightDurationMin  *int
	SunlightDurationMax  *int
	SunlightDurationUnit *string
	SoilPreferences      *string
	TemperatureRange     *string
	FertilizingSchedule  *string
	PruningMonths        *[]string
	DifficultyLevel      *string
	GrowthRate           *string
	PropagationMethods   *[]string
	CompanionPlants      *string
}

// CreatePlantCareDetails stores the care profile of a plant.
func (s *Store) CreatePlantCareDetails(ctx context.Context, details *models.PlantCareDetails) (*models.PlantCareDetails, error) {
	if details == nil {
		return nil, fmt.Errorf("store: create care details: details is nil")
	}
	if details.PlantID == 0 {
		return nil, fmt.Errorf("store: create care details: plant id is required")
	}
	if strings.TrimSpace(details.SunlightDurationUnit) == "" {
		details.SunlightDurationUnit = "hours"
	}
	details.SunlightRequirements = datatypes.JSONSlice[string](nonNilStrings(details.SunlightRequirements))
	details.PruningMonths = datatypes.JSONSlice[string](nonNilStrings(details.PruningMonths))
	details.PropagationMethods = datatypes.JSONSlice[string](nonNilStrings(details.PropagationMethods))
	if errCreate := s.db.WithContext(ctx).Create(details).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create care details: %w", errCreate)
	}
	return details, nil
}

// GetCareDetailsByPlantID returns the first care profile of a plant or nil.
func (s *Store) GetCareDetailsByPlantID(ctx context.Context, plantID uint64) (*models.PlantCareDetails, error) {
	var details models.PlantCareDetails
	errFind := s.db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("id ASC").
		First(&details).Error
	if errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get care details: %w", errFind)
	}
	return &details, nil
}

// UpdatePlantCareDetails applies upd to the care profile of plantID.
func (s *Store) UpdatePlantCareDetails(ctx context.Context, plantID uint64, upd CareDetailsUpdate) (*models.PlantCareDetails, error) {
	details, errGet := s.GetCareDetailsByPlantID(ctx, plantID)
	if errGet != nil || details == nil {
		return nil, errGet
	}

	updates := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setInt := func(column string, value *int) {
		if value != nil {
			updates[column] = *value
		}
	}
	setList := func(column string, value *[]string) {
		if value != nil {
			updates[column] = datatypes.JSONSlice[string](nonNilStrings(*value))
		}
	}
	setString("watering_frequency", upd.WateringFrequency)
	setInt("watering_interval_days", upd.WateringIntervalDays)
	setList("sunlight_requirements", upd.SunlightRequirements)
	setInt("sunlight_duration_min", upd.SunlightDurationMin)
	setInt("sunlight_duration_max", upd.SunlightDurationMax)
	setString("sunlight_duration_unit", upd.SunlightDurationUnit)
	setString("soil_preferences", upd.SoilPreferences)
	setString("temperature_range", upd.TemperatureRange)
	setString("fertilizing_schedule", upd.FertilizingSchedule)
	setList("pruning_months", upd.PruningMonths)
	setString("difficulty_level", upd.DifficultyLevel)
	setString("growth_rate", upd.GrowthRate)
	setList("propagation_methods", upd.PropagationMethods)
	setString("companion_plants", upd.CompanionPlants)
	if len(updates) == 0 {
		return details, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.PlantCareDetails{}).
		Where("id = ?", details.ID).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("store: update care details: %w", errUpdate)
	}
	return s.GetCareDetailsByPlantID(ctx, plantID)
}
