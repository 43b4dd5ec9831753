// Package handlers implements the catalogue admin JSON endpoints.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
)

// Context keys set by the admin auth middleware.
const (
	ContextAdminID    = "adminID"
	ContextAdminEmail = "adminEmail"
)

// parseIDParam reads a positive numeric path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// parseBoolQuery reads an optional boolean query parameter.
func parseBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	value, errParse := strconv.ParseBool(raw)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &value, true
}

func plantJSON(plant models.Plant) gin.H {
	return gin.H{
		"id":                  plant.ID,
		"scientific_name":     plant.ScientificName,
		"common_name":         plant.CommonName,
		"plant_type":          plant.PlantType,
		"image_url":           plant.ImageURL,
		"origin":              plant.Origin,
		"description":         plant.Description,
		"poisonous_to_humans": plant.PoisonousToHumans,
		"poisonous_to_pets":   plant.PoisonousToPets,
		"invasive":            plant.Invasive,
		"rare":                plant.Rare,
		"tropical":            plant.Tropical,
		"indoor":              plant.Indoor,
		"outdoor":             plant.Outdoor,
		"data_sources":        plant.DataSources,
		"last_updated":        plant.LastUpdated,
	}
}

func careJSON(details models.PlantCareDetails) gin.H {
	return gin.H{
		"id":                     details.ID,
		"plant_id":               details.PlantID,
		"watering_frequency":     details.WateringFrequency,
		"watering_interval_days": details.WateringIntervalDays,
		"sunlight_requirements":  details.SunlightRequirements,
		"sunlight_duration_min":  details.SunlightDurationMin,
		"sunlight_duration_max":  details.SunlightDurationMax,
		"sunlight_duration_unit": details.SunlightDurationUnit,
		"soil_preferences":       details.SoilPreferences,
		"temperature_range":      details.TemperatureRange,
		"fertilizing_schedule":   details.FertilizingSchedule,
		"pruning_months":         details.PruningMonths,
		"difficulty_level":       details.DifficultyLevel,
		"growth_rate":            details.GrowthRate,
		"propagation_methods":    details.PropagationMethods,
		"companion_plants":       details.CompanionPlants,
	}
}

func regionJSON(region models.Region) gin.H {
	return gin.H{
		"id":              region.ID,
		"name":            region.Name,
		"climate_zone":    region.ClimateZone,
		"avg_temperature": region.AvgTemperature,
		"humidity_level":  region.HumidityLevel,
	}
}
