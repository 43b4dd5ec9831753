// Package handlers implements the public catalogue JSON endpoints.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

// PlantFrontHandler serves the public plant catalogue.
type PlantFrontHandler struct {
	store *store.Store
}

// NewPlantFrontHandler constructs a PlantFrontHandler.
func NewPlantFrontHandler(st *store.Store) *PlantFrontHandler {
	return &PlantFrontHandler{store: st}
}

func plantSummary(plant models.Plant) gin.H {
	return gin.H{
		"id":                  plant.ID,
		"scientific_name":     plant.ScientificName,
		"common_name":         plant.CommonName,
		"plant_type":          plant.PlantType,
		"image_url":           plant.ImageURL,
		"poisonous_to_humans": plant.PoisonousToHumans,
		"poisonous_to_pets":   plant.PoisonousToPets,
		"indoor":              plant.Indoor,
		"outdoor":             plant.Outdoor,
	}
}

// List returns the catalogue, or the plants matching ?search=.
func (h *PlantFrontHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		plants  []models.Plant
		errList error
	)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		plants, errList = h.store.SearchPlants(ctx, search)
	} else {
		plants, errList = h.store.ListPlants(ctx)
	}
	if errList != nil {
		log.WithError(errList).Error("front: list plants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plants failed"})
		return
	}

	out := make([]gin.H, 0, len(plants))
	for _, plant := range plants {
		out = append(out, plantSummary(plant))
	}
	c.JSON(http.StatusOK, gin.H{"plants": out})
}

// Get returns a plant with its care profile, known issues and related plants.
func (h *PlantFrontHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx := c.Request.Context()
	plant, errGet := h.store.GetPlantByID(ctx, id)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get plant failed"})
		return
	}
	if plant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
		return
	}

	out := plantSummary(*plant)
	out["origin"] = plant.Origin
	out["description"] = plant.Description
	out["tropical"] = plant.Tropical
	out["invasive"] = plant.Invasive
	out["rare"] = plant.Rare

	details, errCare := h.store.GetCareDetailsByPlantID(ctx, id)
	if errCare != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get care details failed"})
		return
	}
	if details != nil {
		out["care"] = gin.H{
			"watering_frequency":     details.WateringFrequency,
			"watering_interval_days": details.WateringIntervalDays,
			"sunlight_requirements":  details.SunlightRequirements,
			"soil_preferences":       details.SoilPreferences,
			"temperature_range":      details.TemperatureRange,
			"difficulty_level":       details.DifficultyLevel,
			"growth_rate":            details.GrowthRate,
		}
	}

	issues, errIssues := h.store.ListHealthIssuesByPlant(ctx, id)
	if errIssues != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list health issues failed"})
		return
	}
	issueOut := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		issueOut = append(issueOut, gin.H{
			"issue_name": issue.IssueName,
			"symptoms":   issue.Symptoms,
			"treatment":  issue.Treatment,
			"severity":   issue.Severity,
		})
	}
	out["health_issues"] = issueOut

	related, errRelated := h.store.ListRelatedPlants(ctx, id)
	if errRelated != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list related plants failed"})
		return
	}
	relatedOut := make([]gin.H, 0, len(related))
	for _, rel := range related {
		relatedOut = append(relatedOut, gin.H{
			"plant_id":          rel.PlantID,
			"relationship_type": rel.RelationshipType,
			"notes":             rel.Notes,
		})
	}
	out["related_plants"] = relatedOut

	c.JSON(http.StatusOK, out)
}
