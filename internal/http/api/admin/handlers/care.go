package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

// CareHandler manages the reference data attached to a plant: its care
// profile, known health issues, regional care and relationships.
type CareHandler struct {
	store *store.Store
}

// NewCareHandler constructs a CareHandler.
func NewCareHandler(st *store.Store) *CareHandler {
	return &CareHandler{store: st}
}

// loadPlant resolves the :id plant, writing 400/404/500 when it cannot.
func (h *CareHandler) loadPlant(c *gin.Context) (*models.Plant, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	plant, errGet := h.store.GetPlantByID(c.Request.Context(), id)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get plant failed"})
		return nil, false
	}
	if plant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
		return nil, false
	}
	return plant, true
}

// careRequest carries care profile fields; nil fields are left unchanged.
type careRequest struct {
	WateringFrequency    *string   `json:"watering_frequency"`
	WateringIntervalDays *int      `json:"watering_interval_days"`
	SunlightRequirements *[]string `json:"sunlight_requirements"`
	SunlightDurationMin  *int      `json:"sunlight_duration_min"`
	SunlightDurationMax  *int      `json:"sunlight_duration_max"`
	SunlightDurationUnit *string   `json:"sunlight_duration_unit"`
	SoilPreferences      *string   `json:"soil_preferences"`
	TemperatureRange     *string   `json:"temperature_range"`
	FertilizingSchedule  *string   `json:"fertilizing_schedule"`
	PruningMonths        *[]string `json:"pruning_months"`
	DifficultyLevel      *string   `json:"difficulty_level"`
	GrowthRate           *string   `json:"growth_rate"`
	PropagationMethods   *[]string `json:"propagation_methods"`
	CompanionPlants      *string   `json:"companion_plants"`
}

func listValue(v *[]string) []string {
	if v == nil {
		return nil
	}
	return *v
}

// Upsert creates the care profile of a plant or updates the existing one.
func (h *CareHandler) Upsert(c *gin.Context) {
	plant, ok := h.loadPlant(c)
	if !ok {
		return
	}
	var body careRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.WateringIntervalDays != nil && *body.WateringIntervalDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "watering_interval_days must be positive"})
		return
	}

	ctx := c.Request.Context()
	existing, errGet := h.store.GetCareDetailsByPlantID(ctx, plant.ID)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get care details failed"})
		return
	}

	if existing == nil {
		details := models.PlantCareDetails{
			PlantID:              plant.ID,
			WateringFrequency:    stringValue(body.WateringFrequency),
			WateringIntervalDays: body.WateringIntervalDays,
			SunlightRequirements: listValue(body.SunlightRequirements),
			SunlightDurationMin:  body.SunlightDurationMin,
			SunlightDurationMax:  body.SunlightDurationMax,
			SunlightDurationUnit: stringValue(body.SunlightDurationUnit),
			SoilPreferences:      stringValue(body.SoilPreferences),
			TemperatureRange:     stringValue(body.TemperatureRange),
			FertilizingSchedule:  stringValue(body.FertilizingSchedule),
			PruningMonths:        listValue(body.PruningMonths),
			DifficultyLevel:      stringValue(body.DifficultyLevel),
			GrowthRate:           stringValue(body.GrowthRate),
			PropagationMethods:   listValue(body.PropagationMethods),
			CompanionPlants:      stringValue(body.CompanionPlants),
		}
		created, errCreate := h.store.CreatePlantCareDetails(ctx, &details)
		if errCreate != nil {
			log.WithError(errCreate).Error("admin: create care details")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create care details failed"})
			return
		}
		c.JSON(http.StatusCreated, careJSON(*created))
		return
	}

	updated, errUpdate := h.store.UpdatePlantCareDetails(ctx, plant.ID, store.CareDetailsUpdate{
		WateringFrequency:    body.WateringFrequency,
		WateringIntervalDays: body.WateringIntervalDays,
		SunlightRequirements: body.SunlightRequirements,
		SunlightDurationMin:  body.SunlightDurationMin,
		SunlightDurationMax:  body.SunlightDurationMax,
		SunlightDurationUnit: body.SunlightDurationUnit,
		SoilPreferences:      body.SoilPreferences,
		TemperatureRange:     body.TemperatureRange,
		FertilizingSchedule:  body.FertilizingSchedule,
		PruningMonths:        body.PruningMonths,
		DifficultyLevel:      body.DifficultyLevel,
		GrowthRate:           body.GrowthRate,
		PropagationMethods:   body.PropagationMethods,
		CompanionPlants:      body.CompanionPlants,
	})
	if errUpdate != nil || updated == nil {
		log.WithError(errUpdate).Error("admin: update care details")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update care details failed"})
		return
	}
	c.JSON(http.StatusOK, careJSON(*updated))
}

// healthIssueRequest is the payload for a known health issue.
type healthIssueRequest struct {
	IssueName  string `json:"issue_name"`
	Symptoms   string `json:"symptoms"`
	Treatment  string `json:"treatment"`
	Prevention string `json:"prevention"`
	Severity   string `json:"severity"`
}

// CreateHealthIssue records a known problem of a plant.
func (h *CareHandler) CreateHealthIssue(c *gin.Context) {
	plant, ok := h.loadPlant(c)
	if !ok {
		return
	}
	var body healthIssueRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.IssueName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_name is required"})
		return
	}

	issue, errCreate := h.store.CreatePlantHealthIssue(c.Request.Context(), &models.PlantHealthIssue{
		PlantID:    plant.ID,
		IssueName:  body.IssueName,
		Symptoms:   strings.TrimSpace(body.Symptoms),
		Treatment:  strings.TrimSpace(body.Treatment),
		Prevention: strings.TrimSpace(body.Prevention),
		Severity:   strings.TrimSpace(body.Severity),
	})
	if errCreate != nil {
		log.WithError(errCreate).Error("admin: create health issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create health issue failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         issue.ID,
		"plant_id":   issue.PlantID,
		"issue_name": issue.IssueName,
		"symptoms":   issue.Symptoms,
		"treatment":  issue.Treatment,
		"prevention": issue.Prevention,
		"severity":   issue.Severity,
	})
}

// regionCareRequest is the payload for regional care of a plant.
type regionCareRequest struct {
	RegionID            uint64 `json:"region_id"`
	WateringFrequency   string `json:"watering_frequency"`
	SunlightAdjustments string `json:"sunlight_adjustments"`
	SeasonalNotes       string `json:"seasonal_notes"`
}

// CreateRegionCare records how a plant's care changes in a region.
func (h *CareHandler) CreateRegionCare(c *gin.Context) {
	plant, ok := h.loadPlant(c)
	if !ok {
		return
	}
	var body regionCareRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	region, errRegion := h.store.GetRegionByID(ctx, body.RegionID)
	if errRegion != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get region failed"})
		return
	}
	if region == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region_id"})
		return
	}
	existing, errExisting := h.store.GetPlantRegionCare(ctx, plant.ID, region.ID)
	if errExisting != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get region care failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "region care already exists", "id": existing.ID})
		return
	}

	care, errCreate := h.store.CreatePlantRegionCare(ctx, &models.PlantRegionCare{
		PlantID:             plant.ID,
		RegionID:            region.ID,
		WateringFrequency:   strings.TrimSpace(body.WateringFrequency),
		SunlightAdjustments: strings.TrimSpace(body.SunlightAdjustments),
		SeasonalNotes:       strings.TrimSpace(body.SeasonalNotes),
	})
	if errCreate != nil {
		log.WithError(errCreate).Error("admin: create region care")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create region care failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":                   care.ID,
		"plant_id":             care.PlantID,
		"region_id":            care.RegionID,
		"watering_frequency":   care.WateringFrequency,
		"sunlight_adjustments": care.SunlightAdjustments,
		"seasonal_notes":       care.SeasonalNotes,
	})
}

// relatedRequest links the :id plant to another plant.
type relatedRequest struct {
	RelatedPlantID   uint64 `json:"related_plant_id"`
	RelationshipType string `json:"relationship_type"`
	Notes            string `json:"notes"`
}

// CreateRelated links two plants. Linking an already related pair returns
// the existing relationship.
func (h *CareHandler) CreateRelated(c *gin.Context) {
	plant, ok := h.loadPlant(c)
	if !ok {
		return
	}
	var body relatedRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.RelatedPlantID == plant.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a plant cannot relate to itself"})
		return
	}

	ctx := c.Request.Context()
	other, errOther := h.store.GetPlantByID(ctx, body.RelatedPlantID)
	if errOther != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get plant failed"})
		return
	}
	if other == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown related_plant_id"})
		return
	}

	related, errCreate := h.store.CreateRelatedPlants(ctx, plant.ID, other.ID, body.RelationshipType, strings.TrimSpace(body.Notes))
	if errCreate != nil {
		log.WithError(errCreate).Error("admin: create related plants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create related plants failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                related.ID,
		"plant_id_1":        related.PlantID1,
		"plant_id_2":        related.PlantID2,
		"relationship_type": related.RelationshipType,
		"notes":             related.Notes,
	})
}
