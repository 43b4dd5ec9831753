package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

// PlantHandler manages admin CRUD endpoints for catalogue plants.
type PlantHandler struct {
	store *store.Store
}

// NewPlantHandler constructs a plant handler.
func NewPlantHandler(st *store.Store) *PlantHandler {
	return &PlantHandler{store: st}
}

// plantRequest captures the payload for creating or updating a plant.
// Nil fields are left unchanged on update.
type plantRequest struct {
	ScientificName    *string   `json:"scientific_name"`
	CommonName        *string   `json:"common_name"`
	PlantType         *string   `json:"plant_type"`
	ImageURL          *string   `json:"image_url"`
	Origin            *string   `json:"origin"`
	Description       *string   `json:"description"`
	PoisonousToHumans *bool     `json:"poisonous_to_humans"`
	PoisonousToPets   *bool     `json:"poisonous_to_pets"`
	Invasive          *bool     `json:"invasive"`
	Rare              *bool     `json:"rare"`
	Tropical          *bool     `json:"tropical"`
	Indoor            *bool     `json:"indoor"`
	Outdoor           *bool     `json:"outdoor"`
	DataSources       *[]string `json:"data_sources"`
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func boolValue(v *bool) bool {
	return v != nil && *v
}

// List returns catalogue plants, optionally filtered.
func (h *PlantHandler) List(c *gin.Context) {
	filter := store.PlantFilter{PlantType: strings.TrimSpace(c.Query("type"))}
	var ok bool
	if filter.Indoor, ok = parseBoolQuery(c, "indoor"); !ok {
		return
	}
	if filter.Outdoor, ok = parseBoolQuery(c, "outdoor"); !ok {
		return
	}
	if filter.Poisonous, ok = parseBoolQuery(c, "poisonous"); !ok {
		return
	}
	if filter.Tropical, ok = parseBoolQuery(c, "tropical"); !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		plants  []models.Plant
		errList error
	)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		plants, errList = h.store.SearchPlants(ctx, search)
	} else {
		plants, errList = h.store.FilterPlants(ctx, filter)
	}
	if errList != nil {
		log.WithError(errList).Error("admin: list plants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plants failed"})
		return
	}

	out := make([]gin.H, 0, len(plants))
	for _, plant := range plants {
		out = append(out, plantJSON(plant))
	}
	c.JSON(http.StatusOK, gin.H{"plants": out})
}

// Get returns a plant with its care profile.
func (h *PlantHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
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
	out := plantJSON(*plant)
	details, errCare := h.store.GetCareDetailsByPlantID(ctx, id)
	if errCare != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get care details failed"})
		return
	}
	if details != nil {
		out["care"] = careJSON(*details)
	}
	c.JSON(http.StatusOK, out)
}

// Create validates input and inserts a new plant.
func (h *PlantHandler) Create(c *gin.Context) {
	var body plantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	scientificName := stringValue(body.ScientificName)
	if scientificName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scientific_name is required"})
		return
	}

	ctx := c.Request.Context()
	existing, errGet := h.store.GetPlantByScientificName(ctx, scientificName)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plant failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "plant already exists", "id": existing.ID})
		return
	}

	plant := models.Plant{
		ScientificName:    scientificName,
		CommonName:        stringValue(body.CommonName),
		PlantType:         stringValue(body.PlantType),
		ImageURL:          stringValue(body.ImageURL),
		Origin:            stringValue(body.Origin),
		Description:       stringValue(body.Description),
		PoisonousToHumans: boolValue(body.PoisonousToHumans),
		PoisonousToPets:   boolValue(body.PoisonousToPets),
		Invasive:          boolValue(body.Invasive),
		Rare:              boolValue(body.Rare),
		Tropical:          boolValue(body.Tropical),
		Indoor:            boolValue(body.Indoor),
		Outdoor:           boolValue(body.Outdoor),
	}
	if body.DataSources != nil {
		plant.DataSources = *body.DataSources
	}
	created, errCreate := h.store.CreatePlant(ctx, &plant)
	if errCreate != nil {
		log.WithError(errCreate).Error("admin: create plant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plant failed"})
		return
	}
	c.JSON(http.StatusCreated, plantJSON(*created))
}

// Update applies the provided fields to a plant.
func (h *PlantHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body plantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ScientificName != nil && strings.TrimSpace(*body.ScientificName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scientific_name cannot be empty"})
		return
	}

	updated, errUpdate := h.store.UpdatePlant(c.Request.Context(), id, store.PlantUpdate{
		ScientificName:    body.ScientificName,
		CommonName:        body.CommonName,
		PlantType:         body.PlantType,
		ImageURL:          body.ImageURL,
		Origin:            body.Origin,
		Description:       body.Description,
		PoisonousToHumans: body.PoisonousToHumans,
		PoisonousToPets:   body.PoisonousToPets,
		Invasive:          body.Invasive,
		Rare:              body.Rare,
		Tropical:          body.Tropical,
		Indoor:            body.Indoor,
		Outdoor:           body.Outdoor,
		DataSources:       body.DataSources,
	})
	if errUpdate != nil {
		log.WithError(errUpdate).Error("admin: update plant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update plant failed"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
		return
	}
	c.JSON(http.StatusOK, plantJSON(*updated))
}

// Delete removes a plant and everything that references it.
func (h *PlantHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, errDelete := h.store.DeletePlant(c.Request.Context(), id)
	if errDelete != nil {
		log.WithError(errDelete).Error("admin: delete plant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete plant failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
