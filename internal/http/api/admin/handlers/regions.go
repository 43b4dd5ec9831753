package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

// RegionHandler manages climate regions.
type RegionHandler struct {
	store *store.Store
}

// NewRegionHandler constructs a RegionHandler.
func NewRegionHandler(st *store.Store) *RegionHandler {
	return &RegionHandler{store: st}
}

// List returns every region.
func (h *RegionHandler) List(c *gin.Context) {
	regions, errList := h.store.ListRegions(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list regions failed"})
		return
	}
	out := make([]gin.H, 0, len(regions))
	for _, region := range regions {
		out = append(out, regionJSON(region))
	}
	c.JSON(http.StatusOK, gin.H{"regions": out})
}

type createRegionRequest struct {
	Name           string   `json:"name"`
	ClimateZone    string   `json:"climate_zone"`
	AvgTemperature *float64 `json:"avg_temperature"`
	HumidityLevel  string   `json:"humidity_level"`
}

// Create adds a region. Names are unique.
func (h *RegionHandler) Create(c *gin.Context) {
	var body createRegionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ctx := c.Request.Context()
	existing, errGet := h.store.GetRegionByName(ctx, name)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create region failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "region already exists", "id": existing.ID})
		return
	}

	region, errCreate := h.store.CreateRegion(ctx, &models.Region{
		Name:           name,
		ClimateZone:    strings.TrimSpace(body.ClimateZone),
		AvgTemperature: body.AvgTemperature,
		HumidityLevel:  strings.TrimSpace(body.HumidityLevel),
	})
	if errCreate != nil {
		log.WithError(errCreate).Error("admin: create region")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create region failed"})
		return
	}
	c.JSON(http.StatusCreated, regionJSON(*region))
}
