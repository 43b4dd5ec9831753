package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/store"
)

// RegionFrontHandler serves the region list used by registration forms.
type RegionFrontHandler struct {
	store *store.Store
}

// NewRegionFrontHandler constructs a RegionFrontHandler.
func NewRegionFrontHandler(st *store.Store) *RegionFrontHandler {
	return &RegionFrontHandler{store: st}
}

// List returns every region.
func (h *RegionFrontHandler) List(c *gin.Context) {
	regions, errList := h.store.ListRegions(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list regions failed"})
		return
	}
	out := make([]gin.H, 0, len(regions))
	for _, region := range regions {
		out = append(out, gin.H{
			"id":             region.ID,
			"name":           region.Name,
			"climate_zone":   region.ClimateZone,
			"humidity_level": region.HumidityLevel,
		})
	}
	c.JSON(http.StatusOK, gin.H{"regions": out})
}
