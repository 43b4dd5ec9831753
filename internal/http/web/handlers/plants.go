package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
)

// relatedPlantItem is one row of the related plants list.
type relatedPlantItem struct {
	PlantID          uint64
	Name             string
	RelationshipType string
	Notes            string
}

// PlantHandler serves the public plant catalogue.
type PlantHandler struct {
	store *store.Store
}

// NewPlantHandler constructs a PlantHandler.
func NewPlantHandler(st *store.Store) *PlantHandler {
	return &PlantHandler{store: st}
}

// Browse lists all plants, or the ones whose names contain ?search=.
func (h *PlantHandler) Browse(c *gin.Context) {
	ctx := c.Request.Context()
	search := strings.TrimSpace(c.Query("search"))

	var (
		plants  []models.Plant
		errList error
	)
	if search != "" {
		plants, errList = h.store.SearchPlants(ctx, search)
	} else {
		plants, errList = h.store.ListPlants(ctx)
	}
	if errList != nil {
		ServerError(c, errList)
		return
	}

	Render(c, http.StatusOK, "browse_plants.html", gin.H{
		"Title":  "Browse plants",
		"Plants": plants,
		"Search": search,
	})
}

// Show renders a plant with its care profile, known issues, related plants
// and, for logged-in users, the care notes of their region.
func (h *PlantHandler) Show(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	ctx := c.Request.Context()

	plant, errPlant := h.store.GetPlantByID(ctx, id)
	if errPlant != nil {
		ServerError(c, errPlant)
		return
	}
	if plant == nil {
		NotFound(c)
		return
	}

	careDetails, errCare := h.store.GetCareDetailsByPlantID(ctx, id)
	if errCare != nil {
		ServerError(c, errCare)
		return
	}
	issues, errIssues := h.store.ListHealthIssuesByPlant(ctx, id)
	if errIssues != nil {
		ServerError(c, errIssues)
		return
	}
	related, errRelated := h.relatedPlants(c, id)
	if errRelated != nil {
		ServerError(c, errRelated)
		return
	}

	var (
		regionCare *models.PlantRegionCare
		isFavorite bool
	)
	if userID := session.Get(c).UserID(); userID != 0 {
		user, errUser := h.store.GetUserByID(ctx, userID)
		if errUser != nil {
			ServerError(c, errUser)
			return
		}
		if user != nil && user.RegionID != nil {
			var errRegion error
			regionCare, errRegion = h.store.GetPlantRegionCare(ctx, id, *user.RegionID)
			if errRegion != nil {
				ServerError(c, errRegion)
				return
			}
		}
		var errFavorite error
		isFavorite, errFavorite = h.store.IsFavorite(ctx, userID, id)
		if errFavorite != nil {
			ServerError(c, errFavorite)
			return
		}
	}

	Render(c, http.StatusOK, "plant_details.html", gin.H{
		"Title":         plant.DisplayName(),
		"Plant":         plant,
		"CareDetails":   careDetails,
		"HealthIssues":  issues,
		"RelatedPlants": related,
		"RegionCare":    regionCare,
		"IsFavorite":    isFavorite,
	})
}

func (h *PlantHandler) relatedPlants(c *gin.Context, plantID uint64) ([]relatedPlantItem, error) {
	ctx := c.Request.Context()
	views, errList := h.store.ListRelatedPlants(ctx, plantID)
	if errList != nil {
		return nil, errList
	}
	items := make([]relatedPlantItem, 0, len(views))
	for _, view := range views {
		other, errGet := h.store.GetPlantByID(ctx, view.PlantID)
		if errGet != nil {
			return nil, errGet
		}
		if other == nil {
			continue
		}
		items = append(items, relatedPlantItem{
			PlantID:          other.ID,
			Name:             other.DisplayName(),
			RelationshipType: view.RelationshipType,
			Notes:            view.Notes,
		})
	}
	return items, nil
}
