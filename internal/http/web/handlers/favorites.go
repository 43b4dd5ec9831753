package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
)

// FavoriteHandler manages the user's favorite plants.
type FavoriteHandler struct {
	store *store.Store
}

// NewFavoriteHandler constructs a FavoriteHandler.
func NewFavoriteHandler(st *store.Store) *FavoriteHandler {
	return &FavoriteHandler{store: st}
}

// List renders the user's favorites, newest first.
func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := requireUser(c, "view your favorites")
	if !ok {
		return
	}
	favorites, errList := h.store.ListUserFavorites(c.Request.Context(), userID)
	if errList != nil {
		ServerError(c, errList)
		return
	}
	Render(c, http.StatusOK, "favorites.html", gin.H{"Title": "Favorites", "Favorites": favorites})
}

// Add favorites a plant. Favoriting twice is a no-op.
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, ok := requireUser(c, "save favorites")
	if !ok {
		return
	}
	plant, okPlant := h.plant(c)
	if !okPlant {
		return
	}
	if _, errCreate := h.store.CreateUserFavorite(c.Request.Context(), userID, plant.ID); errCreate != nil {
		ServerError(c, errCreate)
		return
	}
	flashRedirect(c, fmt.Sprintf("%s added to your favorites!", plant.DisplayName()),
		localPath(c.PostForm("next"), fmt.Sprintf("/plant/%d", plant.ID)))
}

// Remove unfavorites a plant.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, ok := requireUser(c, "manage favorites")
	if !ok {
		return
	}
	plant, okPlant := h.plant(c)
	if !okPlant {
		return
	}
	if _, errDelete := h.store.DeleteUserFavorite(c.Request.Context(), userID, plant.ID); errDelete != nil {
		ServerError(c, errDelete)
		return
	}
	flashRedirect(c, fmt.Sprintf("%s removed from your favorites.", plant.DisplayName()),
		localPath(c.PostForm("next"), fmt.Sprintf("/plant/%d", plant.ID)))
}

func (h *FavoriteHandler) plant(c *gin.Context) (*models.Plant, bool) {
	id, ok := parseID(c.Param("plant_id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	plant, errGet := h.store.GetPlantByID(c.Request.Context(), id)
	if errGet != nil {
		ServerError(c, errGet)
		return nil, false
	}
	if plant == nil {
		NotFound(c)
		return nil, false
	}
	return plant, true
}
