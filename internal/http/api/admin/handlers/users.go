package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// List returns every account without credentials.
func (h *UserHandler) List(c *gin.Context) {
	users, errList := h.store.ListUsers(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, user := range users {
		out = append(out, gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"region_id":  user.RegionID,
			"created_at": user.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Delete removes an account and everything it owns. Admins cannot delete
// themselves.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == c.GetUint64(ContextAdminID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the current admin"})
		return
	}
	deleted, errDelete := h.store.DeleteUser(c.Request.Context(), id)
	if errDelete != nil {
		log.WithError(errDelete).Error("admin: delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete user failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
