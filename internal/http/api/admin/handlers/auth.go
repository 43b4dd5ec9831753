package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/security"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

// AuthHandler issues admin API tokens.
type AuthHandler struct {
	store  *store.Store       // User lookup.
	secret string             // Token signing key.
	admin  config.AdminConfig // Admin emails and token lifetime.
	now    func() time.Time   // Clock.
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(st *store.Store, secret string, adminCfg config.AdminConfig, now func() time.Time) *AuthHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthHandler{store: st, secret: secret, admin: adminCfg, now: now}
}

// loginRequest is the admin login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email or password"})
		return
	}

	user, errFind := h.store.GetUserByEmail(c.Request.Context(), email)
	if errFind != nil {
		log.WithError(errFind).Error("admin login: lookup user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if user == nil || !user.CheckPassword(body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !h.admin.IsAdmin(user.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not an admin"})
		return
	}

	now := h.now()
	token, errSign := security.SignAdminToken(h.secret, user.ID, user.Email, h.admin.TokenTTL, now)
	if errSign != nil {
		log.WithError(errSign).Error("admin login: sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	log.WithField("user_id", user.ID).Info("admin login")
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": now.Add(h.admin.TokenTTL).UTC(),
	})
}

// Me returns the authenticated admin.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":    c.GetUint64(ContextAdminID),
		"email": c.GetString(ContextAdminEmail),
	})
}
