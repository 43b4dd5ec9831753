// Package admin exposes the JSON API used to curate the plant catalogue.
package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/config"
	handlers "github.com/rootly-app/rootly/internal/http/api/admin/handlers"
	"github.com/rootly-app/rootly/internal/security"
	"github.com/rootly-app/rootly/internal/store"
)

// Options configures the admin routes.
type Options struct {
	Secret string             // Token signing key.
	Admin  config.AdminConfig // Admin emails and token lifetime.
	Now    func() time.Time   // Clock override for tests.
}

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r gin.IRouter, st *store.Store, opts Options) {
	if r == nil || st == nil {
		return
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(st, opts.Secret, opts.Admin, opts.Now)
	adminGroup.POST("/login", authHandler.Login)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(st, opts.Secret, opts.Admin))

	authed.GET("/me", authHandler.Me)

	plantHandler := handlers.NewPlantHandler(st)
	authed.GET("/plants", plantHandler.List)
	authed.POST("/plants", plantHandler.Create)
	authed.GET("/plants/:id", plantHandler.Get)
	authed.PUT("/plants/:id", plantHandler.Update)
	authed.DELETE("/plants/:id", plantHandler.Delete)

	careHandler := handlers.NewCareHandler(st)
	authed.PUT("/plants/:id/care", careHandler.Upsert)
	authed.POST("/plants/:id/health-issues", careHandler.CreateHealthIssue)
	authed.POST("/plants/:id/region-care", careHandler.CreateRegionCare)
	authed.POST("/plants/:id/related", careHandler.CreateRelated)

	regionHandler := handlers.NewRegionHandler(st)
	authed.GET("/regions", regionHandler.List)
	authed.POST("/regions", regionHandler.Create)

	userHandler := handlers.NewUserHandler(st)
	authed.GET("/users", userHandler.List)
	authed.DELETE("/users/:id", userHandler.Delete)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(st *store.Store, secret string, adminCfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, errFind := st.GetUserByID(c.Request.Context(), claims.UserID)
		if errFind != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		// Revoking an email in the config locks out tokens issued before.
		if !adminCfg.IsAdmin(user.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set(handlers.ContextAdminID, user.ID)
		c.Set(handlers.ContextAdminEmail, user.Email)
		c.Next()
	}
}
