// Package front exposes the read-only public catalogue API.
package front

import (
	"github.com/gin-gonic/gin"
	handlers "github.com/rootly-app/rootly/internal/http/api/front/handlers"
	"github.com/rootly-app/rootly/internal/store"
)

// RegisterFrontRoutes registers the public catalogue endpoints.
func RegisterFrontRoutes(r gin.IRouter, st *store.Store) {
	if r == nil || st == nil {
		return
	}
	frontGroup := r.Group("/v0/front")

	plantHandler := handlers.NewPlantFrontHandler(st)
	frontGroup.GET("/plants", plantHandler.List)
	frontGroup.GET("/plants/:id", plantHandler.Get)

	regionHandler := handlers.NewRegionFrontHandler(st)
	frontGroup.GET("/regions", regionHandler.List)
}
