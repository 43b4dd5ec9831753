// Package web assembles the HTML routes of the application together with the
// JSON catalogue APIs.
package web

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/http/api/admin"
	"github.com/rootly-app/rootly/internal/http/api/front"
	"github.com/rootly-app/rootly/internal/http/web/handlers"
	"github.com/rootly-app/rootly/internal/http/web/templates"
	"github.com/rootly-app/rootly/internal/identify"
	"github.com/rootly-app/rootly/internal/ratelimit"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/rootly-app/rootly/internal/upload"
	"gorm.io/gorm"
)

// Deps are the components the routes are built from.
type Deps struct {
	DB       *gorm.DB
	Store    *store.Store
	Sessions session.Store
	Cookie   session.CookieOptions
	Limiter  *ratelimit.Manager // Optional; nil disables throttling.
	Saver    *upload.Saver
	Identify *identify.Service
	Admin    config.AdminConfig // Empty Emails disables the admin API.
}

// NewEngine builds a gin engine with the shared middleware and all routes.
func NewEngine(deps Deps) (*gin.Engine, error) {
	tmpl, errLoad := templates.Load()
	if errLoad != nil {
		return nil, errLoad
	}
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(requestLogger(), requestMetrics())
	if errRegister := RegisterRoutes(r, deps); errRegister != nil {
		return nil, errRegister
	}
	return r, nil
}

// RegisterRoutes registers the pages, the JSON APIs, health and metrics endpoints.
func RegisterRoutes(r *gin.Engine, deps Deps) error {
	if r == nil || deps.DB == nil || deps.Store == nil || deps.Sessions == nil || deps.Saver == nil {
		return fmt.Errorf("web: missing dependencies")
	}
	identifyService := deps.Identify
	if identifyService == nil {
		identifyService = &identify.Service{
			Store:      deps.Store,
			Identifier: identify.FirstPlantIdentifier{Store: deps.Store},
		}
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(upload.PublicPrefix, deps.Saver.Dir)

	api := r.Group("")
	api.Use(gin.Recovery())
	front.RegisterFrontRoutes(api, deps.Store)
	if len(deps.Admin.Emails) > 0 {
		admin.RegisterAdminRoutes(api, deps.Store, admin.Options{
			Secret: deps.Cookie.Secret,
			Admin:  deps.Admin,
		})
	}

	pages := r.Group("")
	pages.Use(session.Middleware(deps.Sessions, deps.Cookie), recovery())

	pageHandler := handlers.NewPageHandler(deps.Store)
	pages.GET("/", pageHandler.Home)
	pages.GET("/dashboard", pageHandler.Dashboard)

	authHandler := handlers.NewAuthHandler(deps.Store)
	pages.GET("/register", authHandler.RegisterForm)
	pages.POST("/register", throttle(deps.Limiter, ratelimit.ActionRegister, "register.html", "Register"), authHandler.Register)
	pages.GET("/login", authHandler.LoginForm)
	pages.POST("/login", throttle(deps.Limiter, ratelimit.ActionLogin, "login.html", "Log in"), authHandler.Login)
	pages.GET("/logout", authHandler.Logout)

	identifyHandler := handlers.NewIdentifyHandler(deps.Store, deps.Saver, identifyService)
	pages.GET("/identify", identifyHandler.Form)
	pages.POST("/identify", identifyHandler.Submit)
	pages.GET("/identifications", identifyHandler.History)
	pages.POST("/identifications/:id/add", identifyHandler.AddToCollection)

	plantHandler := handlers.NewPlantHandler(deps.Store)
	pages.GET("/browse-plants", plantHandler.Browse)
	pages.GET("/plant/:id", plantHandler.Show)

	favoriteHandler := handlers.NewFavoriteHandler(deps.Store)
	pages.GET("/favorites", favoriteHandler.List)
	pages.POST("/favorites/:plant_id", favoriteHandler.Add)
	pages.POST("/favorites/:plant_id/delete", favoriteHandler.Remove)

	userPlantHandler := handlers.NewUserPlantHandler(deps.Store, deps.Saver)
	pages.GET("/my-plants", userPlantHandler.List)
	pages.GET("/add-plant", userPlantHandler.NewForm)
	pages.POST("/add-plant", userPlantHandler.Create)
	pages.GET("/user-plant/:id", userPlantHandler.Show)
	pages.POST("/log-care", userPlantHandler.LogCare)
	pages.POST("/add-reminder", userPlantHandler.AddReminder)
	pages.POST("/reminders/:id/deactivate", userPlantHandler.DeactivateReminder)
	pages.POST("/add-health-assessment", userPlantHandler.AddHealthAssessment)
	pages.POST("/resolve-health-issue/:id", userPlantHandler.ResolveHealthAssessment)
	pages.GET("/edit-user-plant/:id", userPlantHandler.EditForm)
	pages.POST("/edit-user-plant/:id", userPlantHandler.Update)
	pages.POST("/delete-user-plant/:id", userPlantHandler.Delete)

	r.NoRoute(session.Middleware(deps.Sessions, deps.Cookie), handlers.NotFound)
	return nil
}
