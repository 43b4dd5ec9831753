package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	msgEmailTaken         = "An account with this email already exists."
	msgInvalidCredentials = "Invalid email or password."
	msgMissingFields      = "Username, email and password are required."
	msgLoggedOut          = "You have been logged out."
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	store *store.Store
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(st *store.Store) *AuthHandler {
	return &AuthHandler{store: st}
}

// RegisterForm renders the registration form with the region dropdown.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	h.renderRegister(c, http.StatusOK)
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int) {
	regions, errList := h.store.ListRegions(c.Request.Context())
	if errList != nil {
		ServerError(c, errList)
		return
	}
	Render(c, status, "register.html", gin.H{"Title": "Register", "Regions": regions})
}

// Register creates an account and logs the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if username == "" || email == "" || password == "" {
		flashRedirect(c, msgMissingFields, "/register")
		return
	}

	in := store.NewUser{Username: username, Email: email, Password: password}
	if regionID, ok := parseID(c.PostForm("region_id")); ok {
		region, errRegion := h.store.GetRegionByID(c.Request.Context(), regionID)
		if errRegion != nil {
			ServerError(c, errRegion)
			return
		}
		if region != nil {
			in.RegionID = &region.ID
		}
	}

	user, errCreate := h.store.CreateUser(c.Request.Context(), in)
	if errCreate != nil {
		if errors.Is(errCreate, store.ErrEmailTaken) {
			flashRedirect(c, msgEmailTaken, "/register")
			return
		}
		ServerError(c, errCreate)
		return
	}

	session.Get(c).Login(user.ID)
	log.WithField("user_id", user.ID).Info("user registered")
	flashRedirect(c, fmt.Sprintf("Account created for %s!", user.Username), "/dashboard")
}

// LoginForm renders the login form.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	Render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords produce the same message.
func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	user, errGet := h.store.GetUserByEmail(c.Request.Context(), email)
	if errGet != nil {
		ServerError(c, errGet)
		return
	}
	if user == nil || !user.CheckPassword(password) {
		session.Get(c).AddFlash(msgInvalidCredentials)
		Render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
		return
	}

	session.Get(c).Login(user.ID)
	flashRedirect(c, fmt.Sprintf("Welcome back, %s!", user.Username), "/dashboard")
}

// Logout clears the session user.
func (h *AuthHandler) Logout(c *gin.Context) {
	session.Get(c).Logout()
	flashRedirect(c, msgLoggedOut, "/")
}
