// Package handlers implements the HTML pages of the web interface.
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/rootly-app/rootly/internal/upload"
	log "github.com/sirupsen/logrus"
)

const (
	msgNoPlantAccess      = "You do not have access to this plant."
	msgNoAssessmentAccess = "You do not have access to this assessment."
	msgImageSkipped       = "Image skipped: allowed file types are png, jpg, jpeg, gif."
)

// Render writes the named page with the session flashes and login state
// merged into data. Flashes are consumed before the response is written.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := session.Get(c)
	data["Flashes"] = sess.Flashes()
	data["LoggedIn"] = sess.UserID() != 0
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	c.HTML(status, name, data)
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "404.html", gin.H{"Title": "Not found"})
}

// ServerError logs err and renders the 500 page.
func ServerError(c *gin.Context, err error) {
	if err != nil {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	Render(c, http.StatusInternalServerError, "500.html", gin.H{"Title": "Error"})
	c.Abort()
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func flashRedirect(c *gin.Context, message, location string) {
	session.Get(c).AddFlash(message)
	redirect(c, location)
}

// requireUser returns the logged-in user id, or flashes a login prompt for
// action and redirects to the login page.
func requireUser(c *gin.Context, action string) (uint64, bool) {
	if userID := session.Get(c).UserID(); userID != 0 {
		return userID, true
	}
	flashRedirect(c, "Please log in to "+action+".", "/login")
	return 0, false
}

func parseID(raw string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ownedUserPlant loads user plant id and checks it belongs to userID. On
// failure the response has been written and ok is false.
func ownedUserPlant(c *gin.Context, st *store.Store, userID, id uint64) (*models.UserPlant, bool) {
	userPlant, errGet := st.GetUserPlantByID(c.Request.Context(), id)
	if errGet != nil {
		ServerError(c, errGet)
		return nil, false
	}
	if userPlant == nil {
		NotFound(c)
		return nil, false
	}
	if userPlant.UserID != userID {
		flashRedirect(c, msgNoPlantAccess, "/my-plants")
		return nil, false
	}
	return userPlant, true
}

// ownedUserPlantParam is ownedUserPlant for an id taken from the request.
func ownedUserPlantParam(c *gin.Context, st *store.Store, userID uint64, rawID string) (*models.UserPlant, bool) {
	id, okID := parseID(rawID)
	if !okID {
		NotFound(c)
		return nil, false
	}
	return ownedUserPlant(c, st, userID, id)
}

// optionalImage saves the image form field when one was sent. It returns an
// empty url when no usable file was uploaded.
func optionalImage(c *gin.Context, saver *upload.Saver, field string, userID uint64) (string, error) {
	file, errFile := c.FormFile(field)
	if errFile != nil {
		if errors.Is(errFile, http.ErrMissingFile) || errors.Is(errFile, http.ErrNotMultipart) {
			return "", nil
		}
		return "", errFile
	}
	return saveImage(c, saver, file, userID, true)
}

func saveImage(c *gin.Context, saver *upload.Saver, file *multipart.FileHeader, userID uint64, withTimestamp bool) (string, error) {
	url, errSave := saver.Save(file, userID, withTimestamp)
	switch {
	case errSave == nil:
		return url, nil
	case errors.Is(errSave, upload.ErrNoFile):
		return "", nil
	case errors.Is(errSave, upload.ErrNotAllowed):
		session.Get(c).AddFlash(msgImageSkipped)
		return "", nil
	default:
		return "", errSave
	}
}

// localPath returns next when it is a local absolute path, otherwise fallback.
func localPath(next, fallback string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func displayName(userPlant *models.UserPlant) string {
	if userPlant == nil {
		return ""
	}
	if userPlant.Nickname != "" {
		return userPlant.Nickname
	}
	if userPlant.Plant != nil {
		return userPlant.Plant.DisplayName()
	}
	return "your plant"
}
