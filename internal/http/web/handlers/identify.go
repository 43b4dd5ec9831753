package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/identify"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/rootly-app/rootly/internal/upload"
)

const (
	msgNoFilePart      = "No file part"
	msgNoSelectedFile  = "No selected file"
	msgFileNotAllowed  = "Allowed file types are png, jpg, jpeg, gif."
	msgNoPlantsToMatch = "No plants in database to match against."
)

// IdentifyHandler runs photo identification and shows its history.
type IdentifyHandler struct {
	store   *store.Store
	saver   *upload.Saver
	service *identify.Service
}

// NewIdentifyHandler constructs an IdentifyHandler.
func NewIdentifyHandler(st *store.Store, saver *upload.Saver, service *identify.Service) *IdentifyHandler {
	return &IdentifyHandler{store: st, saver: saver, service: service}
}

// Form renders the upload form.
func (h *IdentifyHandler) Form(c *gin.Context) {
	if _, ok := requireUser(c, "identify plants"); !ok {
		return
	}
	Render(c, http.StatusOK, "identify.html", gin.H{"Title": "Identify"})
}

// Submit stores the uploaded photo, identifies it and records the attempt.
func (h *IdentifyHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c, "identify plants")
	if !ok {
		return
	}

	file, errFile := c.FormFile("plant_image")
	if errFile != nil {
		if errors.Is(errFile, http.ErrMissingFile) || errors.Is(errFile, http.ErrNotMultipart) {
			// An empty file input arrives as a plain form value.
			if _, sent := c.GetPostForm("plant_image"); sent {
				flashRedirect(c, msgNoSelectedFile, "/identify")
				return
			}
			flashRedirect(c, msgNoFilePart, "/identify")
			return
		}
		ServerError(c, errFile)
		return
	}
	if strings.TrimSpace(file.Filename) == "" {
		flashRedirect(c, msgNoSelectedFile, "/identify")
		return
	}

	imageURL, errSave := h.saver.Save(file, userID, true)
	if errSave != nil {
		switch {
		case errors.Is(errSave, upload.ErrNoFile):
			flashRedirect(c, msgNoSelectedFile, "/identify")
		case errors.Is(errSave, upload.ErrNotAllowed):
			flashRedirect(c, msgFileNotAllowed, "/identify")
		default:
			ServerError(c, errSave)
		}
		return
	}

	record, match, errIdentify := h.service.Identify(c.Request.Context(), userID, imageURL)
	if errIdentify != nil {
		if errors.Is(errIdentify, identify.ErrNoMatch) {
			flashRedirect(c, msgNoPlantsToMatch, "/identify")
			return
		}
		ServerError(c, errIdentify)
		return
	}

	Render(c, http.StatusOK, "identification_results.html", gin.H{
		"Title":          "Identification result",
		"Plant":          match.Plant,
		"ImageURL":       imageURL,
		"Confidence":     match.Confidence,
		"Identification": record,
	})
}

// History lists the user's identifications, newest first.
func (h *IdentifyHandler) History(c *gin.Context) {
	userID, ok := requireUser(c, "view your identifications")
	if !ok {
		return
	}
	records, errList := h.store.ListIdentificationsByUser(c.Request.Context(), userID)
	if errList != nil {
		ServerError(c, errList)
		return
	}
	Render(c, http.StatusOK, "identifications.html", gin.H{
		"Title":           "Identification history",
		"Identifications": records,
	})
}

// AddToCollection turns an identification into a user plant.
func (h *IdentifyHandler) AddToCollection(c *gin.Context) {
	userID, ok := requireUser(c, "add plants to your collection")
	if !ok {
		return
	}
	id, okID := parseID(c.Param("id"))
	if !okID {
		NotFound(c)
		return
	}
	ctx := c.Request.Context()

	record, errGet := h.store.GetIdentificationByID(ctx, id)
	if errGet != nil {
		ServerError(c, errGet)
		return
	}
	if record == nil {
		NotFound(c)
		return
	}
	if record.UserID != userID {
		flashRedirect(c, "You do not have access to this identification.", "/identifications")
		return
	}

	userPlant, errAdd := h.service.AddToCollection(ctx, userID, id, strings.TrimSpace(c.PostForm("nickname")))
	if errAdd != nil {
		if errors.Is(errAdd, store.ErrNotFound) {
			NotFound(c)
			return
		}
		ServerError(c, errAdd)
		return
	}
	flashRedirect(c, "Plant added to your collection!", fmt.Sprintf("/user-plant/%d", userPlant.ID))
}
