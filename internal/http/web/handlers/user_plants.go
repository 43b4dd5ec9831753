package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/rootly-app/rootly/internal/upload"
)

const reminderDateLayout = "2006-01-02"

var userPlantStatuses = []string{
	models.UserPlantStatusActive,
	models.UserPlantStatusDormant,
	models.UserPlantStatusGivenAway,
	models.UserPlantStatusDeceased,
}

// UserPlantHandler serves a user's collection and the care of each plant in it.
type UserPlantHandler struct {
	store *store.Store
	saver *upload.Saver
}

// NewUserPlantHandler constructs a UserPlantHandler.
func NewUserPlantHandler(st *store.Store, saver *upload.Saver) *UserPlantHandler {
	return &UserPlantHandler{store: st, saver: saver}
}

func userPlantPath(id uint64) string {
	return fmt.Sprintf("/user-plant/%d", id)
}

// List renders the user's collection.
func (h *UserPlantHandler) List(c *gin.Context) {
	userID, ok := requireUser(c, "view your plants")
	if !ok {
		return
	}
	userPlants, errList := h.store.ListUserPlants(c.Request.Context(), userID)
	if errList != nil {
		ServerError(c, errList)
		return
	}
	Render(c, http.StatusOK, "my_plants.html", gin.H{"Title": "My plants", "UserPlants": userPlants})
}

// NewForm renders the add-plant form with the catalogue dropdown.
func (h *UserPlantHandler) NewForm(c *gin.Context) {
	if _, ok := requireUser(c, "add plants to your collection"); !ok {
		return
	}
	plants, errList := h.store.ListPlants(c.Request.Context())
	if errList != nil {
		ServerError(c, errList)
		return
	}
	Render(c, http.StatusOK, "add_plant.html", gin.H{"Title": "Add a plant", "Plants": plants})
}

// Create adds a catalogue plant to the user's collection.
func (h *UserPlantHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c, "add plants to your collection")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	plantID, okID := parseID(c.PostForm("plant_id"))
	if !okID {
		flashRedirect(c, "Please choose a plant.", "/add-plant")
		return
	}
	plant, errPlant := h.store.GetPlantByID(ctx, plantID)
	if errPlant != nil {
		ServerError(c, errPlant)
		return
	}
	if plant == nil {
		flashRedirect(c, "Please choose a plant.", "/add-plant")
		return
	}

	_, errCreate := h.store.CreateUserPlant(ctx, &models.UserPlant{
		UserID:         userID,
		PlantID:        plant.ID,
		Nickname:       strings.TrimSpace(c.PostForm("nickname")),
		LocationInHome: strings.TrimSpace(c.PostForm("location")),
		Status:         models.UserPlantStatusActive,
	})
	if errCreate != nil {
		ServerError(c, errCreate)
		return
	}
	flashRedirect(c, "Plant added to your collection!", "/my-plants")
}

// Show renders one plant of the collection with its care log, active
// reminders and health assessments.
func (h *UserPlantHandler) Show(c *gin.Context) {
	userID, ok := requireUser(c, "view your plants")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.Param("id"))
	if !okOwned {
		return
	}
	ctx := c.Request.Context()

	careDetails, errCare := h.store.GetCareDetailsByPlantID(ctx, userPlant.PlantID)
	if errCare != nil {
		ServerError(c, errCare)
		return
	}
	events, errEvents := h.store.ListCareEventsByUserPlant(ctx, userPlant.ID)
	if errEvents != nil {
		ServerError(c, errEvents)
		return
	}
	reminders, errReminders := h.store.ListActiveRemindersByUserPlant(ctx, userPlant.ID)
	if errReminders != nil {
		ServerError(c, errReminders)
		return
	}
	assessments, errAssessments := h.store.ListHealthAssessmentsByUserPlant(ctx, userPlant.ID)
	if errAssessments != nil {
		ServerError(c, errAssessments)
		return
	}

	Render(c, http.StatusOK, "user_plant_details.html", gin.H{
		"Title":             displayName(userPlant),
		"UserPlant":         userPlant,
		"CareDetails":       careDetails,
		"CareEvents":        events,
		"Reminders":         reminders,
		"HealthAssessments": assessments,
	})
}

// LogCare records a care event happening now.
func (h *UserPlantHandler) LogCare(c *gin.Context) {
	userID, ok := requireUser(c, "log care events")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.PostForm("user_plant_id"))
	if !okOwned {
		return
	}

	eventType := strings.TrimSpace(c.PostForm("event_type"))
	_, errCreate := h.store.CreateCareEvent(c.Request.Context(), &models.CareEvent{
		UserPlantID: userPlant.ID,
		EventType:   eventType,
		Notes:       strings.TrimSpace(c.PostForm("notes")),
	})
	if errCreate != nil {
		ServerError(c, errCreate)
		return
	}
	flashRedirect(c, fmt.Sprintf("%s event logged successfully!", eventType), userPlantPath(userPlant.ID))
}

// AddReminder schedules a reminder on the day given as YYYY-MM-DD.
func (h *UserPlantHandler) AddReminder(c *gin.Context) {
	userID, ok := requireUser(c, "add reminders")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.PostForm("user_plant_id"))
	if !okOwned {
		return
	}

	due, errParse := time.ParseInLocation(reminderDateLayout, strings.TrimSpace(c.PostForm("next_reminder_date")), time.UTC)
	if errParse != nil {
		flashRedirect(c, "Please enter the reminder date as YYYY-MM-DD.", userPlantPath(userPlant.ID))
		return
	}

	reminderType := strings.TrimSpace(c.PostForm("reminder_type"))
	_, errCreate := h.store.CreateReminder(c.Request.Context(), store.NewReminder{
		UserPlantID:      userPlant.ID,
		ReminderType:     reminderType,
		Frequency:        strings.TrimSpace(c.PostForm("frequency")),
		NextReminderDate: due,
	})
	if errCreate != nil {
		ServerError(c, errCreate)
		return
	}
	flashRedirect(c, fmt.Sprintf("%s reminder added successfully!", reminderType), userPlantPath(userPlant.ID))
}

// DeactivateReminder stops a reminder from showing up.
func (h *UserPlantHandler) DeactivateReminder(c *gin.Context) {
	userID, ok := requireUser(c, "update reminders")
	if !ok {
		return
	}
	id, okID := parseID(c.Param("id"))
	if !okID {
		NotFound(c)
		return
	}
	ctx := c.Request.Context()

	reminder, errGet := h.store.GetReminderByID(ctx, id)
	if errGet != nil {
		ServerError(c, errGet)
		return
	}
	if reminder == nil {
		NotFound(c)
		return
	}
	userPlant, okOwned := ownedUserPlant(c, h.store, userID, reminder.UserPlantID)
	if !okOwned {
		return
	}

	inactive := false
	if _, errUpdate := h.store.UpdateReminder(ctx, id, store.ReminderUpdate{IsActive: &inactive}); errUpdate != nil {
		ServerError(c, errUpdate)
		return
	}
	flashRedirect(c, "Reminder deactivated.", userPlantPath(userPlant.ID))
}

// AddHealthAssessment records symptoms, a diagnosis and an optional photo.
func (h *UserPlantHandler) AddHealthAssessment(c *gin.Context) {
	userID, ok := requireUser(c, "add health assessments")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.PostForm("user_plant_id"))
	if !okOwned {
		return
	}

	imageURL, errImage := optionalImage(c, h.saver, "image", userID)
	if errImage != nil {
		ServerError(c, errImage)
		return
	}

	var symptoms []string
	for _, symptom := range c.PostFormArray("symptoms") {
		if symptom = strings.TrimSpace(symptom); symptom != "" {
			symptoms = append(symptoms, symptom)
		}
	}

	_, errCreate := h.store.CreateHealthAssessment(c.Request.Context(), &models.HealthAssessment{
		UserPlantID:              userPlant.ID,
		Symptoms:                 symptoms,
		Diagnosis:                strings.TrimSpace(c.PostForm("diagnosis")),
		TreatmentRecommendations: strings.TrimSpace(c.PostForm("treatment_recommendations")),
		ImageURL:                 imageURL,
	})
	if errCreate != nil {
		ServerError(c, errCreate)
		return
	}
	flashRedirect(c, "Health assessment added successfully!", userPlantPath(userPlant.ID))
}

// ResolveHealthAssessment marks an assessment resolved.
func (h *UserPlantHandler) ResolveHealthAssessment(c *gin.Context) {
	userID, ok := requireUser(c, "update health assessments")
	if !ok {
		return
	}
	id, okID := parseID(c.Param("id"))
	if !okID {
		NotFound(c)
		return
	}
	ctx := c.Request.Context()

	assessment, errGet := h.store.GetHealthAssessmentByID(ctx, id)
	if errGet != nil {
		ServerError(c, errGet)
		return
	}
	if assessment == nil {
		NotFound(c)
		return
	}
	userPlant, errPlant := h.store.GetUserPlantByID(ctx, assessment.UserPlantID)
	if errPlant != nil {
		ServerError(c, errPlant)
		return
	}
	if userPlant == nil || userPlant.UserID != userID {
		flashRedirect(c, msgNoAssessmentAccess, "/my-plants")
		return
	}

	if _, errResolve := h.store.ResolveHealthAssessment(ctx, id); errResolve != nil {
		ServerError(c, errResolve)
		return
	}
	flashRedirect(c, "Health issue marked as resolved!", userPlantPath(userPlant.ID))
}

// EditForm renders the edit form of a user plant.
func (h *UserPlantHandler) EditForm(c *gin.Context) {
	userID, ok := requireUser(c, "edit your plants")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.Param("id"))
	if !okOwned {
		return
	}
	Render(c, http.StatusOK, "edit_user_plant.html", gin.H{
		"Title":     "Edit " + displayName(userPlant),
		"UserPlant": userPlant,
		"Statuses":  userPlantStatuses,
	})
}

// Update saves the edit form. An empty status keeps the current one.
func (h *UserPlantHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c, "edit your plants")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.Param("id"))
	if !okOwned {
		return
	}

	nickname := c.PostForm("nickname")
	location := c.PostForm("location")
	notes := c.PostForm("notes")
	upd := store.UserPlantUpdate{
		Nickname:       &nickname,
		LocationInHome: &location,
		Notes:          &notes,
	}
	if status := strings.TrimSpace(c.PostForm("status")); status != "" {
		if !models.ValidUserPlantStatus(status) {
			flashRedirect(c, "Please choose a valid status.", fmt.Sprintf("/edit-user-plant/%d", userPlant.ID))
			return
		}
		upd.Status = &status
	}

	imageURL, errImage := optionalImage(c, h.saver, "image", userID)
	if errImage != nil {
		ServerError(c, errImage)
		return
	}
	if imageURL != "" {
		upd.ImageURL = &imageURL
	}

	if _, errUpdate := h.store.UpdateUserPlant(c.Request.Context(), userPlant.ID, upd); errUpdate != nil {
		ServerError(c, errUpdate)
		return
	}
	flashRedirect(c, "Plant details updated successfully!", userPlantPath(userPlant.ID))
}

// Delete removes a plant from the collection with its history.
func (h *UserPlantHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c, "remove plants")
	if !ok {
		return
	}
	userPlant, okOwned := ownedUserPlantParam(c, h.store, userID, c.Param("id"))
	if !okOwned {
		return
	}
	if _, errDelete := h.store.DeleteUserPlant(c.Request.Context(), userPlant.ID); errDelete != nil {
		ServerError(c, errDelete)
		return
	}
	flashRedirect(c, fmt.Sprintf("%s was removed from your collection.", displayName(userPlant)), "/my-plants")
}
