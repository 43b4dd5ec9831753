package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
)

// PageHandler serves the homepage and the dashboard.
type PageHandler struct {
	store *store.Store
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(st *store.Store) *PageHandler {
	return &PageHandler{store: st}
}

// Home renders the landing page.
func (h *PageHandler) Home(c *gin.Context) {
	Render(c, http.StatusOK, "homepage.html", nil)
}

// Dashboard shows the user's reminders due this week and the care logged in
// the last month.
func (h *PageHandler) Dashboard(c *gin.Context) {
	userID, ok := requireUser(c, "view your dashboard")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, errUser := h.store.GetUserByID(ctx, userID)
	if errUser != nil {
		ServerError(c, errUser)
		return
	}
	if user == nil {
		// The account was removed while the session was live.
		session.Get(c).Logout()
		flashRedirect(c, "Please log in to view your dashboard.", "/login")
		return
	}

	upcoming, errUpcoming := h.store.ListUpcomingReminders(ctx, userID, store.DefaultUpcomingReminderDays)
	if errUpcoming != nil {
		ServerError(c, errUpcoming)
		return
	}
	recent, errRecent := h.store.ListRecentCareEvents(ctx, userID, store.DefaultRecentCareDays)
	if errRecent != nil {
		ServerError(c, errRecent)
		return
	}

	Render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title":             "Dashboard",
		"User":              user,
		"UpcomingReminders": upcoming,
		"RecentCareEvents":  recent,
	})
}
