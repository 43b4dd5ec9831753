package web

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/ratelimit"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/rootly-app/rootly/internal/upload"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	engine *gin.Engine
	store  *store.Store
	saver  *upload.Saver
}

func newTestEnv(t *testing.T, limiter *ratelimit.Manager) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "rootly-web.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	st := store.New(conn)
	saver, err := upload.NewSaver(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	engine, err := NewEngine(Deps{
		DB:       conn,
		Store:    st,
		Sessions: session.NewMemoryStore(nil),
		Cookie:   session.CookieOptions{Name: "rootly_session", Secret: "test-secret", TTL: time.Hour},
		Limiter:  limiter,
		Saver:    saver,
	})
	require.NoError(t, err)
	return &testEnv{engine: engine, store: st, saver: saver}
}

// browser replays the cookies it was given, like a real client.
type browser struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, env: e, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	b.env.engine.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(b.cookies, cookie.Name)
			continue
		}
		b.cookies[cookie.Name] = cookie
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(b.t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(b.t, err)
		_, err = part.Write(content)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return b.do(req)
}

// follow requests the redirect target of rec and returns the page body.
func (b *browser) follow(rec *httptest.ResponseRecorder) string {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, rec.Code, rec.Body.String())
	page := b.get(rec.Header().Get("Location"))
	return page.Body.String()
}

func (b *browser) login(email, password string) {
	b.t.Helper()
	rec := b.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(b.t, http.StatusFound, rec.Code)
	require.Equal(b.t, "/dashboard", rec.Header().Get("Location"))
}

func seedAccount(t *testing.T, st *store.Store, username, email string) *models.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), store.NewUser{Username: username, Email: email, Password: "password123"})
	require.NoError(t, err)
	return user
}

func seedCatalogPlant(t *testing.T, st *store.Store, scientific, common string) *models.Plant {
	t.Helper()
	plant, err := st.CreatePlant(context.Background(), &models.Plant{ScientificName: scientific, CommonName: common})
	require.NoError(t, err)
	return plant
}

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)

	require.Equal(t, http.StatusOK, b.get("/register").Code)

	form := url.Values{"username": {"alice"}, "email": {"alice@example.com"}, "password": {"password123"}}
	rec := b.post("/register", form)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	dashboard := b.follow(rec)
	require.Contains(t, dashboard, "Account created for alice!")
	require.Contains(t, dashboard, "Welcome, alice")

	rec = b.get("/logout")
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "You have been logged out.")

	rec = b.post("/register", form)
	require.Equal(t, "/register", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "An account with this email already exists.")

	rec = b.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid email or password.")
	rec = b.post("/login", url.Values{"email": {"nobody@example.com"}, "password": {"password123"}})
	require.Contains(t, rec.Body.String(), "Invalid email or password.")

	rec = b.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"password123"}})
	require.Contains(t, b.follow(rec), "Welcome back, alice!")
}

func TestPagesRequireLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)

	rec := b.get("/dashboard")
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "Please log in to view your dashboard.")

	rec = b.post("/log-care", url.Values{"user_plant_id": {"1"}, "event_type": {"Watering"}})
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestForeignUserPlantIsRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := seedAccount(t, env.store, "alice", "alice@example.com")
	seedAccount(t, env.store, "bob", "bob@example.com")
	plant := seedCatalogPlant(t, env.store, "Monstera deliciosa", "Swiss Cheese Plant")
	owned, err := env.store.CreateUserPlant(ctx, &models.UserPlant{UserID: alice.ID, PlantID: plant.ID, Nickname: "Monty"})
	require.NoError(t, err)
	idParam := fmt.Sprint(owned.ID)

	b := env.browser(t)
	b.login("bob@example.com", "password123")

	rec := b.get("/user-plant/" + idParam)
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "You do not have access to this plant.")

	rec = b.post("/log-care", url.Values{"user_plant_id": {idParam}, "event_type": {"Watering"}})
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))
	events, err := env.store.ListCareEventsByUserPlant(ctx, owned.ID)
	require.NoError(t, err)
	require.Empty(t, events)

	rec = b.post("/edit-user-plant/"+idParam, url.Values{"nickname": {"Stolen"}, "status": {"dormant"}})
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))
	rec = b.post("/delete-user-plant/"+idParam, nil)
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))

	unchanged, err := env.store.GetUserPlantByID(ctx, owned.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged)
	require.Equal(t, "Monty", unchanged.Nickname)
	require.Equal(t, models.UserPlantStatusActive, unchanged.Status)

	require.Equal(t, http.StatusNotFound, b.get("/user-plant/9999").Code)
}

func TestCareLogRemindersAndHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := seedAccount(t, env.store, "alice", "alice@example.com")
	plant := seedCatalogPlant(t, env.store, "Ficus lyrata", "Fiddle Leaf Fig")

	b := env.browser(t)
	b.login("alice@example.com", "password123")

	rec := b.post("/add-plant", url.Values{"plant_id": {fmt.Sprint(plant.ID)}, "nickname": {"Figgy"}, "location": {"Living room"}})
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "Figgy")

	userPlants, err := env.store.ListUserPlants(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, userPlants, 1)
	userPlant := userPlants[0]
	idParam := fmt.Sprint(userPlant.ID)
	detailPath := "/user-plant/" + idParam

	rec = b.post("/log-care", url.Values{"user_plant_id": {idParam}, "event_type": {"Watering"}, "notes": {"soaked"}})
	require.Equal(t, detailPath, rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "Watering event logged successfully!")

	rec = b.post("/add-reminder", url.Values{"user_plant_id": {idParam}, "reminder_type": {"Fertilizing"}, "next_reminder_date": {"next week"}})
	require.Contains(t, b.follow(rec), "Please enter the reminder date as YYYY-MM-DD.")

	due := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	rec = b.post("/add-reminder", url.Values{"user_plant_id": {idParam}, "reminder_type": {"Fertilizing"}, "frequency": {"Monthly"}, "next_reminder_date": {due}})
	require.Contains(t, b.follow(rec), "Fertilizing reminder added successfully!")

	dashboard := b.get("/dashboard").Body.String()
	require.Contains(t, dashboard, due)
	require.Contains(t, dashboard, "Watering")

	reminders, err := env.store.ListActiveRemindersByUserPlant(ctx, userPlant.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	rec = b.post(fmt.Sprintf("/reminders/%d/deactivate", reminders[0].ID), nil)
	require.Equal(t, detailPath, rec.Header().Get("Location"))
	reminders, err = env.store.ListActiveRemindersByUserPlant(ctx, userPlant.ID)
	require.NoError(t, err)
	require.Empty(t, reminders)

	rec = b.postMultipart("/add-health-assessment", map[string]string{
		"user_plant_id": idParam,
		"symptoms":      "Yellow leaves",
		"diagnosis":     "Overwatering",
	}, "image", "leaf.png", []byte("png-bytes"))
	require.Contains(t, b.follow(rec), "Health assessment added successfully!")

	assessments, err := env.store.ListHealthAssessmentsByUserPlant(ctx, userPlant.ID)
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	require.Equal(t, []string{"Yellow leaves"}, []string(assessments[0].Symptoms))
	require.True(t, strings.HasPrefix(assessments[0].ImageURL, upload.PublicPrefix+"/"))
	require.True(t, strings.HasSuffix(assessments[0].ImageURL, "_leaf.png"))

	rec = b.post(fmt.Sprintf("/resolve-health-issue/%d", assessments[0].ID), nil)
	require.Contains(t, b.follow(rec), "Health issue marked as resolved!")
	resolved, err := env.store.GetHealthAssessmentByID(ctx, assessments[0].ID)
	require.NoError(t, err)
	require.True(t, resolved.Resolved)

	rec = b.post("/edit-user-plant/"+idParam, url.Values{"nickname": {"Fig"}, "location": {"Office"}, "status": {"dormant"}, "notes": {"moved"}})
	require.Contains(t, b.follow(rec), "Plant details updated successfully!")
	updated, err := env.store.GetUserPlantByID(ctx, userPlant.ID)
	require.NoError(t, err)
	require.Equal(t, "Fig", updated.Nickname)
	require.Equal(t, "Office", updated.LocationInHome)
	require.Equal(t, models.UserPlantStatusDormant, updated.Status)

	rec = b.post("/edit-user-plant/"+idParam, url.Values{"status": {"sleeping"}})
	require.Contains(t, b.follow(rec), "Please choose a valid status.")

	rec = b.post("/delete-user-plant/"+idParam, nil)
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))
	gone, err := env.store.GetUserPlantByID(ctx, userPlant.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestResolveForeignAssessmentIsRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := seedAccount(t, env.store, "alice", "alice@example.com")
	seedAccount(t, env.store, "bob", "bob@example.com")
	plant := seedCatalogPlant(t, env.store, "Ficus lyrata", "Fiddle Leaf Fig")
	userPlant, err := env.store.CreateUserPlant(ctx, &models.UserPlant{UserID: alice.ID, PlantID: plant.ID})
	require.NoError(t, err)
	assessment, err := env.store.CreateHealthAssessment(ctx, &models.HealthAssessment{UserPlantID: userPlant.ID, Diagnosis: "Root rot"})
	require.NoError(t, err)

	b := env.browser(t)
	b.login("bob@example.com", "password123")
	rec := b.post(fmt.Sprintf("/resolve-health-issue/%d", assessment.ID), nil)
	require.Equal(t, "/my-plants", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "You do not have access to this assessment.")

	stored, err := env.store.GetHealthAssessmentByID(ctx, assessment.ID)
	require.NoError(t, err)
	require.False(t, stored.Resolved)
}

func TestIdentifyFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := seedAccount(t, env.store, "alice", "alice@example.com")
	tick := time.Unix(1700000000, 0)
	env.saver.SetNow(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})

	b := env.browser(t)
	b.login("alice@example.com", "password123")

	rec := b.postMultipart("/identify", nil, "plant_image", "fern.png", []byte("png-bytes"))
	require.Equal(t, "/identify", rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "No plants in database to match against.")

	rec = b.postMultipart("/identify", nil, "", "", nil)
	require.Contains(t, b.follow(rec), "No file part")

	rec = b.postMultipart("/identify", nil, "plant_image", "notes.txt", []byte("text"))
	require.Contains(t, b.follow(rec), "Allowed file types are png, jpg, jpeg, gif.")

	plant := seedCatalogPlant(t, env.store, "Nephrolepis exaltata", "Boston Fern")
	rec = b.postMultipart("/identify", nil, "plant_image", "fern.png", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Boston Fern")
	require.Contains(t, body, "95%")

	records, err := env.store.ListIdentificationsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, plant.ID, records[0].IdentifiedPlantID)
	firstURL := records[0].ImageURL
	require.True(t, strings.HasPrefix(firstURL, fmt.Sprintf("%s/%d_", upload.PublicPrefix, alice.ID)), firstURL)
	require.True(t, strings.HasSuffix(firstURL, "_fern.png"), firstURL)
	require.Contains(t, body, firstURL)
	require.Contains(t, b.get("/identifications").Body.String(), "Boston Fern")

	rec = b.post(fmt.Sprintf("/identifications/%d/add", records[0].ID), url.Values{"nickname": {"Fernie"}})
	require.Contains(t, b.follow(rec), "Plant added to your collection!")
	userPlants, err := env.store.ListUserPlants(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, userPlants, 1)
	require.Equal(t, "Fernie", userPlants[0].Nickname)

	// The uploaded photo is served from the uploads directory.
	served := b.get(firstURL)
	require.Equal(t, http.StatusOK, served.Code)
	require.Equal(t, "png-bytes", served.Body.String())

	// A second photo with the same name does not replace the first.
	rec = b.postMultipart("/identify", nil, "plant_image", "fern.png", []byte("other-bytes"))
	require.Equal(t, http.StatusOK, rec.Code)
	records, err = env.store.ListIdentificationsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotEqual(t, records[0].ImageURL, records[1].ImageURL)
	require.Equal(t, "png-bytes", b.get(firstURL).Body.String())
}

func TestBrowsePlantDetailsAndFavorites(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fern := seedCatalogPlant(t, env.store, "Nephrolepis exaltata", "Boston Fern")
	seedCatalogPlant(t, env.store, "Ficus lyrata", "Fiddle Leaf Fig")
	alice := seedAccount(t, env.store, "alice", "alice@example.com")

	b := env.browser(t)
	page := b.get("/browse-plants?search=fern").Body.String()
	require.Contains(t, page, "Boston Fern")
	require.NotContains(t, page, "Fiddle Leaf Fig")
	require.Contains(t, b.get("/browse-plants").Body.String(), "Fiddle Leaf Fig")

	missing := b.get("/plant/9999")
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.Contains(t, missing.Body.String(), "Page not found")
	require.Equal(t, http.StatusNotFound, b.get("/no-such-page").Code)

	fernPath := fmt.Sprintf("/plant/%d", fern.ID)
	require.Contains(t, b.get(fernPath).Body.String(), "Nephrolepis exaltata")

	b.login("alice@example.com", "password123")
	favoritePath := fmt.Sprintf("/favorites/%d", fern.ID)
	rec := b.post(favoritePath, nil)
	require.Equal(t, fernPath, rec.Header().Get("Location"))
	require.Contains(t, b.follow(rec), "Remove from favorites")
	b.post(favoritePath, nil)

	favorites, err := env.store.ListUserFavorites(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Contains(t, b.get("/favorites").Body.String(), "Boston Fern")

	rec = b.post(favoritePath+"/delete", url.Values{"next": {"/favorites"}})
	require.Equal(t, "/favorites", rec.Header().Get("Location"))
	favorites, err = env.store.ListUserFavorites(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, favorites)

	rec = b.post(favoritePath, url.Values{"next": {"//evil.example"}})
	require.Equal(t, fernPath, rec.Header().Get("Location"))
}

func TestLoginIsThrottled(t *testing.T) {
	limiter := ratelimit.NewManager(ratelimit.StaticSettings(ratelimit.SettingsConfig{Limit: 2, Window: time.Minute}), nil, nil)
	env := newTestEnv(t, limiter)
	b := env.browser(t)

	form := url.Values{"email": {"alice@example.com"}, "password": {"wrong"}}
	require.Equal(t, http.StatusOK, b.post("/login", form).Code)
	require.Equal(t, http.StatusOK, b.post("/login", form).Code)
	rec := b.post("/login", form)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "Too many attempts.")
}

func TestHealthzAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)

	rec := b.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())

	b.get("/")
	metrics := b.get("/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), "rootly_http_requests_total")
}

func TestCatalogueAPIsMount(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogPlant(t, env.store, "Monstera deliciosa", "Swiss Cheese Plant")
	b := env.browser(t)

	rec := b.get("/v0/front/plants")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Monstera deliciosa")

	login := httptest.NewRequest(http.MethodPost, "/v0/admin/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	login.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusNotFound, b.do(login).Code)

	engine, err := NewEngine(Deps{
		DB:       env.store.DB(),
		Store:    env.store,
		Sessions: session.NewMemoryStore(nil),
		Cookie:   session.CookieOptions{Name: "rootly_session", Secret: "test-secret", TTL: time.Hour},
		Saver:    env.saver,
		Admin:    config.AdminConfig{Emails: []string{"admin@rootly.com"}, TokenTTL: time.Hour},
	})
	require.NoError(t, err)

	seedAccount(t, env.store, "admin", "admin@rootly.com")
	login = httptest.NewRequest(http.MethodPost, "/v0/admin/login", strings.NewReader(`{"email":"admin@rootly.com","password":"password123"}`))
	login.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, login)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token"`)
}
