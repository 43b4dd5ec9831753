package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/stretchr/testify/require"
)

const testSecret = "admin-test-secret"

type adminEnv struct {
	engine *gin.Engine
	store  *store.Store
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "rootly-admin.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	st := store.New(conn)

	ctx := context.Background()
	_, err = st.CreateUser(ctx, store.NewUser{Username: "admin", Email: "admin@rootly.com", Password: "adminpassword"})
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, store.NewUser{Username: "gardener", Email: "gardener@rootly.com", Password: "gardenpass"})
	require.NoError(t, err)

	r := gin.New()
	RegisterAdminRoutes(r, st, Options{
		Secret: testSecret,
		Admin:  config.AdminConfig{Emails: []string{"admin@rootly.com"}, TokenTTL: time.Hour},
	})
	return &adminEnv{engine: r, store: st}
}

func (e *adminEnv) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (e *adminEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, out := e.request(t, http.MethodPost, "/v0/admin/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAdminLoginRequiresAdminAccount(t *testing.T) {
	env := newAdminEnv(t)

	rec, _ := env.request(t, http.MethodPost, "/v0/admin/login", "", gin.H{"email": "admin@rootly.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.request(t, http.MethodPost, "/v0/admin/login", "", gin.H{"email": "gardener@rootly.com", "password": "gardenpass"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.request(t, http.MethodGet, "/v0/admin/plants", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.request(t, http.MethodGet, "/v0/admin/plants", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.login(t, "admin@rootly.com", "adminpassword")
	rec, out := env.request(t, http.MethodGet, "/v0/admin/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin@rootly.com", out["email"])
}

func TestAdminPlantCatalogueLifecycle(t *testing.T) {
	env := newAdminEnv(t)
	token := env.login(t, "admin@rootly.com", "adminpassword")

	rec, out := env.request(t, http.MethodPost, "/v0/admin/plants", token, gin.H{
		"scientific_name": "Monstera deliciosa",
		"common_name":     "Swiss Cheese Plant",
		"plant_type":      "Houseplant",
		"indoor":          true,
		"tropical":        true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	monsteraID := uint64(out["id"].(float64))

	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants", token, gin.H{"scientific_name": "Monstera deliciosa"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants", token, gin.H{"common_name": "Nameless"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = env.request(t, http.MethodPost, "/v0/admin/plants", token, gin.H{
		"scientific_name":   "Ficus lyrata",
		"common_name":       "Fiddle Leaf Fig",
		"plant_type":        "Houseplant",
		"poisonous_to_pets": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ficusID := uint64(out["id"].(float64))

	rec, out = env.request(t, http.MethodGet, "/v0/admin/plants?tropical=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["plants"], 1)

	rec, out = env.request(t, http.MethodGet, "/v0/admin/plants?search=fig", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["plants"], 1)

	rec, _ = env.request(t, http.MethodGet, "/v0/admin/plants?indoor=maybe", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = env.request(t, http.MethodPut, "/v0/admin/plants/"+itoa(monsteraID), token, gin.H{"origin": "Central America"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Central America", out["origin"])
	require.Equal(t, "Swiss Cheese Plant", out["common_name"])

	rec, out = env.request(t, http.MethodPut, "/v0/admin/plants/"+itoa(monsteraID)+"/care", token, gin.H{
		"watering_frequency":     "Weekly",
		"watering_interval_days": 7,
		"sunlight_requirements":  []string{"Bright indirect light"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "hours", out["sunlight_duration_unit"])

	rec, out = env.request(t, http.MethodPut, "/v0/admin/plants/"+itoa(monsteraID)+"/care", token, gin.H{"growth_rate": "Fast"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Weekly", out["watering_frequency"])
	require.Equal(t, "Fast", out["growth_rate"])

	rec, _ = env.request(t, http.MethodPut, "/v0/admin/plants/"+itoa(monsteraID)+"/care", token, gin.H{"watering_interval_days": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(monsteraID)+"/health-issues", token, gin.H{
		"issue_name": "Root rot",
		"severity":   "High",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, out = env.request(t, http.MethodPost, "/v0/admin/regions", token, gin.H{"name": "Pacific Northwest", "humidity_level": "High"})
	require.Equal(t, http.StatusCreated, rec.Code)
	regionID := uint64(out["id"].(float64))
	rec, _ = env.request(t, http.MethodPost, "/v0/admin/regions", token, gin.H{"name": "Pacific Northwest"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(monsteraID)+"/region-care", token, gin.H{
		"region_id":          regionID,
		"watering_frequency": "Every 10 days",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(monsteraID)+"/region-care", token, gin.H{"region_id": regionID})
	require.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(monsteraID)+"/region-care", token, gin.H{"region_id": 999})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, first := env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(monsteraID)+"/related", token, gin.H{
		"related_plant_id":  ficusID,
		"relationship_type": "Companion",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, second := env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(ficusID)+"/related", token, gin.H{
		"related_plant_id": monsteraID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, first["id"], second["id"])
	rec, _ = env.request(t, http.MethodPost, "/v0/admin/plants/"+itoa(ficusID)+"/related", token, gin.H{"related_plant_id": ficusID})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = env.request(t, http.MethodGet, "/v0/admin/plants/"+itoa(monsteraID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, out["care"])

	rec, _ = env.request(t, http.MethodDelete, "/v0/admin/plants/"+itoa(monsteraID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.request(t, http.MethodGet, "/v0/admin/plants/"+itoa(monsteraID), token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = env.request(t, http.MethodDelete, "/v0/admin/plants/"+itoa(monsteraID), token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	related, err := env.store.ListRelatedPlants(context.Background(), ficusID)
	require.NoError(t, err)
	require.Empty(t, related)
}

func TestAdminUsers(t *testing.T) {
	env := newAdminEnv(t)
	token := env.login(t, "admin@rootly.com", "adminpassword")

	rec, out := env.request(t, http.MethodGet, "/v0/admin/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := out["users"].([]any)
	require.Len(t, users, 2)
	for _, raw := range users {
		user := raw.(map[string]any)
		require.NotContains(t, user, "password_hash")
	}

	adminUser, err := env.store.GetUserByEmail(context.Background(), "admin@rootly.com")
	require.NoError(t, err)
	rec, _ = env.request(t, http.MethodDelete, "/v0/admin/users/"+itoa(adminUser.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	gardener, err := env.store.GetUserByEmail(context.Background(), "gardener@rootly.com")
	require.NoError(t, err)
	rec, _ = env.request(t, http.MethodDelete, "/v0/admin/users/"+itoa(gardener.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.request(t, http.MethodDelete, "/v0/admin/users/"+itoa(gardener.ID), token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = env.request(t, http.MethodDelete, "/v0/admin/users/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
