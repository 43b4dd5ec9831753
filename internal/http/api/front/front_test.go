package front

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, r *gin.Engine, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestFrontCatalogue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "rootly-front.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	st := store.New(conn)
	ctx := context.Background()

	snake, err := st.CreatePlant(ctx, &models.Plant{ScientificName: "Sansevieria trifasciata", CommonName: "Snake Plant"})
	require.NoError(t, err)
	pothos, err := st.CreatePlant(ctx, &models.Plant{ScientificName: "Epipremnum aureum", CommonName: "Pothos"})
	require.NoError(t, err)
	_, err = st.CreatePlantCareDetails(ctx, &models.PlantCareDetails{PlantID: snake.ID, WateringFrequency: "Monthly"})
	require.NoError(t, err)
	_, err = st.CreatePlantHealthIssue(ctx, &models.PlantHealthIssue{PlantID: snake.ID, IssueName: "Root rot"})
	require.NoError(t, err)
	_, err = st.CreateRelatedPlants(ctx, pothos.ID, snake.ID, "Companion", "")
	require.NoError(t, err)
	_, err = st.CreateRegion(ctx, &models.Region{Name: "Midwest US"})
	require.NoError(t, err)

	r := gin.New()
	RegisterFrontRoutes(r, st)

	code, out := getJSON(t, r, "/v0/front/plants")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out["plants"], 2)

	code, out = getJSON(t, r, "/v0/front/plants?search=SNAKE")
	require.Equal(t, http.StatusOK, code)
	plants := out["plants"].([]any)
	require.Len(t, plants, 1)
	require.Equal(t, "Snake Plant", plants[0].(map[string]any)["common_name"])

	code, out = getJSON(t, r, "/v0/front/plants/"+strconv.FormatUint(snake.ID, 10))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Monthly", out["care"].(map[string]any)["watering_frequency"])
	require.Len(t, out["health_issues"], 1)
	related := out["related_plants"].([]any)
	require.Len(t, related, 1)
	require.EqualValues(t, pothos.ID, related[0].(map[string]any)["plant_id"])

	code, _ = getJSON(t, r, "/v0/front/plants/999")
	require.Equal(t, http.StatusNotFound, code)
	code, _ = getJSON(t, r, "/v0/front/plants/abc")
	require.Equal(t, http.StatusBadRequest, code)

	code, out = getJSON(t, r, "/v0/front/regions")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out["regions"], 1)
}
