package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rootly-app/rootly/internal/models"
)

func TestSyncOnce_FetchesAndStores(t *testing.T) {
	payload := []byte(`{"plants":[{"scientific_name":"Epipremnum aureum","common_name":"Pothos","indoor":true,"care":{"watering_interval_days":10}}]}`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	conn := openCatalogDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	syncer := NewSyncer(conn, server.URL, time.Minute)
	syncer.client = server.Client()
	syncer.now = func() time.Time { return now }

	report, errSync := syncer.SyncOnce(context.Background())
	if errSync != nil {
		t.Fatalf("sync once: %v", errSync)
	}
	if report.Plants != 1 || report.CareCreated != 1 {
		t.Fatalf("unexpected report: %s", report)
	}

	var row models.Plant
	if errFind := conn.Where("scientific_name = ?", "Epipremnum aureum").First(&row).Error; errFind != nil {
		t.Fatalf("find row: %v", errFind)
	}
	if row.CommonName != "Pothos" || !row.Indoor {
		t.Fatalf("unexpected plant: %+v", row)
	}
	if len(row.DataSources) != 1 || row.DataSources[0] != server.URL {
		t.Fatalf("expected source url recorded, got %v", row.DataSources)
	}
	if !row.LastUpdated.Equal(now) {
		t.Fatalf("expected last_updated to match sync time")
	}
}

func TestSyncOnce_FileAndErrors(t *testing.T) {
	conn := openCatalogDB(t)
	path := filepath.Join(t.TempDir(), "plants.json")
	if err := os.WriteFile(path, []byte(`[{"scientific_name":"Aloe vera"}]`), 0600); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	report, err := NewSyncer(conn, path, 0).SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("sync file: %v", err)
	}
	if report.Plants != 1 {
		t.Fatalf("unexpected report: %s", report)
	}

	if _, errMissing := NewSyncer(conn, filepath.Join(t.TempDir(), "missing.json"), 0).SyncOnce(context.Background()); errMissing == nil {
		t.Fatalf("expected error for missing file")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	if _, errStatus := NewSyncer(conn, server.URL, 0).SyncOnce(context.Background()); errStatus == nil {
		t.Fatalf("expected error for bad status")
	}

	if NewSyncer(conn, " ", 0) != nil || NewSyncer(nil, path, 0) != nil {
		t.Fatalf("expected nil syncer without db or source")
	}
}
