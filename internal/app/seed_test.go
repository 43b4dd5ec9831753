package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
)

func TestHasCatalog(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "rootly-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	seeded, err := HasCatalog(conn)
	if err != nil {
		t.Fatalf("HasCatalog: %v", err)
	}
	if seeded {
		t.Fatalf("expected seeded=false before migrate")
	}

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	seeded, err = HasCatalog(conn)
	if err != nil {
		t.Fatalf("HasCatalog after migrate: %v", err)
	}
	if seeded {
		t.Fatalf("expected seeded=false with empty plants table")
	}

	if _, errSeed := Seed(context.Background(), conn); errSeed != nil {
		t.Fatalf("Seed: %v", errSeed)
	}
	seeded, err = HasCatalog(conn)
	if err != nil {
		t.Fatalf("HasCatalog after seed: %v", err)
	}
	if !seeded {
		t.Fatalf("expected seeded=true after seed")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "rootly-seed.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	ctx := context.Background()

	report, err := Seed(ctx, conn)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	want := SeedReport{Regions: 6, Users: 1, Plants: 3, CareDetails: 3}
	if report != want {
		t.Fatalf("expected %s, got %s", want, report)
	}

	again, err := Seed(ctx, conn)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if again != (SeedReport{}) {
		t.Fatalf("expected nothing created on reseed, got %s", again)
	}

	var plants int64
	if errCount := conn.Model(&models.Plant{}).Count(&plants).Error; errCount != nil {
		t.Fatalf("count plants: %v", errCount)
	}
	if plants != 3 {
		t.Fatalf("expected 3 plants, got %d", plants)
	}

	st := store.New(conn)
	admin, err := st.GetUserByEmail(ctx, SeedAdminEmail)
	if err != nil || admin == nil {
		t.Fatalf("expected admin user, got %v (err=%v)", admin, err)
	}
	if !admin.CheckPassword(SeedAdminPassword) {
		t.Fatalf("expected admin password to verify")
	}

	snake, err := st.GetPlantByScientificName(ctx, "Sansevieria trifasciata")
	if err != nil || snake == nil {
		t.Fatalf("expected snake plant, got %v (err=%v)", snake, err)
	}
	if !snake.PoisonousToPets || !snake.Outdoor {
		t.Fatalf("unexpected snake plant flags: %+v", snake)
	}
	care, err := st.GetCareDetailsByPlantID(ctx, snake.ID)
	if err != nil || care == nil {
		t.Fatalf("expected care details, got %v (err=%v)", care, err)
	}
	if care.WateringIntervalDays == nil || *care.WateringIntervalDays != 30 {
		t.Fatalf("expected 30 day watering interval, got %v", care.WateringIntervalDays)
	}
	if len(care.SunlightRequirements) != 2 || care.SunlightRequirements[0] != "Low light" {
		t.Fatalf("unexpected sunlight requirements: %v", care.SunlightRequirements)
	}
}

func TestImportCatalog(t *testing.T) {
	t.Setenv(config.EnvCatalogSource, "")
	dir := t.TempDir()
	t.Setenv(config.EnvDBConnection, "file:"+filepath.Join(dir, "rootly-import.db"))
	source := filepath.Join(dir, "plants.json")
	if err := os.WriteFile(source, []byte(`[{"scientific_name":"Aloe vera","common_name":"Aloe","care":{"watering_frequency":"Every 3 weeks"}}]`), 0600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	appCfg := config.AppConfig{ConfigPath: filepath.Join(dir, "missing.yaml")}

	if _, err := ImportCatalog(context.Background(), appCfg, ""); err == nil {
		t.Fatalf("expected error without a source")
	}
	report, err := ImportCatalog(context.Background(), appCfg, source)
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if report.Plants != 1 || report.CareCreated != 1 {
		t.Fatalf("unexpected report: %s", report)
	}
}
