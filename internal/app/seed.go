package app

import (
	"context"
	"fmt"

	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seed account credentials.
const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = config.DefaultAdminEmail
	SeedAdminPassword = "adminpassword"
)

// SeedReport counts the rows a seed run created.
type SeedReport struct {
	Regions     int
	Users       int
	Plants      int
	CareDetails int
}

func (r SeedReport) String() string {
	return fmt.Sprintf("regions=%d users=%d plants=%d care_details=%d", r.Regions, r.Users, r.Plants, r.CareDetails)
}

type seedPlant struct {
	plant models.Plant
	care  models.PlantCareDetails
}

func float64Ptr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func seedRegions() []models.Region {
	return []models.Region{
		{Name: "Northeast US", ClimateZone: "4-7", AvgTemperature: float64Ptr(50), HumidityLevel: "Moderate"},
		{Name: "Southeast US", ClimateZone: "7-10", AvgTemperature: float64Ptr(70), HumidityLevel: "High"},
		{Name: "Midwest US", ClimateZone: "3-6", AvgTemperature: float64Ptr(45), HumidityLevel: "Moderate"},
		{Name: "Southwest US", ClimateZone: "8-10", AvgTemperature: float64Ptr(75), HumidityLevel: "Low"},
		{Name: "West Coast US", ClimateZone: "7-10", AvgTemperature: float64Ptr(65), HumidityLevel: "Varied"},
		{Name: "Pacific Northwest", ClimateZone: "7-9", AvgTemperature: float64Ptr(55), HumidityLevel: "High"},
	}
}

func seedPlants() []seedPlant {
	return []seedPlant{
		{
			plant: models.Plant{
				ScientificName: "Monstera deliciosa",
				CommonName:     "Swiss Cheese Plant",
				PlantType:      "Houseplant",
				Origin:         "Central America",
				Description:    "Popular houseplant with distinctive split leaves.",
				Indoor:         true,
				Tropical:       true,
				DataSources:    []string{"sample_data"},
			},
			care: models.PlantCareDetails{
				WateringFrequency:    "Weekly",
				WateringIntervalDays: intPtr(7),
				SunlightRequirements: []string{"Bright indirect light"},
				SunlightDurationMin:  intPtr(4),
				SunlightDurationMax:  intPtr(6),
				SoilPreferences:      "Well-draining potting mix",
				DifficultyLevel:      "Easy",
			},
		},
		{
			plant: models.Plant{
				ScientificName: "Ficus lyrata",
				CommonName:     "Fiddle Leaf Fig",
				PlantType:      "Houseplant",
				Origin:         "Western Africa",
				Description:    "Popular indoor tree with large, violin-shaped leaves.",
				Indoor:         true,
				Tropical:       true,
				DataSources:    []string{"sample_data"},
			},
			care: models.PlantCareDetails{
				WateringFrequency:    "Weekly",
				WateringIntervalDays: intPtr(7),
				SunlightRequirements: []string{"Bright indirect light", "Direct morning sunlight"},
				SunlightDurationMin:  intPtr(5),
				SunlightDurationMax:  intPtr(8),
				SoilPreferences:      "Well-draining potting mix",
				DifficultyLevel:      "Moderate",
			},
		},
		{
			plant: models.Plant{
				ScientificName:  "Sansevieria trifasciata",
				CommonName:      "Snake Plant",
				PlantType:       "Houseplant",
				Origin:          "West Africa",
				Description:     "Succulent plant with stiff, upright leaves.",
				Indoor:          true,
				Outdoor:         true,
				PoisonousToPets: true,
				DataSources:     []string{"sample_data"},
			},
			care: models.PlantCareDetails{
				WateringFrequency:    "Monthly",
				WateringIntervalDays: intPtr(30),
				SunlightRequirements: []string{"Low light", "Bright indirect light"},
				SunlightDurationMin:  intPtr(2),
				SunlightDurationMax:  intPtr(8),
				SoilPreferences:      "Well-draining cactus mix",
				DifficultyLevel:      "Easy",
			},
		},
	}
}

// Seed loads the regions, the admin account and the sample plants with their
// care details. Rows that already exist, matched by name, email or
// scientific name, are left untouched.
func Seed(ctx context.Context, conn *gorm.DB) (SeedReport, error) {
	var report SeedReport
	st := store.New(conn)

	for _, region := range seedRegions() {
		existing, errGet := st.GetRegionByName(ctx, region.Name)
		if errGet != nil {
			return report, errGet
		}
		if existing != nil {
			continue
		}
		if _, errCreate := st.CreateRegion(ctx, &region); errCreate != nil {
			return report, fmt.Errorf("seed region %s: %w", region.Name, errCreate)
		}
		report.Regions++
	}

	admin, errAdmin := st.GetUserByEmail(ctx, SeedAdminEmail)
	if errAdmin != nil {
		return report, errAdmin
	}
	if admin == nil {
		if _, errCreate := st.CreateUser(ctx, store.NewUser{
			Username: SeedAdminUsername,
			Email:    SeedAdminEmail,
			Password: SeedAdminPassword,
		}); errCreate != nil {
			return report, fmt.Errorf("seed admin user: %w", errCreate)
		}
		report.Users++
	}

	for _, sample := range seedPlants() {
		plant, errGet := st.GetPlantByScientificName(ctx, sample.plant.ScientificName)
		if errGet != nil {
			return report, errGet
		}
		if plant == nil {
			created := sample.plant
			if plant, errGet = st.CreatePlant(ctx, &created); errGet != nil {
				return report, fmt.Errorf("seed plant %s: %w", sample.plant.ScientificName, errGet)
			}
			report.Plants++
		}

		care, errCare := st.GetCareDetailsByPlantID(ctx, plant.ID)
		if errCare != nil {
			return report, errCare
		}
		if care != nil {
			continue
		}
		details := sample.care
		details.PlantID = plant.ID
		if _, errCreate := st.CreatePlantCareDetails(ctx, &details); errCreate != nil {
			return report, fmt.Errorf("seed care details %s: %w", sample.plant.ScientificName, errCreate)
		}
		report.CareDetails++
	}
	return report, nil
}

// SeedDatabase opens the configured database, migrates it and seeds it.
func SeedDatabase(ctx context.Context, cfg config.AppConfig) (SeedReport, error) {
	serverCfg, errLoad := LoadConfig(cfg)
	if errLoad != nil {
		return SeedReport{}, errLoad
	}
	conn, errOpen := openDatabase(serverCfg)
	if errOpen != nil {
		return SeedReport{}, errOpen
	}
	defer closeDatabase(conn)

	report, errSeed := Seed(ctx, conn)
	if errSeed != nil {
		return report, errSeed
	}
	log.Infof("database seeded: %s", report)
	return report, nil
}

// HasCatalog reports whether the plant catalogue has at least one plant.
func HasCatalog(conn *gorm.DB) (bool, error) {
	if conn == nil {
		return false, fmt.Errorf("nil db")
	}
	if !conn.Migrator().HasTable(&models.Plant{}) {
		return false, nil
	}
	var count int64
	if errCount := conn.Model(&models.Plant{}).Count(&count).Error; errCount != nil {
		return false, errCount
	}
	return count > 0, nil
}
