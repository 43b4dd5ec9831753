package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreReport counts what a StoreEntries call wrote.
type StoreReport struct {
	Plants      int // Plants inserted or updated.
	CareCreated int // Care profiles created.
	CareUpdated int // Care profiles overwritten.
}

func (r StoreReport) String() string {
	return fmt.Sprintf("plants=%d care_created=%d care_updated=%d", r.Plants, r.CareCreated, r.CareUpdated)
}

// catalogColumns are the plant columns an import overwrites.
var catalogColumns = []string{
	"common_name",
	"plant_type",
	"image_url",
	"origin",
	"description",
	"poisonous_to_humans",
	"poisonous_to_pets",
	"invasive",
	"rare",
	"tropical",
	"indoor",
	"outdoor",
	"data_sources",
	"last_updated",
}

// StoreEntries upserts plants by scientific name and writes their care
// profiles. Plants missing from the payload are kept: user collections and
// favorites reference them.
func StoreEntries(ctx context.Context, db *gorm.DB, entries []Entry, syncTime time.Time) (StoreReport, error) {
	var report StoreReport
	if db == nil {
		return report, fmt.Errorf("store catalog entries: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if len(entries) == 0 {
		return report, nil
	}
	if syncTime.IsZero() {
		syncTime = time.Now().UTC()
	}
	syncTime = syncTime.UTC()

	errTx := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plants := make([]models.Plant, 0, len(entries))
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			plant := entry.Plant
			plant.ID = 0
			plant.LastUpdated = syncTime
			if plant.DataSources == nil {
				plant.DataSources = datatypes.JSONSlice[string]{}
			}
			plants = append(plants, plant)
			names = append(names, plant.ScientificName)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scientific_name"}},
			DoUpdates: clause.AssignmentColumns(catalogColumns),
		}).Create(&plants).Error; err != nil {
			return fmt.Errorf("store catalog entries: upsert plants: %w", err)
		}
		report.Plants = len(plants)

		var stored []models.Plant
		if err := tx.Where("scientific_name IN ?", names).Find(&stored).Error; err != nil {
			return fmt.Errorf("store catalog entries: reload plants: %w", err)
		}
		idByName := make(map[string]uint64, len(stored))
		for _, plant := range stored {
			idByName[plant.ScientificName] = plant.ID
		}

		for _, entry := range entries {
			if entry.Care == nil {
				continue
			}
			plantID, ok := idByName[entry.Plant.ScientificName]
			if !ok {
				return fmt.Errorf("store catalog entries: plant %s missing after upsert", entry.Plant.ScientificName)
			}
			created, err := storeCare(tx, plantID, *entry.Care)
			if err != nil {
				return err
			}
			if created {
				report.CareCreated++
			} else {
				report.CareUpdated++
			}
		}
		return nil
	})
	if errTx != nil {
		return StoreReport{}, errTx
	}
	return report, nil
}

// storeCare overwrites the first care profile of plantID or creates one.
func storeCare(tx *gorm.DB, plantID uint64, care models.PlantCareDetails) (bool, error) {
	var existing models.PlantCareDetails
	errFind := tx.Where("plant_id = ?", plantID).Order("id ASC").Limit(1).Find(&existing).Error
	if errFind != nil {
		return false, fmt.Errorf("store catalog entries: find care: %w", errFind)
	}

	care.PlantID = plantID
	if care.SunlightRequirements == nil {
		care.SunlightRequirements = datatypes.JSONSlice[string]{}
	}
	if care.PruningMonths == nil {
		care.PruningMonths = datatypes.JSONSlice[string]{}
	}
	if care.PropagationMethods == nil {
		care.PropagationMethods = datatypes.JSONSlice[string]{}
	}

	if existing.ID == 0 {
		care.ID = 0
		if err := tx.Create(&care).Error; err != nil {
			return false, fmt.Errorf("store catalog entries: create care: %w", err)
		}
		return true, nil
	}

	care.ID = existing.ID
	if err := tx.Model(&models.PlantCareDetails{}).
		Where("id = ?", existing.ID).
		Select("*").
		Omit("id").
		Updates(&care).Error; err != nil {
		return false, fmt.Errorf("store catalog entries: update care: %w", err)
	}
	return false, nil
}
