package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlantFilter narrows the catalogue. Nil fields do not filter.
type PlantFilter struct {
	PlantType string
	Indoor    *bool
	Outdoor   *bool
	Poisonous *bool // Matches toxicity to humans or to pets.
	Tropical  *bool
}

// PlantUpdate lists the catalogue fields that may change.
type PlantUpdate struct {
	ScientificName    *string
	CommonName        *string
	PlantType         *string
	ImageURL          *string
	Origin            *string
	Description       *string
	PoisonousToHumans *bool
	PoisonousToPets   *bool
	Invasive          *bool
	Rare              *bool
	Tropical          *bool
	Indoor            *bool
	Outdoor           *bool
	DataSources       *[]string
}

// CreatePlant stores a catalogue plant and stamps LastUpdated.
func (s *Store) CreatePlant(ctx context.Context, plant *models.Plant) (*models.Plant, error) {
	if plant == nil {
		return nil, fmt.Errorf("store: create plant: plant is nil")
	}
	plant.ScientificName = strings.TrimSpace(plant.ScientificName)
	if plant.ScientificName == "" {
		return nil, fmt.Errorf("store: create plant: scientific name is required")
	}
	plant.DataSources = datatypes.JSONSlice[string](nonNilStrings(plant.DataSources))
	plant.LastUpdated = s.nowUTC()
	if errCreate := s.db.WithContext(ctx).Create(plant).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create plant: %w", errCreate)
	}
	return plant, nil
}

// ListPlants returns the whole catalogue ordered by id.
func (s *Store) ListPlants(ctx context.Context) ([]models.Plant, error) {
	var plants []models.Plant
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&plants).Error; errFind != nil {
		return nil, fmt.Errorf("store: list plants: %w", errFind)
	}
	return plants, nil
}

// FirstPlant returns the plant with the lowest id or nil on an empty catalogue.
func (s *Store) FirstPlant(ctx context.Context) (*models.Plant, error) {
	var plant models.Plant
	if errFind := s.db.WithContext(ctx).Order("id ASC").First(&plant).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: first plant: %w", errFind)
	}
	return &plant, nil
}

// GetPlantByID returns the plant or nil when absent.
func (s *Store) GetPlantByID(ctx context.Context, id uint64) (*models.Plant, error) {
	var plant models.Plant
	if errFind := s.db.WithContext(ctx).First(&plant, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get plant: %w", errFind)
	}
	return &plant, nil
}

// GetPlantByScientificName returns the plant with the exact name or nil.
func (s *Store) GetPlantByScientificName(ctx context.Context, name string) (*models.Plant, error) {
	var plant models.Plant
	errFind := s.db.WithContext(ctx).
		Where("scientific_name = ?", strings.TrimSpace(name)).
		First(&plant).Error
	if errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get plant by scientific name: %w", errFind)
	}
	return &plant, nil
}

// SearchPlants matches query as a case-insensitive substring of the
// scientific or common name.
func (s *Store) SearchPlants(ctx context.Context, query string) ([]models.Plant, error) {
	conn := s.db.WithContext(ctx)
	pattern := db.ContainsPattern(conn, query)
	var plants []models.Plant
	errFind := conn.
		Where(
			db.CaseInsensitiveLikeExpr(conn, "scientific_name")+" OR "+db.CaseInsensitiveLikeExpr(conn, "common_name"),
			pattern, pattern,
		).
		Order("id ASC").
		Find(&plants).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: search plants: %w", errFind)
	}
	return plants, nil
}

// FilterPlants returns the plants matching every set field of filter.
func (s *Store) FilterPlants(ctx context.Context, filter PlantFilter) ([]models.Plant, error) {
	q := s.db.WithContext(ctx).Model(&models.Plant{})
	if plantType := strings.TrimSpace(filter.PlantType); plantType != "" {
		q = q.Where("plant_type = ?", plantType)
	}
	if filter.Indoor != nil {
		q = q.Where("indoor = ?", *filter.Indoor)
	}
	if filter.Outdoor != nil {
		q = q.Where("outdoor = ?", *filter.Outdoor)
	}
	if filter.Poisonous != nil {
		q = q.Where("(poisonous_to_humans = ? OR poisonous_to_pets = ?)", *filter.Poisonous, *filter.Poisonous)
	}
	if filter.Tropical != nil {
		q = q.Where("tropical = ?", *filter.Tropical)
	}
	var plants []models.Plant
	if errFind := q.Order("id ASC").Find(&plants).Error; errFind != nil {
		return nil, fmt.Errorf("store: filter plants: %w", errFind)
	}
	return plants, nil
}

// UpdatePlant applies the non-nil fields of upd and always bumps LastUpdated.
func (s *Store) UpdatePlant(ctx context.Context, id uint64, upd PlantUpdate) (*models.Plant, error) {
	plant, errGet := s.GetPlantByID(ctx, id)
	if errGet != nil || plant == nil {
		return nil, errGet
	}

	updates := map[string]any{"last_updated": s.nowUTC()}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setBool := func(column string, value *bool) {
		if value != nil {
			updates[column] = *value
		}
	}
	setString("scientific_name", upd.ScientificName)
	setString("common_name", upd.CommonName)
	setString("plant_type", upd.PlantType)
	setString("image_url", upd.ImageURL)
	setString("origin", upd.Origin)
	setString("description", upd.Description)
	setBool("poisonous_to_humans", upd.PoisonousToHumans)
	setBool("poisonous_to_pets", upd.PoisonousToPets)
	setBool("invasive", upd.Invasive)
	setBool("rare", upd.Rare)
	setBool("tropical", upd.Tropical)
	setBool("indoor", upd.Indoor)
	setBool("outdoor", upd.Outdoor)
	if upd.DataSources != nil {
		updates["data_sources"] = datatypes.JSONSlice[string](nonNilStrings(*upd.DataSources))
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.Plant{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("store: update plant: %w", errUpdate)
	}
	return s.GetPlantByID(ctx, id)
}

// DeletePlant removes the plant and every row referencing it.
func (s *Store) DeletePlant(ctx context.Context, id uint64) (bool, error) {
	deleted := false
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userPlantIDs []uint64
		if errPluck := tx.Model(&models.UserPlant{}).
			Where("plant_id = ?", id).
			Pluck("id", &userPlantIDs).Error; errPluck != nil {
			return errPluck
		}
		if errChildren := deleteUserPlantChildren(tx, userPlantIDs); errChildren != nil {
			return errChildren
		}

		dependents := []struct {
			model any
			where string
		}{
			{&models.UserPlant{}, "plant_id = ?"},
			{&models.IdentificationHistory{}, "identified_plant_id = ?"},
			{&models.UserFavorite{}, "plant_id = ?"},
			{&models.PlantRegionCare{}, "plant_id = ?"},
			{&models.PlantHealthIssue{}, "plant_id = ?"},
			{&models.PlantCareDetails{}, "plant_id = ?"},
		}
		for _, dep := range dependents {
			if errDelete := tx.Where(dep.where, id).Delete(dep.model).Error; errDelete != nil {
				return errDelete
			}
		}
		if errDelete := tx.Where("plant_id_1 = ? OR plant_id_2 = ?", id, id).
			Delete(&models.RelatedPlant{}).Error; errDelete != nil {
			return errDelete
		}

		res := tx.Delete(&models.Plant{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if errTx != nil {
		return false, fmt.Errorf("store: delete plant: %w", errTx)
	}
	return deleted, nil
}
