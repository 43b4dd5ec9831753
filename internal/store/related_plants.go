package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/gorm"
)

// RelatedPlantView is a relationship seen from one of its plants.
type RelatedPlantView struct {
	RelatedID        uint64 // Relationship row ID.
	PlantID          uint64 // The other plant.
	RelationshipType string
	Notes            string
}

// CreateRelatedPlants links two plants. A pair that is already linked, in
// either order, is returned unchanged.
func (s *Store) CreateRelatedPlants(ctx context.Context, plantID1, plantID2 uint64, relationshipType, notes string) (*models.RelatedPlant, error) {
	if plantID1 == 0 || plantID2 == 0 {
		return nil, fmt.Errorf("store: create related plants: both plants are required")
	}
	if plantID1 == plantID2 {
		return nil, fmt.Errorf("store: create related plants: a plant cannot relate to itself")
	}

	var result models.RelatedPlant
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errFind := tx.
			Where("(plant_id_1 = ? AND plant_id_2 = ?) OR (plant_id_1 = ? AND plant_id_2 = ?)",
				plantID1, plantID2, plantID2, plantID1).
			First(&result).Error
		if errFind == nil {
			return nil
		}
		if !notFound(errFind) {
			return errFind
		}
		result = models.RelatedPlant{
			PlantID1:         plantID1,
			PlantID2:         plantID2,
			RelationshipType: strings.TrimSpace(relationshipType),
			Notes:            notes,
		}
		return tx.Create(&result).Error
	})
	if errTx != nil {
		return nil, fmt.Errorf("store: create related plants: %w", errTx)
	}
	return &result, nil
}

// ListRelatedPlants returns every relationship involving plantID, projected
// so that PlantID is always the other member.
func (s *Store) ListRelatedPlants(ctx context.Context, plantID uint64) ([]RelatedPlantView, error) {
	var rows []models.RelatedPlant
	errFind := s.db.WithContext(ctx).
		Where("plant_id_1 = ? OR plant_id_2 = ?", plantID, plantID).
		Order("id ASC").
		Find(&rows).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list related plants: %w", errFind)
	}

	views := make([]RelatedPlantView, 0, len(rows))
	for _, row := range rows {
		other := row.PlantID2
		if row.PlantID2 == plantID {
			other = row.PlantID1
		}
		views = append(views, RelatedPlantView{
			RelatedID:        row.ID,
			PlantID:          other,
			RelationshipType: row.RelationshipType,
			Notes:            row.Notes,
		})
	}
	return views, nil
}
