package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/gorm"
)

// UserPlantUpdate lists the user plant fields that may change.
type UserPlantUpdate struct {
	PlantID         *uint64
	Nickname        *string
	LocationInHome  *string
	AcquisitionDate *time.Time
	ImageURL        *string
	Notes           *string
	Status          *string
}

// CreateUserPlant adds a plant to a user's collection. The acquisition date
// defaults to today and the status to active.
func (s *Store) CreateUserPlant(ctx context.Context, userPlant *models.UserPlant) (*models.UserPlant, error) {
	if userPlant == nil {
		return nil, fmt.Errorf("store: create user plant: user plant is nil")
	}
	if userPlant.UserID == 0 || userPlant.PlantID == 0 {
		return nil, fmt.Errorf("store: create user plant: user and plant are required")
	}
	if userPlant.AcquisitionDate == nil {
		today := s.today()
		userPlant.AcquisitionDate = &today
	} else {
		day := StartOfDay(*userPlant.AcquisitionDate)
		userPlant.AcquisitionDate = &day
	}
	userPlant.Status = strings.TrimSpace(userPlant.Status)
	if userPlant.Status == "" {
		userPlant.Status = models.UserPlantStatusActive
	}
	if !models.ValidUserPlantStatus(userPlant.Status) {
		return nil, fmt.Errorf("store: create user plant: unknown status %q", userPlant.Status)
	}
	if errCreate := s.db.WithContext(ctx).Create(userPlant).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create user plant: %w", errCreate)
	}
	return userPlant, nil
}

// ListUserPlants returns the collection of a user with species preloaded.
func (s *Store) ListUserPlants(ctx context.Context, userID uint64) ([]models.UserPlant, error) {
	var userPlants []models.UserPlant
	errFind := s.db.WithContext(ctx).
		Preload("Plant").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&userPlants).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list user plants: %w", errFind)
	}
	return userPlants, nil
}

// GetUserPlantByID returns the user plant with its species or nil.
func (s *Store) GetUserPlantByID(ctx context.Context, id uint64) (*models.UserPlant, error) {
	var userPlant models.UserPlant
	if errFind := s.db.WithContext(ctx).Preload("Plant").First(&userPlant, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get user plant: %w", errFind)
	}
	return &userPlant, nil
}

// UpdateUserPlant applies the non-nil fields of upd.
func (s *Store) UpdateUserPlant(ctx context.Context, id uint64, upd UserPlantUpdate) (*models.UserPlant, error) {
	userPlant, errGet := s.GetUserPlantByID(ctx, id)
	if errGet != nil || userPlant == nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if upd.PlantID != nil && *upd.PlantID != 0 {
		updates["plant_id"] = *upd.PlantID
	}
	if upd.Nickname != nil {
		updates["nickname"] = strings.TrimSpace(*upd.Nickname)
	}
	if upd.LocationInHome != nil {
		updates["location_in_home"] = strings.TrimSpace(*upd.LocationInHome)
	}
	if upd.AcquisitionDate != nil {
		updates["acquisition_date"] = StartOfDay(*upd.AcquisitionDate)
	}
	if upd.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*upd.ImageURL)
	}
	if upd.Notes != nil {
		updates["notes"] = *upd.Notes
	}
	if upd.Status != nil {
		status := strings.TrimSpace(*upd.Status)
		if !models.ValidUserPlantStatus(status) {
			return nil, fmt.Errorf("store: update user plant: unknown status %q", status)
		}
		updates["status"] = status
	}
	if len(updates) == 0 {
		return userPlant, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.UserPlant{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("store: update user plant: %w", errUpdate)
	}
	return s.GetUserPlantByID(ctx, id)
}

// DeleteUserPlant removes the user plant with its care log, reminders and
// assessments. Identification history keeps its row but loses the link.
func (s *Store) DeleteUserPlant(ctx context.Context, id uint64) (bool, error) {
	deleted := false
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errChildren := deleteUserPlantChildren(tx, []uint64{id}); errChildren != nil {
			return errChildren
		}
		res := tx.Delete(&models.UserPlant{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if errTx != nil {
		return false, fmt.Errorf("store: delete user plant: %w", errTx)
	}
	return deleted, nil
}

// deleteUserPlantChildren removes rows owned by the given user plants.
func deleteUserPlantChildren(tx *gorm.DB, userPlantIDs []uint64) error {
	if len(userPlantIDs) == 0 {
		return nil
	}
	for _, model := range []any{&models.CareEvent{}, &models.Reminder{}, &models.HealthAssessment{}} {
		if errDelete := tx.Where("user_plant_id IN ?", userPlantIDs).Delete(model).Error; errDelete != nil {
			return errDelete
		}
	}
	if errUnlink := tx.Model(&models.IdentificationHistory{}).
		Where("user_plant_id IN ?", userPlantIDs).
		Update("user_plant_id", nil).Error; errUnlink != nil {
		return errUnlink
	}
	return nil
}
