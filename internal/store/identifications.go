package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
)

// IdentificationUpdate lists the identification fields that may change.
type IdentificationUpdate struct {
	UserPlantID       *uint64 // Zero clears the link.
	AddedToCollection *bool
}

// CreateIdentification records an identification attempt, stamped now.
func (s *Store) CreateIdentification(ctx context.Context, ident *models.IdentificationHistory) (*models.IdentificationHistory, error) {
	if ident == nil {
		return nil, fmt.Errorf("store: create identification: identification is nil")
	}
	if ident.UserID == 0 || ident.IdentifiedPlantID == 0 {
		return nil, fmt.Errorf("store: create identification: user and plant are required")
	}
	if ident.ConfidenceScore < 0 || ident.ConfidenceScore > 1 {
		return nil, fmt.Errorf("store: create identification: confidence %v out of range", ident.ConfidenceScore)
	}
	ident.ImageURL = strings.TrimSpace(ident.ImageURL)
	ident.IdentifiedAt = s.nowUTC()
	if errCreate := s.db.WithContext(ctx).Create(ident).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create identification: %w", errCreate)
	}
	return ident, nil
}

// GetIdentificationByID returns the identification with its plant or nil.
func (s *Store) GetIdentificationByID(ctx context.Context, id uint64) (*models.IdentificationHistory, error) {
	var ident models.IdentificationHistory
	if errFind := s.db.WithContext(ctx).Preload("IdentifiedPlant").First(&ident, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get identification: %w", errFind)
	}
	return &ident, nil
}

// ListIdentificationsByUser returns a user's identification history, newest
// first.
func (s *Store) ListIdentificationsByUser(ctx context.Context, userID uint64) ([]models.IdentificationHistory, error) {
	var idents []models.IdentificationHistory
	errFind := s.db.WithContext(ctx).
		Preload("IdentifiedPlant").
		Where("user_id = ?", userID).
		Order("identified_at DESC, id DESC").
		Find(&idents).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list identifications: %w", errFind)
	}
	return idents, nil
}

// UpdateIdentification applies the non-nil fields of upd.
func (s *Store) UpdateIdentification(ctx context.Context, id uint64, upd IdentificationUpdate) (*models.IdentificationHistory, error) {
	ident, errGet := s.GetIdentificationByID(ctx, id)
	if errGet != nil || ident == nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if upd.UserPlantID != nil {
		if *upd.UserPlantID == 0 {
			updates["user_plant_id"] = nil
		} else {
			updates["user_plant_id"] = *upd.UserPlantID
		}
	}
	if upd.AddedToCollection != nil {
		updates["added_to_collection"] = *upd.AddedToCollection
	}
	if len(updates) == 0 {
		return ident, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.IdentificationHistory{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("store: update identification: %w", errUpdate)
	}
	return s.GetIdentificationByID(ctx, id)
}
