package store

import (
	"context"
	"fmt"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/gorm/clause"
)

// CreateUserFavorite favorites plantID for userID. Favoriting an already
// favorited plant returns the existing row unchanged.
func (s *Store) CreateUserFavorite(ctx context.Context, userID, plantID uint64) (*models.UserFavorite, error) {
	if userID == 0 || plantID == 0 {
		return nil, fmt.Errorf("store: create favorite: user and plant are required")
	}
	existing, errGet := s.getUserFavorite(ctx, userID, plantID)
	if errGet != nil {
		return nil, errGet
	}
	if existing != nil {
		return existing, nil
	}

	favorite := models.UserFavorite{
		UserID:      userID,
		PlantID:     plantID,
		FavoritedAt: s.nowUTC(),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "plant_id"}},
			DoNothing: true,
		}).
		Create(&favorite)
	if res.Error != nil {
		return nil, fmt.Errorf("store: create favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// A concurrent request inserted the pair first.
		return s.getUserFavorite(ctx, userID, plantID)
	}
	return &favorite, nil
}

func (s *Store) getUserFavorite(ctx context.Context, userID, plantID uint64) (*models.UserFavorite, error) {
	var favorite models.UserFavorite
	errFind := s.db.WithContext(ctx).
		Where("user_id = ? AND plant_id = ?", userID, plantID).
		First(&favorite).Error
	if errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get favorite: %w", errFind)
	}
	return &favorite, nil
}

// IsFavorite reports whether userID has favorited plantID.
func (s *Store) IsFavorite(ctx context.Context, userID, plantID uint64) (bool, error) {
	favorite, errGet := s.getUserFavorite(ctx, userID, plantID)
	if errGet != nil {
		return false, errGet
	}
	return favorite != nil, nil
}

// ListUserFavorites returns a user's favorites with plants, newest first.
func (s *Store) ListUserFavorites(ctx context.Context, userID uint64) ([]models.UserFavorite, error) {
	var favorites []models.UserFavorite
	errFind := s.db.WithContext(ctx).
		Preload("Plant").
		Where("user_id = ?", userID).
		Order("favorited_at DESC, id DESC").
		Find(&favorites).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list favorites: %w", errFind)
	}
	return favorites, nil
}

// DeleteUserFavorite removes the (userID, plantID) favorite.
func (s *Store) DeleteUserFavorite(ctx context.Context, userID, plantID uint64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND plant_id = ?", userID, plantID).
		Delete(&models.UserFavorite{})
	if res.Error != nil {
		return false, fmt.Errorf("store: delete favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
