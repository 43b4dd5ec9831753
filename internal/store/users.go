package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewUser carries the fields accepted at registration.
type NewUser struct {
	Username    string
	Email       string
	Password    string
	RegionID    *uint64
	Preferences datatypes.JSON
}

// UserUpdate lists the user fields that may change. Nil fields are left as is.
type UserUpdate struct {
	Username    *string
	Email       *string
	Password    *string         // Re-hashed before storage.
	RegionID    *uint64         // Zero clears the region.
	Preferences *datatypes.JSON // Replaces the stored preferences.
}

// CreateUser hashes the password and stores a new user.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, fmt.Errorf("store: create user: email is required")
	}
	existing, errLookup := s.GetUserByEmail(ctx, email)
	if errLookup != nil {
		return nil, errLookup
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user := models.User{
		Username:    strings.TrimSpace(in.Username),
		Email:       email,
		RegionID:    in.RegionID,
		Preferences: in.Preferences,
		CreatedAt:   s.nowUTC(),
	}
	if errHash := user.SetPassword(in.Password); errHash != nil {
		return nil, fmt.Errorf("store: create user: %w", errHash)
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("store: create user: %w", errCreate)
	}
	return &user, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; errFind != nil {
		return nil, fmt.Errorf("store: list users: %w", errFind)
	}
	return users, nil
}

// GetUserByID returns the user or nil when absent.
func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Preload("Region").First(&user, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get user: %w", errFind)
	}
	return &user, nil
}

// GetUserByEmail returns the user with the exact email or nil when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(email)).
		First(&user).Error
	if errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get user by email: %w", errFind)
	}
	return &user, nil
}

// UpdateUser applies the non-nil fields of upd and returns the stored user.
func (s *Store) UpdateUser(ctx context.Context, id uint64, upd UserUpdate) (*models.User, error) {
	user, errGet := s.GetUserByID(ctx, id)
	if errGet != nil || user == nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if upd.Username != nil {
		updates["username"] = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email != user.Email {
			other, errLookup := s.GetUserByEmail(ctx, email)
			if errLookup != nil {
				return nil, errLookup
			}
			if other != nil {
				return nil, ErrEmailTaken
			}
		}
		updates["email"] = email
	}
	if upd.Password != nil {
		if errHash := user.SetPassword(*upd.Password); errHash != nil {
			return nil, fmt.Errorf("store: update user: %w", errHash)
		}
		updates["password_hash"] = user.PasswordHash
	}
	if upd.RegionID != nil {
		if *upd.RegionID == 0 {
			updates["region_id"] = nil
		} else {
			updates["region_id"] = *upd.RegionID
		}
	}
	if upd.Preferences != nil {
		updates["preferences"] = *upd.Preferences
	}
	if len(updates) == 0 {
		return user, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		if errors.Is(errUpdate, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("store: update user: %w", errUpdate)
	}
	return s.GetUserByID(ctx, id)
}

// DeleteUser removes the user together with the plants, favorites and
// identification history owned by it.
func (s *Store) DeleteUser(ctx context.Context, id uint64) (bool, error) {
	deleted := false
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userPlantIDs []uint64
		if errPluck := tx.Model(&models.UserPlant{}).
			Where("user_id = ?", id).
			Pluck("id", &userPlantIDs).Error; errPluck != nil {
			return errPluck
		}
		if errChildren := deleteUserPlantChildren(tx, userPlantIDs); errChildren != nil {
			return errChildren
		}
		if errDelete := tx.Where("user_id = ?", id).Delete(&models.IdentificationHistory{}).Error; errDelete != nil {
			return errDelete
		}
		if errDelete := tx.Where("user_id = ?", id).Delete(&models.UserFavorite{}).Error; errDelete != nil {
			return errDelete
		}
		if errDelete := tx.Where("user_id = ?", id).Delete(&models.UserPlant{}).Error; errDelete != nil {
			return errDelete
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if errTx != nil {
		return false, fmt.Errorf("store: delete user: %w", errTx)
	}
	return deleted, nil
}
