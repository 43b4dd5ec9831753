// Package identify matches an uploaded plant photo against the catalogue.
package identify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rootly-app/rootly/internal/models"
	"github.com/rootly-app/rootly/internal/store"
)

// PlaceholderConfidence is the score reported by FirstPlantIdentifier.
const PlaceholderConfidence = 0.95

// ErrNoMatch reports that no catalogue plant matched the image.
var ErrNoMatch = errors.New("identify: no matching plant")

// Match is the outcome of one identification.
type Match struct {
	Plant      *models.Plant
	Confidence float64
}

// Identifier recognizes the species in an uploaded image.
type Identifier interface {
	Identify(ctx context.Context, imageURL string) (Match, error)
}

// FirstPlantIdentifier answers every image with the first catalogue plant.
// It stands in until a recognition backend is wired.
type FirstPlantIdentifier struct {
	Store *store.Store
}

// Identify returns the first catalogue plant with PlaceholderConfidence.
func (f FirstPlantIdentifier) Identify(ctx context.Context, _ string) (Match, error) {
	plant, errFirst := f.Store.FirstPlant(ctx)
	if errFirst != nil {
		return Match{}, errFirst
	}
	if plant == nil {
		return Match{}, ErrNoMatch
	}
	return Match{Plant: plant, Confidence: PlaceholderConfidence}, nil
}

// Service runs an Identifier and records every result in the user's history.
type Service struct {
	Store      *store.Store
	Identifier Identifier
}

// Identify identifies imageURL for userID and persists the attempt.
func (s *Service) Identify(ctx context.Context, userID uint64, imageURL string) (*models.IdentificationHistory, Match, error) {
	match, errIdentify := s.Identifier.Identify(ctx, imageURL)
	if errIdentify != nil {
		return nil, Match{}, errIdentify
	}
	if match.Plant == nil {
		return nil, Match{}, ErrNoMatch
	}
	record, errCreate := s.Store.CreateIdentification(ctx, &models.IdentificationHistory{
		UserID:            userID,
		IdentifiedPlantID: match.Plant.ID,
		ImageURL:          imageURL,
		ConfidenceScore:   match.Confidence,
	})
	if errCreate != nil {
		return nil, Match{}, fmt.Errorf("identify: record: %w", errCreate)
	}
	record.IdentifiedPlant = match.Plant
	return record, match, nil
}

// AddToCollection turns identification id of userID into a user plant.
// It returns store.ErrNotFound when the identification does not belong to
// userID. Adding an already added identification returns its user plant.
func (s *Service) AddToCollection(ctx context.Context, userID, id uint64, nickname string) (*models.UserPlant, error) {
	ident, errGet := s.Store.GetIdentificationByID(ctx, id)
	if errGet != nil {
		return nil, errGet
	}
	if ident == nil || ident.UserID != userID {
		return nil, store.ErrNotFound
	}
	if ident.AddedToCollection && ident.UserPlantID != nil {
		existing, errExisting := s.Store.GetUserPlantByID(ctx, *ident.UserPlantID)
		if errExisting != nil {
			return nil, errExisting
		}
		if existing != nil {
			return existing, nil
		}
	}

	userPlant, errCreate := s.Store.CreateUserPlant(ctx, &models.UserPlant{
		UserID:   userID,
		PlantID:  ident.IdentifiedPlantID,
		Nickname: nickname,
		ImageURL: ident.ImageURL,
	})
	if errCreate != nil {
		return nil, errCreate
	}
	added := true
	if _, errUpdate := s.Store.UpdateIdentification(ctx, id, store.IdentificationUpdate{
		UserPlantID:       &userPlant.ID,
		AddedToCollection: &added,
	}); errUpdate != nil {
		return nil, errUpdate
	}
	return userPlant, nil
}
