package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rootly-app/rootly/internal/models"
)

// CreateCareEvent appends an entry to the care log. A zero Date means now.
func (s *Store) CreateCareEvent(ctx context.Context, event *models.CareEvent) (*models.CareEvent, error) {
	if event == nil {
		return nil, fmt.Errorf("store: create care event: event is nil")
	}
	if event.UserPlantID == 0 {
		return nil, fmt.Errorf("store: create care event: user plant id is required")
	}
	event.EventType = strings.TrimSpace(event.EventType)
	if event.Date.IsZero() {
		event.Date = s.nowUTC()
	} else {
		event.Date = event.Date.UTC()
	}
	if errCreate := s.db.WithContext(ctx).Create(event).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create care event: %w", errCreate)
	}
	return event, nil
}

// ListCareEventsByUserPlant returns the care log of a user plant, newest first.
func (s *Store) ListCareEventsByUserPlant(ctx context.Context, userPlantID uint64) ([]models.CareEvent, error) {
	var events []models.CareEvent
	errFind := s.db.WithContext(ctx).
		Where("user_plant_id = ?", userPlantID).
		Order("date DESC, id DESC").
		Find(&events).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list care events: %w", errFind)
	}
	return events, nil
}

// ListRecentCareEvents returns the care events of all plants owned by userID
// from the last days days, newest first. days <= 0 uses DefaultRecentCareDays.
func (s *Store) ListRecentCareEvents(ctx context.Context, userID uint64, days int) ([]models.CareEvent, error) {
	if days <= 0 {
		days = DefaultRecentCareDays
	}
	since := s.nowUTC().Add(-time.Duration(days) * 24 * time.Hour)

	var events []models.CareEvent
	errFind := s.db.WithContext(ctx).
		Preload("UserPlant.Plant").
		Joins("JOIN user_plants ON user_plants.id = care_events.user_plant_id").
		Where("user_plants.user_id = ? AND care_events.date >= ?", userID, since).
		Order("care_events.date DESC, care_events.id DESC").
		Find(&events).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list recent care events: %w", errFind)
	}
	return events, nil
}
