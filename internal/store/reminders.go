package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rootly-app/rootly/internal/models"
)

// ReminderUpdate lists the reminder fields that may change.
type ReminderUpdate struct {
	ReminderType     *string
	Frequency        *string
	NextReminderDate *time.Time
	IsActive         *bool
}

// NewReminder carries the fields of a reminder to schedule.
type NewReminder struct {
	UserPlantID      uint64
	ReminderType     string
	Frequency        string
	NextReminderDate time.Time // Zero means today.
	Paused           bool      // Store the reminder inactive.
}

// CreateReminder schedules a reminder, active unless in.Paused is set.
func (s *Store) CreateReminder(ctx context.Context, in NewReminder) (*models.Reminder, error) {
	if in.UserPlantID == 0 {
		return nil, fmt.Errorf("store: create reminder: user plant id is required")
	}
	reminder := models.Reminder{
		UserPlantID:      in.UserPlantID,
		ReminderType:     strings.TrimSpace(in.ReminderType),
		Frequency:        strings.TrimSpace(in.Frequency),
		NextReminderDate: s.today(),
		IsActive:         !in.Paused,
	}
	if !in.NextReminderDate.IsZero() {
		reminder.NextReminderDate = StartOfDay(in.NextReminderDate)
	}
	if errCreate := s.db.WithContext(ctx).Create(&reminder).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create reminder: %w", errCreate)
	}
	return &reminder, nil
}

// GetReminderByID returns the reminder or nil when absent.
func (s *Store) GetReminderByID(ctx context.Context, id uint64) (*models.Reminder, error) {
	var reminder models.Reminder
	if errFind := s.db.WithContext(ctx).First(&reminder, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get reminder: %w", errFind)
	}
	return &reminder, nil
}

// ListRemindersByUserPlant returns every reminder of a user plant.
func (s *Store) ListRemindersByUserPlant(ctx context.Context, userPlantID uint64) ([]models.Reminder, error) {
	var reminders []models.Reminder
	errFind := s.db.WithContext(ctx).
		Where("user_plant_id = ?", userPlantID).
		Order("id ASC").
		Find(&reminders).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list reminders: %w", errFind)
	}
	return reminders, nil
}

// ListActiveRemindersByUserPlant returns the active reminders of a user
// plant, soonest first.
func (s *Store) ListActiveRemindersByUserPlant(ctx context.Context, userPlantID uint64) ([]models.Reminder, error) {
	var reminders []models.Reminder
	errFind := s.db.WithContext(ctx).
		Where("user_plant_id = ? AND is_active = ?", userPlantID, true).
		Order("next_reminder_date ASC, id ASC").
		Find(&reminders).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list active reminders: %w", errFind)
	}
	return reminders, nil
}

// ListUpcomingReminders returns the active reminders of all plants owned by
// userID that are due within days days (overdue ones included), soonest
// first. days <= 0 uses DefaultUpcomingReminderDays.
func (s *Store) ListUpcomingReminders(ctx context.Context, userID uint64, days int) ([]models.Reminder, error) {
	if days <= 0 {
		days = DefaultUpcomingReminderDays
	}
	end := s.today().AddDate(0, 0, days)

	var reminders []models.Reminder
	errFind := s.db.WithContext(ctx).
		Preload("UserPlant.Plant").
		Joins("JOIN user_plants ON user_plants.id = reminders.user_plant_id").
		Where("user_plants.user_id = ? AND reminders.is_active = ? AND reminders.next_reminder_date <= ?", userID, true, end).
		Order("reminders.next_reminder_date ASC, reminders.id ASC").
		Find(&reminders).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list upcoming reminders: %w", errFind)
	}
	return reminders, nil
}

// UpdateReminder applies the non-nil fields of upd.
func (s *Store) UpdateReminder(ctx context.Context, id uint64, upd ReminderUpdate) (*models.Reminder, error) {
	reminder, errGet := s.GetReminderByID(ctx, id)
	if errGet != nil || reminder == nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if upd.ReminderType != nil {
		updates["reminder_type"] = strings.TrimSpace(*upd.ReminderType)
	}
	if upd.Frequency != nil {
		updates["frequency"] = strings.TrimSpace(*upd.Frequency)
	}
	if upd.NextReminderDate != nil {
		updates["next_reminder_date"] = StartOfDay(*upd.NextReminderDate)
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if len(updates) == 0 {
		return reminder, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("store: update reminder: %w", errUpdate)
	}
	return s.GetReminderByID(ctx, id)
}

// DeleteReminder removes a reminder.
func (s *Store) DeleteReminder(ctx context.Context, id uint64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.Reminder{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("store: delete reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
