package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/datatypes"
)

// HealthAssessmentUpdate lists the assessment fields that may change.
// Resolved may only move from false to true.
type HealthAssessmentUpdate struct {
	Symptoms                 *[]string
	Diagnosis                *string
	TreatmentRecommendations *string
	ImageURL                 *string
	Resolved                 *bool
}

// CreateHealthAssessment records a diagnosis for a user plant, dated now.
func (s *Store) CreateHealthAssessment(ctx context.Context, assessment *models.HealthAssessment) (*models.HealthAssessment, error) {
	if assessment == nil {
		return nil, fmt.Errorf("store: create health assessment: assessment is nil")
	}
	if assessment.UserPlantID == 0 {
		return nil, fmt.Errorf("store: create health assessment: user plant id is required")
	}
	assessment.AssessmentDate = s.nowUTC()
	assessment.Symptoms = datatypes.JSONSlice[string](nonNilStrings(assessment.Symptoms))
	assessment.Diagnosis = strings.TrimSpace(assessment.Diagnosis)
	if errCreate := s.db.WithContext(ctx).Create(assessment).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create health assessment: %w", errCreate)
	}
	return assessment, nil
}

// GetHealthAssessmentByID returns the assessment or nil when absent.
func (s *Store) GetHealthAssessmentByID(ctx context.Context, id uint64) (*models.HealthAssessment, error) {
	var assessment models.HealthAssessment
	if errFind := s.db.WithContext(ctx).First(&assessment, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get health assessment: %w", errFind)
	}
	return &assessment, nil
}

// ListHealthAssessmentsByUserPlant returns the assessments of a user plant,
// newest first.
func (s *Store) ListHealthAssessmentsByUserPlant(ctx context.Context, userPlantID uint64) ([]models.HealthAssessment, error) {
	var assessments []models.HealthAssessment
	errFind := s.db.WithContext(ctx).
		Where("user_plant_id = ?", userPlantID).
		Order("assessment_date DESC, id DESC").
		Find(&assessments).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list health assessments: %w", errFind)
	}
	return assessments, nil
}

// UpdateHealthAssessment applies the non-nil fields of upd. Clearing the
// resolved flag of a resolved assessment returns ErrAlreadyResolved.
func (s *Store) UpdateHealthAssessment(ctx context.Context, id uint64, upd HealthAssessmentUpdate) (*models.HealthAssessment, error) {
	assessment, errGet := s.GetHealthAssessmentByID(ctx, id)
	if errGet != nil || assessment == nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if upd.Symptoms != nil {
		updates["symptoms"] = datatypes.JSONSlice[string](nonNilStrings(*upd.Symptoms))
	}
	if upd.Diagnosis != nil {
		updates["diagnosis"] = strings.TrimSpace(*upd.Diagnosis)
	}
	if upd.TreatmentRecommendations != nil {
		updates["treatment_recommendations"] = *upd.TreatmentRecommendations
	}
	if upd.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*upd.ImageURL)
	}
	if upd.Resolved != nil {
		if assessment.Resolved && !*upd.Resolved {
			return nil, ErrAlreadyResolved
		}
		updates["resolved"] = *upd.Resolved
	}
	if len(updates) == 0 {
		return assessment, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(&models.HealthAssessment{}).
		Where("id = ?", id).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("store: update health assessment: %w", errUpdate)
	}
	return s.GetHealthAssessmentByID(ctx, id)
}

// ResolveHealthAssessment marks an assessment resolved. Resolving twice is a
// no-op.
func (s *Store) ResolveHealthAssessment(ctx context.Context, id uint64) (*models.HealthAssessment, error) {
	resolved := true
	return s.UpdateHealthAssessment(ctx, id, HealthAssessmentUpdate{Resolved: &resolved})
}

// CreatePlantHealthIssue stores a known problem of a species.
func (s *Store) CreatePlantHealthIssue(ctx context.Context, issue *models.PlantHealthIssue) (*models.PlantHealthIssue, error) {
	if issue == nil {
		return nil, fmt.Errorf("store: create health issue: issue is nil")
	}
	issue.IssueName = strings.TrimSpace(issue.IssueName)
	if issue.PlantID == 0 || issue.IssueName == "" {
		return nil, fmt.Errorf("store: create health issue: plant and name are required")
	}
	if errCreate := s.db.WithContext(ctx).Create(issue).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create health issue: %w", errCreate)
	}
	return issue, nil
}

// ListHealthIssuesByPlant returns the known problems of a species.
func (s *Store) ListHealthIssuesByPlant(ctx context.Context, plantID uint64) ([]models.PlantHealthIssue, error) {
	var issues []models.PlantHealthIssue
	errFind := s.db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("id ASC").
		Find(&issues).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list health issues: %w", errFind)
	}
	return issues, nil
}
