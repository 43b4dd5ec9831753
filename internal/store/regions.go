package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
)

// CreateRegion stores a climate region.
func (s *Store) CreateRegion(ctx context.Context, region *models.Region) (*models.Region, error) {
	if region == nil {
		return nil, fmt.Errorf("store: create region: region is nil")
	}
	region.Name = strings.TrimSpace(region.Name)
	if region.Name == "" {
		return nil, fmt.Errorf("store: create region: name is required")
	}
	if errCreate := s.db.WithContext(ctx).Create(region).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create region: %w", errCreate)
	}
	return region, nil
}

// ListRegions returns every region ordered by id.
func (s *Store) ListRegions(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&regions).Error; errFind != nil {
		return nil, fmt.Errorf("store: list regions: %w", errFind)
	}
	return regions, nil
}

// GetRegionByID returns the region or nil when absent.
func (s *Store) GetRegionByID(ctx context.Context, id uint64) (*models.Region, error) {
	var region models.Region
	if errFind := s.db.WithContext(ctx).First(&region, id).Error; errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get region: %w", errFind)
	}
	return &region, nil
}

// GetRegionByName returns the region with the exact name or nil.
func (s *Store) GetRegionByName(ctx context.Context, name string) (*models.Region, error) {
	var region models.Region
	errFind := s.db.WithContext(ctx).
		Where("name = ?", strings.TrimSpace(name)).
		First(&region).Error
	if errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get region by name: %w", errFind)
	}
	return &region, nil
}

// CreatePlantRegionCare stores region-specific care for a plant.
func (s *Store) CreatePlantRegionCare(ctx context.Context, care *models.PlantRegionCare) (*models.PlantRegionCare, error) {
	if care == nil {
		return nil, fmt.Errorf("store: create region care: care is nil")
	}
	if care.PlantID == 0 || care.RegionID == 0 {
		return nil, fmt.Errorf("store: create region care: plant and region are required")
	}
	if errCreate := s.db.WithContext(ctx).Create(care).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create region care: %w", errCreate)
	}
	return care, nil
}

// GetPlantRegionCare returns the care of plantID in regionID or nil.
func (s *Store) GetPlantRegionCare(ctx context.Context, plantID, regionID uint64) (*models.PlantRegionCare, error) {
	var care models.PlantRegionCare
	errFind := s.db.WithContext(ctx).
		Where("plant_id = ? AND region_id = ?", plantID, regionID).
		Order("id ASC").
		First(&care).Error
	if errFind != nil {
		if notFound(errFind) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get region care: %w", errFind)
	}
	return &care, nil
}
