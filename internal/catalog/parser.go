// Package catalog imports plant catalogue data from JSON documents and keeps
// the plants table in step with a remote or local source.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rootly-app/rootly/internal/models"
)

type carePayload struct {
	WateringFrequency    string   `json:"watering_frequency"`
	WateringIntervalDays *int     `json:"watering_interval_days"`
	SunlightRequirements []string `json:"sunlight_requirements"`
	SunlightDurationMin  *int     `json:"sunlight_duration_min"`
	SunlightDurationMax  *int     `json:"sunlight_duration_max"`
	SunlightDurationUnit string   `json:"sunlight_duration_unit"`
	SoilPreferences      string   `json:"soil_preferences"`
	TemperatureRange     string   `json:"temperature_range"`
	FertilizingSchedule  string   `json:"fertilizing_schedule"`
	PruningMonths        []string `json:"pruning_months"`
	DifficultyLevel      string   `json:"difficulty_level"`
	GrowthRate           string   `json:"growth_rate"`
	PropagationMethods   []string `json:"propagation_methods"`
	CompanionPlants      string   `json:"companion_plants"`
}

type plantPayload struct {
	ScientificName    string       `json:"scientific_name"`
	CommonName        string       `json:"common_name"`
	PlantType         string       `json:"plant_type"`
	ImageURL          string       `json:"image_url"`
	Origin            string       `json:"origin"`
	Description       string       `json:"description"`
	PoisonousToHumans bool         `json:"poisonous_to_humans"`
	PoisonousToPets   bool         `json:"poisonous_to_pets"`
	Invasive          bool         `json:"invasive"`
	Rare              bool         `json:"rare"`
	Tropical          bool         `json:"tropical"`
	Indoor            bool         `json:"indoor"`
	Outdoor           bool         `json:"outdoor"`
	DataSources       []string     `json:"data_sources"`
	Care              *carePayload `json:"care"`
}

// Entry is one catalogue plant with its optional care profile.
type Entry struct {
	Plant models.Plant
	Care  *models.PlantCareDetails
}

// ParseCatalogPayload decodes a JSON catalogue. The document is either an
// array of plants or an object with a "plants" array. Entries are keyed by
// scientific name (case-insensitive); duplicates are merged with the first
// occurrence winning per field. source, when set, is added to every entry's
// data sources. The result is sorted by scientific name.
func ParseCatalogPayload(data []byte, source string) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parse catalog payload: empty payload")
	}

	var payloads []plantPayload
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("parse catalog payload: decode plants: %w", err)
		}
	} else {
		var wrapper struct {
			Plants []plantPayload `json:"plants"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse catalog payload: decode document: %w", err)
		}
		payloads = wrapper.Plants
	}

	source = strings.TrimSpace(source)
	entriesByKey := make(map[string]Entry)
	for _, payload := range payloads {
		entry := entryFromPayload(payload)
		if entry.Plant.ScientificName == "" {
			continue
		}
		if source != "" {
			entry.Plant.DataSources = appendUnique(entry.Plant.DataSources, source)
		}
		key := strings.ToLower(entry.Plant.ScientificName)
		if existing, ok := entriesByKey[key]; ok {
			entriesByKey[key] = mergeEntry(existing, entry)
		} else {
			entriesByKey[key] = entry
		}
	}

	if len(entriesByKey) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(entriesByKey))
	for key := range entriesByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, entriesByKey[key])
	}
	return entries, nil
}

func entryFromPayload(p plantPayload) Entry {
	entry := Entry{
		Plant: models.Plant{
			ScientificName:    strings.TrimSpace(p.ScientificName),
			CommonName:        strings.TrimSpace(p.CommonName),
			PlantType:         strings.TrimSpace(p.PlantType),
			ImageURL:          strings.TrimSpace(p.ImageURL),
			Origin:            strings.TrimSpace(p.Origin),
			Description:       strings.TrimSpace(p.Description),
			PoisonousToHumans: p.PoisonousToHumans,
			PoisonousToPets:   p.PoisonousToPets,
			Invasive:          p.Invasive,
			Rare:              p.Rare,
			Tropical:          p.Tropical,
			Indoor:            p.Indoor,
			Outdoor:           p.Outdoor,
			DataSources:       cleanList(p.DataSources),
		},
	}
	if p.Care != nil {
		entry.Care = &models.PlantCareDetails{
			WateringFrequency:    strings.TrimSpace(p.Care.WateringFrequency),
			WateringIntervalDays: p.Care.WateringIntervalDays,
			SunlightRequirements: cleanList(p.Care.SunlightRequirements),
			SunlightDurationMin:  p.Care.SunlightDurationMin,
			SunlightDurationMax:  p.Care.SunlightDurationMax,
			SunlightDurationUnit: strings.TrimSpace(p.Care.SunlightDurationUnit),
			SoilPreferences:      strings.TrimSpace(p.Care.SoilPreferences),
			TemperatureRange:     strings.TrimSpace(p.Care.TemperatureRange),
			FertilizingSchedule:  strings.TrimSpace(p.Care.FertilizingSchedule),
			PruningMonths:        cleanList(p.Care.PruningMonths),
			DifficultyLevel:      strings.TrimSpace(p.Care.DifficultyLevel),
			GrowthRate:           strings.TrimSpace(p.Care.GrowthRate),
			PropagationMethods:   cleanList(p.Care.PropagationMethods),
			CompanionPlants:      strings.TrimSpace(p.Care.CompanionPlants),
		}
		if entry.Care.SunlightDurationUnit == "" {
			entry.Care.SunlightDurationUnit = "hours"
		}
	}
	return entry
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}

func firstNonEmpty(base, incoming string) string {
	if base != "" {
		return base
	}
	return incoming
}

func mergeEntry(base, incoming Entry) Entry {
	b := &base.Plant
	in := incoming.Plant
	b.CommonName = firstNonEmpty(b.CommonName, in.CommonName)
	b.PlantType = firstNonEmpty(b.PlantType, in.PlantType)
	b.ImageURL = firstNonEmpty(b.ImageURL, in.ImageURL)
	b.Origin = firstNonEmpty(b.Origin, in.Origin)
	b.Description = firstNonEmpty(b.Description, in.Description)
	b.PoisonousToHumans = b.PoisonousToHumans || in.PoisonousToHumans
	b.PoisonousToPets = b.PoisonousToPets || in.PoisonousToPets
	b.Invasive = b.Invasive || in.Invasive
	b.Rare = b.Rare || in.Rare
	b.Tropical = b.Tropical || in.Tropical
	b.Indoor = b.Indoor || in.Indoor
	b.Outdoor = b.Outdoor || in.Outdoor
	for _, src := range in.DataSources {
		b.DataSources = appendUnique(b.DataSources, src)
	}
	if base.Care == nil {
		base.Care = incoming.Care
	}
	return base
}
