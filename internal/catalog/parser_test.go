package catalog

import (
	"testing"
)

func findEntry(entries []Entry, scientificName string) *Entry {
	for i := range entries {
		if entries[i].Plant.ScientificName == scientificName {
			return &entries[i]
		}
	}
	return nil
}

func TestParseCatalogPayload_ArrayAndWrapper(t *testing.T) {
	array := []byte(`[{"scientific_name":" Monstera deliciosa ","common_name":"Swiss Cheese Plant","indoor":true,"care":{"watering_frequency":"Weekly","watering_interval_days":7,"sunlight_requirements":["Bright indirect light",""]}},{"common_name":"No name"}]`)
	entries, err := ParseCatalogPayload(array, "plants.json")
	if err != nil {
		t.Fatalf("parse array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	monstera := findEntry(entries, "Monstera deliciosa")
	if monstera == nil {
		t.Fatalf("expected trimmed scientific name")
	}
	if !monstera.Plant.Indoor || monstera.Plant.CommonName != "Swiss Cheese Plant" {
		t.Fatalf("unexpected plant: %+v", monstera.Plant)
	}
	if len(monstera.Plant.DataSources) != 1 || monstera.Plant.DataSources[0] != "plants.json" {
		t.Fatalf("expected source in data sources, got %v", monstera.Plant.DataSources)
	}
	if monstera.Care == nil || monstera.Care.WateringIntervalDays == nil || *monstera.Care.WateringIntervalDays != 7 {
		t.Fatalf("unexpected care: %+v", monstera.Care)
	}
	if len(monstera.Care.SunlightRequirements) != 1 {
		t.Fatalf("expected blank sunlight entries dropped, got %v", monstera.Care.SunlightRequirements)
	}
	if monstera.Care.SunlightDurationUnit != "hours" {
		t.Fatalf("expected default duration unit, got %q", monstera.Care.SunlightDurationUnit)
	}

	wrapper := []byte(`{"plants":[{"scientific_name":"Ficus lyrata"},{"scientific_name":"Aloe vera"}]}`)
	entries, err = ParseCatalogPayload(wrapper, "")
	if err != nil {
		t.Fatalf("parse wrapper: %v", err)
	}
	if len(entries) != 2 || entries[0].Plant.ScientificName != "Aloe vera" {
		t.Fatalf("expected sorted entries, got %+v", entries)
	}
	if len(entries[0].Plant.DataSources) != 0 {
		t.Fatalf("expected no data sources without a source")
	}
}

func TestParseCatalogPayload_MergesDuplicates(t *testing.T) {
	payload := []byte(`[{"scientific_name":"Ficus lyrata","common_name":"Fiddle Leaf Fig","data_sources":["a"]},{"scientific_name":"ficus LYRATA","origin":"West Africa","poisonous_to_pets":true,"data_sources":["b","a"],"care":{"growth_rate":"Moderate"}}]`)

	entries, err := ParseCatalogPayload(payload, "")
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ficus := entries[0]
	if ficus.Plant.ScientificName != "Ficus lyrata" || ficus.Plant.CommonName != "Fiddle Leaf Fig" {
		t.Fatalf("expected first occurrence to win: %+v", ficus.Plant)
	}
	if ficus.Plant.Origin != "West Africa" || !ficus.Plant.PoisonousToPets {
		t.Fatalf("expected missing fields filled from duplicate: %+v", ficus.Plant)
	}
	if len(ficus.Plant.DataSources) != 2 {
		t.Fatalf("expected merged data sources, got %v", ficus.Plant.DataSources)
	}
	if ficus.Care == nil || ficus.Care.GrowthRate != "Moderate" {
		t.Fatalf("expected care from duplicate, got %+v", ficus.Care)
	}
}

func TestParseCatalogPayload_Errors(t *testing.T) {
	if _, err := ParseCatalogPayload([]byte("  "), ""); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := ParseCatalogPayload([]byte("{not json"), ""); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	entries, err := ParseCatalogPayload([]byte(`{"plants":[]}`), "")
	if err != nil || entries != nil {
		t.Fatalf("expected no entries, got %v (err=%v)", entries, err)
	}
}
