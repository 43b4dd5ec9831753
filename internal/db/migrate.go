package db

import (
	"fmt"

	"github.com/rootly-app/rootly/internal/models"
	"gorm.io/gorm"
)

// schemaModels lists every table in dependency order.
func schemaModels() []any {
	return []any{
		&models.Region{},
		&models.User{},
		&models.Plant{},
		&models.PlantCareDetails{},
		&models.PlantHealthIssue{},
		&models.RelatedPlant{},
		&models.PlantRegionCare{},
		&models.UserPlant{},
		&models.CareEvent{},
		&models.Reminder{},
		&models.HealthAssessment{},
		&models.IdentificationHistory{},
		&models.UserFavorite{},
	}
}

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// ddl defines an index or DDL statement to apply.
type ddl struct {
	name string // Human-readable name for error reporting.
	sql  string // SQL to execute.
}

// sharedIndexes are valid on both PostgreSQL and SQLite.
var sharedIndexes = []ddl{
	{
		name: "idx_care_events_user_plant_date",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_care_events_user_plant_date
			ON care_events (user_plant_id, date DESC)
		`,
	},
	{
		name: "idx_reminders_active_due",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_reminders_active_due
			ON reminders (user_plant_id, is_active, next_reminder_date)
		`,
	},
	{
		name: "idx_health_assessments_user_plant_date",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_health_assessments_user_plant_date
			ON health_assessments (user_plant_id, assessment_date DESC)
		`,
	},
	{
		name: "idx_identification_history_user_date",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_identification_history_user_date
			ON identification_history (user_id, identified_at DESC)
		`,
	},
	{
		name: "idx_plant_region_care_plant_region",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_plant_region_care_plant_region
			ON plant_region_care (plant_id, region_id)
		`,
	},
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(schemaModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errPrefsDefault := conn.Exec(`
		ALTER TABLE users
		ALTER COLUMN preferences SET DEFAULT '{}'::jsonb
	`).Error; errPrefsDefault != nil {
		return fmt.Errorf("db: default user preferences: %w", errPrefsDefault)
	}

	for _, item := range sharedIndexes {
		if errIdx := conn.Exec(item.sql).Error; errIdx != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errIdx)
		}
	}

	_ = conn.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error

	// trgmIndex defines trigram and fallback index statements.
	type trgmIndex struct {
		name     string // Human-readable name for error reporting.
		trgmSQL  string // Trigram index SQL.
		lowerSQL string // Lowercase fallback index SQL.
	}
	trgmIndexes := []trgmIndex{
		{
			name: "idx_plants_common_name",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_plants_common_name_trgm
				ON plants USING gin (common_name gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_plants_common_name_lower
				ON plants (LOWER(common_name))
			`,
		},
		{
			name: "idx_plants_scientific_name",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_plants_scientific_name_trgm
				ON plants USING gin (scientific_name gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_plants_scientific_name_lower
				ON plants (LOWER(scientific_name))
			`,
		},
	}
	for _, item := range trgmIndexes {
		if errIdx := conn.Exec(item.trgmSQL).Error; errIdx != nil {
			if errLower := conn.Exec(item.lowerSQL).Error; errLower != nil {
				return fmt.Errorf("db: create index %s: %w", item.name, errLower)
			}
		}
	}

	return nil
}

// migrateSQLite applies SQLite-specific schema updates and indexes.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(schemaModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	indexes := append([]ddl{}, sharedIndexes...)
	indexes = append(indexes,
		ddl{
			name: "idx_plants_common_name_lower",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_plants_common_name_lower
				ON plants (LOWER(common_name))
			`,
		},
		ddl{
			name: "idx_plants_scientific_name_lower",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_plants_scientific_name_lower
				ON plants (LOWER(scientific_name))
			`,
		},
	)
	for _, item := range indexes {
		if errIdx := conn.Exec(item.sql).Error; errIdx != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errIdx)
		}
	}

	return nil
}

// Tables returns the table names managed by Migrate.
func Tables(conn *gorm.DB) ([]string, error) {
	names := make([]string, 0, len(schemaModels()))
	for _, model := range schemaModels() {
		stmt := &gorm.Statement{DB: conn}
		if errParse := stmt.Parse(model); errParse != nil {
			return nil, fmt.Errorf("db: parse model: %w", errParse)
		}
		names = append(names, stmt.Schema.Table)
	}
	return names, nil
}
