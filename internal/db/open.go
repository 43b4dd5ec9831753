package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which queries are logged as slow.
const slowQueryThreshold = 500 * time.Millisecond

// Open connects to PostgreSQL or SQLite depending on the DSN.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	gormCfg := &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}

	if IsSQLiteDSN(trimmed) {
		conn, errOpen := gorm.Open(sqlite.Open(BuildSQLiteDSN(trimmed)), gormCfg)
		if errOpen != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", errOpen)
		}
		sqlDB, errDB := conn.DB()
		if errDB != nil {
			return nil, fmt.Errorf("db: sqlite handle: %w", errDB)
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		return conn, nil
	}

	pgCfg, errParse := pgx.ParseConfig(trimmed)
	if errParse != nil {
		return nil, fmt.Errorf("db: parse postgres dsn: %w", errParse)
	}
	log.Infof("connecting to postgres %s:%d/%s as %s", pgCfg.Host, pgCfg.Port, pgCfg.Database, pgCfg.User)

	conn, errOpen := gorm.Open(postgres.New(postgres.Config{DSN: trimmed}), gormCfg)
	if errOpen != nil {
		return nil, fmt.Errorf("db: open postgres: %w", errOpen)
	}
	return conn, nil
}

// IsSQLiteDSN reports whether dsn addresses a SQLite database.
func IsSQLiteDSN(dsn string) bool {
	lowered := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lowered, "file:"), strings.HasPrefix(lowered, "sqlite:"):
		return true
	case lowered == ":memory:":
		return true
	case strings.HasSuffix(lowered, ".db"), strings.HasSuffix(lowered, ".sqlite"), strings.HasSuffix(lowered, ".sqlite3"):
		return true
	default:
		return false
	}
}

// BuildSQLiteDSN normalizes a SQLite DSN and appends the default pragmas.
func BuildSQLiteDSN(path string) string {
	dsn := strings.TrimSpace(path)
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite:") {
		dsn = strings.TrimPrefix(dsn[len("sqlite:"):], "//")
	}
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join([]string{
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
	}, "&")
}
