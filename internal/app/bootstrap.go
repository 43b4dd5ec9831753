package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/security"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// defaultSQLitePath is the default SQLite database file name.
const defaultSQLitePath = "rootly.db"

// ErrConfigExists is returned when a config file would be overwritten.
var ErrConfigExists = errors.New("config file already exists")

// DatabaseOptions describes the database a new config file points at.
type DatabaseOptions struct {
	Type     string // postgres or sqlite
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // SQLite file
}

// ConfigExists reports whether the config file exists at the path.
func ConfigExists(configPath string) bool {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false
	}
	return true
}

// ValidateDatabaseOptions normalizes opts and checks required fields.
func ValidateDatabaseOptions(opts *DatabaseOptions) error {
	dbType := strings.ToLower(strings.TrimSpace(opts.Type))
	if dbType == "" {
		dbType = "sqlite"
	}
	opts.Type = dbType

	switch dbType {
	case "postgres":
		if strings.TrimSpace(opts.Host) == "" {
			return fmt.Errorf("database host is required")
		}
		if opts.Port <= 0 {
			opts.Port = 5432
		}
		if strings.TrimSpace(opts.User) == "" {
			return fmt.Errorf("database username is required")
		}
		if strings.TrimSpace(opts.Name) == "" {
			return fmt.Errorf("database name is required")
		}
	case "sqlite":
		if strings.TrimSpace(opts.Path) == "" {
			opts.Path = defaultSQLitePath
		}
	default:
		return fmt.Errorf("unsupported database type %q", opts.Type)
	}
	return nil
}

// BuildDSN builds a database DSN from validated options.
func BuildDSN(opts DatabaseOptions) (string, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Type)) {
	case "", "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = defaultSQLitePath
		}
		if strings.HasPrefix(strings.ToLower(path), "file:") {
			return path, nil
		}
		return "file:" + path, nil
	case "postgres":
		sslMode := strings.TrimSpace(opts.SSLMode)
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Path:     "/" + opts.Name,
			RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
		}
		if opts.Password != "" {
			u.User = url.UserPassword(opts.User, opts.Password)
		} else {
			u.User = url.User(opts.User)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database type")
	}
}

// CheckDatabaseConnection validates that the DSN can connect and ping.
func CheckDatabaseConnection(dsn string) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	defer func() {
		if errClose := sqlDB.Close(); errClose != nil {
			log.Errorf("sql db close error: %v", errClose)
		}
	}()
	return sqlDB.Ping()
}

// configFile maps YAML fields for the generated config file.
type configFile struct {
	Host        string     `yaml:"host"`
	Port        int        `yaml:"port"`
	DatabaseDSN string     `yaml:"database-dsn"`
	SecretKey   string     `yaml:"secret-key"`
	UploadDir   string     `yaml:"upload-dir"`
	Debug       bool       `yaml:"debug"`
	LogLevel    string     `yaml:"log-level"`
	Session     sessionCfg `yaml:"session"`
}

// sessionCfg holds session settings for the generated config file.
type sessionCfg struct {
	TTL    string `yaml:"ttl"`
	Secure bool   `yaml:"secure"`
}

// generateSecretKey creates a random session signing key.
func generateSecretKey() (string, error) {
	secret, err := security.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate secret key: %w", err)
	}
	return secret, nil
}

// WriteConfigFile writes an initial config file with a fresh secret key.
// It refuses to overwrite an existing file.
func WriteConfigFile(configPath string, dsn string, port int) error {
	if ConfigExists(configPath) {
		return fmt.Errorf("%s: %w", configPath, ErrConfigExists)
	}
	if port <= 0 {
		port = config.DefaultPort
	}
	secret, errSecret := generateSecretKey()
	if errSecret != nil {
		return errSecret
	}
	cfg := configFile{
		Port:        port,
		DatabaseDSN: dsn,
		SecretKey:   secret,
		UploadDir:   config.DefaultUploadDir,
		LogLevel:    config.DefaultLogLevel,
		Session: sessionCfg{
			TTL: config.DefaultSessionTTL.String(),
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if errMkdir := os.MkdirAll(dir, 0755); errMkdir != nil {
		return fmt.Errorf("create config dir: %w", errMkdir)
	}

	if errWrite := os.WriteFile(configPath, data, 0600); errWrite != nil {
		return fmt.Errorf("write config file: %w", errWrite)
	}
	return nil
}

// dsnInfo is a password-free description of a DSN.
type dsnInfo struct {
	Type        string
	Host        string
	Port        int
	User        string
	Name        string
	SSLMode     string
	Path        string
	PasswordSet bool
}

func (i dsnInfo) String() string {
	if i.Type == "sqlite" {
		return fmt.Sprintf("sqlite path=%s", i.Path)
	}
	return fmt.Sprintf("postgres host=%s port=%d db=%s user=%s sslmode=%s", i.Host, i.Port, i.Name, i.User, i.SSLMode)
}

func parseDSN(dsn string) (dsnInfo, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return dsnInfo{}, fmt.Errorf("empty dsn")
	}

	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "file:") || db.IsSQLiteDSN(trimmed) {
		pathPart := trimmed
		for _, prefix := range []string{"file:", "sqlite:"} {
			if strings.HasPrefix(lowered, prefix) {
				pathPart = trimmed[len(prefix):]
				break
			}
		}
		pathPart, _, _ = strings.Cut(pathPart, "?")
		return dsnInfo{Type: "sqlite", Path: strings.TrimSpace(pathPart)}, nil
	}

	u, errParse := url.Parse(trimmed)
	if errParse != nil {
		return dsnInfo{}, fmt.Errorf("parse dsn: %w", errParse)
	}

	switch strings.ToLower(strings.TrimSpace(u.Scheme)) {
	case "postgres", "postgresql":
		port := 5432
		if rawPort := strings.TrimSpace(u.Port()); rawPort != "" {
			parsedPort, errPort := strconv.Atoi(rawPort)
			if errPort != nil {
				return dsnInfo{}, fmt.Errorf("parse port: %w", errPort)
			}
			port = parsedPort
		}

		username := ""
		passwordSet := false
		if u.User != nil {
			username = strings.TrimSpace(u.User.Username())
			_, passwordSet = u.User.Password()
		}

		sslMode := strings.TrimSpace(u.Query().Get("sslmode"))
		if sslMode == "" {
			sslMode = "disable"
		}

		return dsnInfo{
			Type:        "postgres",
			Host:        strings.TrimSpace(u.Hostname()),
			Port:        port,
			User:        username,
			Name:        strings.TrimSpace(strings.TrimPrefix(u.Path, "/")),
			SSLMode:     sslMode,
			PasswordSet: passwordSet,
		}, nil
	default:
		return dsnInfo{}, fmt.Errorf("unsupported dsn scheme")
	}
}

// DescribeDSN returns a loggable description of dsn without credentials.
func DescribeDSN(dsn string) string {
	info, errParse := parseDSN(dsn)
	if errParse != nil {
		return "database=unknown"
	}
	return info.String()
}
