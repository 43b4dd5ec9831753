package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath     = "CONFIG_PATH"
	EnvDBConnection   = "DB_CONNECTION"
	EnvSecretKey      = "SECRET_KEY"
	EnvLegacySecret   = "FLASK_SECRET_KEY"
	EnvUploadDir      = "UPLOAD_DIR"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvPort           = "PORT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvSessionTTL     = "SESSION_TTL"
	EnvSessionSecure  = "SESSION_SECURE"
	EnvLoginRateLimit = "LOGIN_RATE_LIMIT"
	EnvAdminEmails    = "ADMIN_EMAILS"
	EnvCatalogSource  = "CATALOG_SOURCE"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultDSN            = "file:rootly.db"
	DefaultPort           = 5000
	DefaultUploadDir      = "static/uploads"
	DefaultSessionTTL     = 7 * 24 * time.Hour
	DefaultSessionCookie  = "rootly_session"
	DefaultRedisPrefix    = "rootly"
	DefaultLoginAttempts  = 10
	DefaultLoginWindow    = time.Minute
	DefaultLogLevel       = "info"
	DefaultAdminEmail     = "admin@rootly.com"
	DefaultAdminTokenTTL  = 12 * time.Hour
	devSecretKey          = "dev-secret-key"
	defaultConfigFileName = "./config.yaml"
	defaultEnvFileName    = ".env"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads a .env file when present and resolves the config path.
func LoadFromEnv() (AppConfig, error) {
	if errDotenv := godotenv.Load(defaultEnvFileName); errDotenv != nil && !errors.Is(errDotenv, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load %s: %w", defaultEnvFileName, errDotenv)
	}
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = defaultConfigFileName
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// SessionConfig controls session cookies and lifetime.
type SessionConfig struct {
	CookieName string        `yaml:"cookie-name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// RedisConfig configures the optional Redis backend for sessions and throttling.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RateLimitConfig throttles login and registration attempts per client.
type RateLimitConfig struct {
	LoginAttempts int           `yaml:"login-attempts"`
	Window        time.Duration `yaml:"window"`
}

// AdminConfig controls access to the catalogue admin API.
type AdminConfig struct {
	Emails   []string      `yaml:"emails"`
	TokenTTL time.Duration `yaml:"token-ttl"`
}

// IsAdmin reports whether email belongs to an admin account.
func (a AdminConfig) IsAdmin(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, candidate := range a.Emails {
		if strings.EqualFold(strings.TrimSpace(candidate), email) {
			return true
		}
	}
	return false
}

// CatalogConfig points the catalogue syncer at a JSON source.
type CatalogConfig struct {
	Source   string        `yaml:"source"`   // http(s) URL or file path; empty disables syncing.
	Interval time.Duration `yaml:"interval"` // Resync period.
}

// ServerConfig is the full runtime configuration of the web server.
type ServerConfig struct {
	Host        string          `yaml:"host"`
	Port        int             `yaml:"port"`
	DatabaseDSN string          `yaml:"database-dsn"`
	SecretKey   string          `yaml:"secret-key"`
	UploadDir   string          `yaml:"upload-dir"`
	Debug       bool            `yaml:"debug"`
	LogLevel    string          `yaml:"log-level"`
	Session     SessionConfig   `yaml:"session"`
	Redis       RedisConfig     `yaml:"redis"`
	RateLimit   RateLimitConfig `yaml:"rate-limit"`
	Admin       AdminConfig     `yaml:"admin"`
	Catalog     CatalogConfig   `yaml:"catalog"`
}

// LoadDatabaseDSN resolves the database DSN from the environment, then the
// YAML config file, falling back to a local SQLite file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDSN, nil
		}
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return DefaultDSN, nil
}

// LoadServerConfig reads the YAML config file (optional) and applies
// environment overrides and defaults.
func LoadServerConfig(configPath string) (ServerConfig, error) {
	var cfg ServerConfig

	data, errRead := os.ReadFile(configPath)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return ServerConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return ServerConfig{}, fmt.Errorf("read config file: %w", errRead)
	}

	dsn, errDSN := LoadDatabaseDSN(configPath)
	if errDSN != nil {
		return ServerConfig{}, errDSN
	}
	cfg.DatabaseDSN = dsn

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *ServerConfig) {
	if secret := strings.TrimSpace(os.Getenv(EnvSecretKey)); secret != "" {
		cfg.SecretKey = secret
	} else if legacy := strings.TrimSpace(os.Getenv(EnvLegacySecret)); legacy != "" && cfg.SecretKey == "" {
		cfg.SecretKey = legacy
	}
	if dir := strings.TrimSpace(os.Getenv(EnvUploadDir)); dir != "" {
		cfg.UploadDir = dir
	}
	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if password := os.Getenv(EnvRedisPassword); password != "" {
		cfg.Redis.Password = password
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 {
			cfg.Port = port
		}
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if ttlRaw := strings.TrimSpace(os.Getenv(EnvSessionTTL)); ttlRaw != "" {
		if ttl, errParse := time.ParseDuration(ttlRaw); errParse == nil && ttl > 0 {
			cfg.Session.TTL = ttl
		}
	}
	if secureRaw := strings.TrimSpace(os.Getenv(EnvSessionSecure)); secureRaw != "" {
		if secure, errParse := strconv.ParseBool(secureRaw); errParse == nil {
			cfg.Session.Secure = secure
		}
	}
	if emails := splitList(os.Getenv(EnvAdminEmails)); len(emails) > 0 {
		cfg.Admin.Emails = emails
	}
	if source := strings.TrimSpace(os.Getenv(EnvCatalogSource)); source != "" {
		cfg.Catalog.Source = source
	}
	if limitRaw := strings.TrimSpace(os.Getenv(EnvLoginRateLimit)); limitRaw != "" {
		if limit, errParse := strconv.Atoi(limitRaw); errParse == nil {
			if limit == 0 {
				limit = -1
			}
			cfg.RateLimit.LoginAttempts = limit
		}
	}
}

// splitList splits a comma separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func applyDefaults(cfg *ServerConfig) {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		log.Warn("no secret key configured, using the development key")
		cfg.SecretKey = devSecretKey
	}
	if strings.TrimSpace(cfg.UploadDir) == "" {
		cfg.UploadDir = DefaultUploadDir
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		cfg.Session.CookieName = DefaultSessionCookie
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}
	if strings.TrimSpace(cfg.Redis.Prefix) == "" {
		cfg.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = DefaultLoginWindow
	}
	// A zero limit from the file keeps the default; set a negative value to disable.
	if cfg.RateLimit.LoginAttempts == 0 {
		cfg.RateLimit.LoginAttempts = DefaultLoginAttempts
	}
	if cfg.RateLimit.LoginAttempts < 0 {
		cfg.RateLimit.LoginAttempts = 0
	}
	if len(cfg.Admin.Emails) == 0 {
		cfg.Admin.Emails = []string{DefaultAdminEmail}
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = DefaultAdminTokenTTL
	}
}

// ListenAddr returns the host:port address the server binds to.
func (c ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(c.Host), c.Port)
}
