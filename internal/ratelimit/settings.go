package ratelimit

import (
	"strings"
	"time"

	"github.com/rootly-app/rootly/internal/config"
)

// SettingsConfig captures the limiter settings in effect.
type SettingsConfig struct {
	Limit         int
	Window        time.Duration
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SettingsFromConfig maps the server configuration to limiter settings.
func SettingsFromConfig(cfg config.ServerConfig) SettingsConfig {
	out := SettingsConfig{
		Limit:         cfg.RateLimit.LoginAttempts,
		Window:        cfg.RateLimit.Window,
		RedisEnabled:  cfg.Redis.Enabled,
		RedisAddr:     strings.TrimSpace(cfg.Redis.Addr),
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   strings.TrimSpace(cfg.Redis.Prefix),
	}
	if out.Limit < 0 {
		out.Limit = 0
	}
	if out.Window <= 0 {
		out.Window = config.DefaultLoginWindow
	}
	if out.RedisDB < 0 {
		out.RedisDB = 0
	}
	if out.RedisPrefix == "" {
		out.RedisPrefix = config.DefaultRedisPrefix
	}
	if out.RedisAddr == "" {
		out.RedisEnabled = false
	}
	return out
}

// StaticSettings returns a provider that always yields cfg.
func StaticSettings(cfg SettingsConfig) SettingsProvider {
	return func() SettingsConfig { return cfg }
}
