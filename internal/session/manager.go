package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rootly-app/rootly/internal/config"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// Manager is a Store that prefers Redis when configured and falls back to
// process memory while Redis is unavailable.
type Manager struct {
	cfg            config.RedisConfig
	nowFn          func() time.Time
	memory         *MemoryStore
	newRedisClient RedisClientFactory

	mu           sync.Mutex
	redisStore   *RedisStore
	redisClient  *redis.Client
	breakerUntil time.Time
}

// NewManager constructs a Manager with default dependencies when nil.
func NewManager(cfg config.RedisConfig, nowFn func() time.Time, newRedisClient RedisClientFactory) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		cfg.Enabled = false
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = config.DefaultRedisPrefix
	}
	return &Manager{
		cfg:            cfg,
		nowFn:          nowFn,
		memory:         NewMemoryStore(nowFn),
		newRedisClient: newRedisClient,
	}
}

// Load reads from the active backend.
func (m *Manager) Load(ctx context.Context, id string) (*Data, error) {
	if store := m.redis(ctx); store != nil {
		data, errLoad := store.Load(ctx, id)
		if errLoad == nil {
			return data, nil
		}
		m.tripBreaker(errLoad)
	}
	return m.memory.Load(ctx, id)
}

// Save writes to the active backend.
func (m *Manager) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	if store := m.redis(ctx); store != nil {
		errSave := store.Save(ctx, id, data, ttl)
		if errSave == nil {
			return nil
		}
		m.tripBreaker(errSave)
	}
	return m.memory.Save(ctx, id, data, ttl)
}

// Delete removes id from both backends.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if store := m.redis(ctx); store != nil {
		if errDelete := store.Delete(ctx, id); errDelete != nil {
			m.tripBreaker(errDelete)
		}
	}
	return m.memory.Delete(ctx, id)
}

// Close releases the Redis client if one was opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisClient == nil {
		return nil
	}
	errClose := m.redisClient.Close()
	m.redisClient = nil
	m.redisStore = nil
	return errClose
}

// redis returns the Redis backend, or nil when disabled or broken.
func (m *Manager) redis(ctx context.Context) *RedisStore {
	if !m.cfg.Enabled {
		return nil
	}
	now := m.nowFn()
	if m.isBreakerActive(now) {
		return nil
	}
	store, errEnsure := m.ensureRedis(ctx)
	if errEnsure != nil {
		m.tripBreaker(errEnsure)
		return nil
	}
	return store
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error) {
	if err == nil {
		return
	}
	now := m.nowFn()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	if m.redisClient != nil {
		_ = m.redisClient.Close()
		m.redisClient = nil
		m.redisStore = nil
	}
	log.WithError(err).Warn("session: redis unavailable, falling back to memory")
}

func (m *Manager) ensureRedis(ctx context.Context) (*RedisStore, error) {
	if m.cfg.Addr == "" {
		return nil, errors.New("session redis: missing address")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisStore != nil {
		return m.redisStore, nil
	}

	db := m.cfg.DB
	if db < 0 {
		db = 0
	}
	client := m.newRedisClient(&redis.Options{
		Addr:     m.cfg.Addr,
		Password: m.cfg.Password,
		DB:       db,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	m.redisClient = client
	m.redisStore = NewRedisStore(client, m.cfg.Prefix)
	return m.redisStore, nil
}
