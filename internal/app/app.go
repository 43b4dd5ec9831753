// Package app wires configuration, storage and the web server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/catalog"
	"github.com/rootly-app/rootly/internal/config"
	"github.com/rootly-app/rootly/internal/db"
	"github.com/rootly-app/rootly/internal/http/web"
	"github.com/rootly-app/rootly/internal/identify"
	"github.com/rootly-app/rootly/internal/ratelimit"
	"github.com/rootly-app/rootly/internal/session"
	"github.com/rootly-app/rootly/internal/store"
	"github.com/rootly-app/rootly/internal/upload"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// LoadConfig resolves the config path and loads the server configuration.
func LoadConfig(cfg config.AppConfig) (config.ServerConfig, error) {
	return config.LoadServerConfig(config.ResolveConfigPath(cfg.ConfigPath))
}

// ConfigureLogging applies the configured log level and gin mode.
func ConfigureLogging(cfg config.ServerConfig) {
	level, errLevel := log.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if errLevel != nil {
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// openDatabase opens and migrates the configured database.
func openDatabase(cfg config.ServerConfig) (*gorm.DB, error) {
	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return nil, errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		closeDatabase(conn)
		return nil, errMigrate
	}
	return conn, nil
}

func closeDatabase(conn *gorm.DB) {
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return
	}
	if errClose := sqlDB.Close(); errClose != nil {
		log.Errorf("sql db close error: %v", errClose)
	}
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	serverCfg, errLoad := LoadConfig(cfg)
	if errLoad != nil {
		return errLoad
	}
	conn, errOpen := openDatabase(serverCfg)
	if errOpen != nil {
		return errOpen
	}
	defer closeDatabase(conn)
	log.Infof("database migrated (%s)", DescribeDSN(serverCfg.DatabaseDSN))
	return nil
}

// RunServer serves the web application until ctx is cancelled. A positive
// port overrides the configured one.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	serverCfg, errLoad := LoadConfig(cfg)
	if errLoad != nil {
		return errLoad
	}
	if port > 0 {
		serverCfg.Port = port
	}
	ConfigureLogging(serverCfg)

	conn, errOpen := openDatabase(serverCfg)
	if errOpen != nil {
		return errOpen
	}
	defer closeDatabase(conn)

	if seeded, errSeeded := HasCatalog(conn); errSeeded != nil {
		return errSeeded
	} else if !seeded {
		log.Warn("plant catalogue is empty, run `rootly seed` to load sample data")
	}

	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	catalog.NewSyncer(conn, serverCfg.Catalog.Source, serverCfg.Catalog.Interval).Start(syncCtx)

	saver, errSaver := upload.NewSaver(serverCfg.UploadDir)
	if errSaver != nil {
		return errSaver
	}

	sessions := session.NewManager(serverCfg.Redis, nil, nil)
	defer func() {
		if errClose := sessions.Close(); errClose != nil {
			log.Errorf("session store close error: %v", errClose)
		}
	}()
	limiter := ratelimit.NewManager(ratelimit.StaticSettings(ratelimit.SettingsFromConfig(serverCfg)), nil, nil)
	defer func() {
		if errClose := limiter.Close(); errClose != nil {
			log.Errorf("rate limiter close error: %v", errClose)
		}
	}()

	st := store.New(conn)
	engine, errEngine := web.NewEngine(web.Deps{
		DB:       conn,
		Store:    st,
		Sessions: sessions,
		Cookie: session.CookieOptions{
			Name:   serverCfg.Session.CookieName,
			Secret: serverCfg.SecretKey,
			TTL:    serverCfg.Session.TTL,
			Secure: serverCfg.Session.Secure,
		},
		Limiter:  limiter,
		Saver:    saver,
		Identify: &identify.Service{Store: st, Identifier: identify.FirstPlantIdentifier{Store: st}},
		Admin:    serverCfg.Admin,
	})
	if errEngine != nil {
		return errEngine
	}

	srv := &http.Server{
		Addr:              serverCfg.ListenAddr(),
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Infof("starting rootly on %s (%s)", srv.Addr, DescribeDSN(serverCfg.DatabaseDSN))
	if errServe := serveHTTP(ctx, srv); errServe != nil {
		return errServe
	}
	log.Info("server stopped")
	return nil
}

// serveHTTP runs srv until ctx is done. The shutdown goroutine has exited
// by the time it returns, including when the listener fails to start.
func serveHTTP(ctx context.Context, srv *http.Server) error {
	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-serveCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		cancelServe()
		<-shutdownDone
		return fmt.Errorf("listen: %w", errListen)
	}
	<-shutdownDone
	return nil
}
