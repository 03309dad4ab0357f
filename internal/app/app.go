// Package app wires configuration, storage, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/auth"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/db"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/http/api"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/mailer"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/reputation"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RunServer boots the account gate with database-backed components and
// serves until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if jwtCfg.Secret == "" {
		return fmt.Errorf("missing jwt secret (set `jwt.secret` in config file or %s)", config.EnvJWTSecret)
	}

	redisCache := reputation.NewRedisCache(config.LoadRedisConfig(configPath))
	sources := reputation.NewSources(config.LoadReputationConfig(configPath))
	resolver := reputation.NewResolver(reputation.NewGormCache(conn), redisCache, sources, nil)

	mailCfg := config.LoadMailConfig(configPath)
	svc := auth.NewService(conn, resolver, mailer.New(mailCfg), jwtCfg, mailCfg.BaseURL, nil)

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.RegisterRoutes(engine, conn, svc, jwtCfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting account gate on :%d with config=%s", port, configPath)
		if errServe := server.ListenAndServe(); errServe != nil && errServe != http.ErrServerClosed {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}
