// Package app 两个入口共用的装配：配置 → 数据库 → 存储 → 服务。
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/core/config"
	"recipe-share-api/internal/core/database"
	"recipe-share-api/internal/core/server"
	"recipe-share-api/internal/repo"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/storage/image"
	"recipe-share-api/internal/transport/http/handler"
	mdw "recipe-share-api/internal/transport/http/middleware"
	"recipe-share-api/internal/transport/http/router"
)

type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	JWT      *auth.JWTer
	Deps     service.Deps
	Handlers handler.Deps
}

// Build 打开数据库（按配置自动迁移）、初始化图片存储并构建全部服务
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, repo.Models()...); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	backend, err := image.NewBackend(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	d := service.Deps{
		Store:     repo.NewStore(db),
		Images:    image.NewService(backend, cfg.Storage.MaxImageMB, log.Named("image")),
		JWT:       jwter,
		IsAdmin:   cfg.IsAdminEmail,
		Log:       log,
		OpTimeout: cfg.DB.QueryTimeout(),
	}
	return &App{
		Cfg:  cfg,
		Log:  log,
		DB:   db,
		JWT:  jwter,
		Deps: d,
		Handlers: handler.Deps{
			Auth:        service.NewAuthService(d),
			Recipes:     service.NewRecipeService(d),
			Interaction: service.NewInteractionService(d),
			Profiles:    service.NewProfileService(d),
			Users:       service.NewUserService(d),
			RequireAuth: mdw.AuthJWT(jwter, ""),
			Log:         log.Named("http"),
		},
	}, nil
}

func (a *App) ServerOptions() server.Options {
	mode := "debug"
	if a.Cfg.App.IsProd() {
		mode = "release"
	}
	return server.Options{Mode: mode, CORSOrigins: a.Cfg.App.HTTP.CORSOrigins}
}

func (a *App) Limits() router.Limits { return router.LimitsFrom(a.Cfg.App.HTTP) }

// Close 关闭连接池
func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
