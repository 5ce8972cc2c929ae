package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"recipe-share-api/internal/app"
	"recipe-share-api/internal/core/cache"
	"recipe-share-api/internal/core/config"
	"recipe-share-api/internal/core/logger"
	"recipe-share-api/internal/core/server"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/handler"
	"recipe-share-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// redis 只用于对账互斥；连不上时退化为单实例运行
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rc.Close()
	var locker service.Locker = rc
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := rc.Ping(pctx); err != nil {
		log.Warn("redis unavailable; reconcile runs without a cross-instance lock", zap.Error(err))
		locker = nil
	}
	cancel()

	lockTTL := time.Duration(cfg.Reconcile.LockTTLSec) * time.Second
	rec := service.NewReconciler(a.Deps, locker, lockTTL)
	a.Handlers.Reconciler = rec
	if cfg.Reconcile.Enabled {
		go rec.Run(ctx, time.Duration(cfg.Reconcile.IntervalMin)*time.Minute)
	}

	reg := router.NewRegistry(handler.AdminModules(a.Handlers)...)
	r := router.NewAdminEngine(log.Named("admin"), a.ServerOptions(), a.Limits(), a.JWT, reg)

	ah := cfg.App.Admin
	srv := server.BuildServer(server.Addr(ah.Host, ah.Port), r, 5*time.Second, 10*time.Minute, 60*time.Second, log)

	baseURL := server.HumanURL(ah.Host, ah.Port)
	log.Info("admin api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
		zap.Bool("reconcile", cfg.Reconcile.Enabled),
	)
	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin api stopped with error", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
