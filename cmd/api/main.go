// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/secrets-gate/internal/config"
	"github.com/yourusername/secrets-gate/internal/logger"
	"github.com/yourusername/secrets-gate/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)

	if !cfg.Production() && (cfg.SessionSecret == config.DefaultSessionSecret || cfg.JWTSecret == config.DefaultJWTSecret) {
		appLog.Warn("using insecure default secrets; override SESSION_SECRET and JWT_SECRET outside development")
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	store, closeStore, err := setupStore(ctx, cfg)
	if err != nil {
		appLog.Fatal("failed to initialize user store", "error", err, "driver", cfg.StoreDriver)
	}
	defer func() {
		if err := closeStore(); err != nil {
			appLog.Error("failed to close user store", "error", err)
		}
	}()

	sessionStore, closeSessions, err := setupSessionStore(cfg)
	if err != nil {
		appLog.Fatal("failed to initialize session store", "error", err, "driver", cfg.StoreDriver)
	}
	defer func() {
		if err := closeSessions(); err != nil {
			appLog.Error("failed to close session store", "error", err)
		}
	}()

	router, err := server.NewRouter(server.Options{
		Config:   cfg,
		Store:    store,
		Sessions: sessionStore,
		Logger:   appLog.Logger,
	})
	if err != nil {
		appLog.Fatal("failed to build router", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// サーバーの起動
	go func() {
		appLog.Info("starting HTTP server", "address", srv.Addr, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("error during server shutdown", "error", err)
	}
	appLog.Info("shutdown complete")
}
