// Package server はルーターの組み立てとルーティングの配線を行います。
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/secrets-gate/internal/auth"
	"github.com/yourusername/secrets-gate/internal/config"
	"github.com/yourusername/secrets-gate/internal/middleware"
	"github.com/yourusername/secrets-gate/internal/users"
	"github.com/yourusername/secrets-gate/internal/views"
)

const serviceName = "secrets-gate"

// Options はルーターの依存関係です。Hasher と Tokens は省略時に設定から作成します。
// Sessions を省略した場合はプロセス内のセッションストアを使います。
type Options struct {
	Config   *config.Config
	Store    users.Store
	Sessions sessions.Store
	Hasher   auth.PasswordHasher
	Tokens   *auth.TokenIssuer
	Logger   *slog.Logger
}

// NewRouter は全ミドルウェアとルートを登録した gin.Engine を返します。
func NewRouter(opts Options) (*gin.Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if opts.Store == nil {
		return nil, errors.New("store is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(auth.DefaultBcryptCost)
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = auth.NewTokenIssuer(cfg.JWTSecret)
	}

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger, "/health"),
		middleware.Recovery(logger, auth.MsgServerError),
	)
	router.SetHTMLTemplate(tmpl)

	manager := auth.NewManager(tokens, cfg.Production(), logger)

	// セッションの中身はサーバー側に置き、クッキーには署名付きのIDだけを載せる
	sessionStore := opts.Sessions
	if sessionStore == nil {
		sessionStore = memstore.NewStore([]byte(cfg.SessionSecret))
	}
	sessionStore.Options(manager.SessionOptions())
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		middleware.RequestIDHeader,
	}
	router.Use(cors.New(corsConfig))

	service := auth.NewService(opts.Store, hasher, tokens, logger)
	handler := auth.NewHandler(service, manager, logger)
	setupRoutes(router, handler, manager)

	return router, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

func setupRoutes(router *gin.Engine, h *auth.Handler, m *auth.Manager) {
	router.GET("/health", handleHealth)

	// ログイン済みならダッシュボードへ送る画面
	guest := router.Group("")
	guest.Use(m.RedirectIfAuthenticated())
	{
		guest.GET("/", h.Home)
		guest.GET("/login", h.LoginPage)
		guest.GET("/register", h.RegisterPage)
	}

	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)

	router.GET("/dashboard", m.RequireLogin(), h.Dashboard)

	router.NoRoute(h.NotFound)
}
