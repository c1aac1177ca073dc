package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/secrets-gate/internal/users"
)

// テンプレート名
const (
	templateLogin     = "login.html"
	templateRegister  = "register.html"
	templateDashboard = "dashboard.html"
	templateNotFound  = "404.html"
)

// MsgServerError は想定外のエラー時に返す本文です。
const MsgServerError = "Something went wrong!"

type formData struct {
	Name  string
	Email string
}

// Profile はダッシュボードに表示するユーザー情報です。パスワードハッシュは含めません。
type Profile struct {
	ID           int64
	Name         string
	Email        string
	RegisteredAt time.Time
}

// Handler は画面遷移と認証 API のハンドラーをまとめます。
type Handler struct {
	service *Service
	manager *Manager
	logger  *slog.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(service *Service, manager *Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		manager: manager,
		logger:  logger,
	}
}

// Home は GET / のハンドラーです。ログイン済みなら前段のミドルウェアがダッシュボードへ送ります。
func (h *Handler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, loginPath)
}

// LoginPage は GET /login のハンドラーです。
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, templateLogin, gin.H{
		"error":   nil,
		"success": c.Query("success"),
	})
}

// RegisterPage は GET /register のハンドラーです。
func (h *Handler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, templateRegister, gin.H{
		"error":    nil,
		"formData": formData{},
	})
}

// Register は POST /register のハンドラーです。
func (h *Handler) Register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to bind register form", "error", err)
		h.renderRegisterError(c, validationError(MsgAllFieldsRequired), in)
		return
	}

	if _, err := h.service.Register(c.Request.Context(), in); err != nil {
		h.renderRegisterError(c, AsFormError(err, MsgRegistrationFailed), in)
		return
	}

	q := url.Values{}
	q.Set("success", MsgRegistrationComplete)
	c.Redirect(http.StatusFound, loginPath+"?"+q.Encode())
}

// Login は POST /login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to bind login form", "error", err)
		h.renderLoginError(c, validationError(MsgCredentialsRequired))
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), in)
	if err != nil {
		h.renderLoginError(c, AsFormError(err, MsgLoginFailed))
		return
	}

	if err := h.manager.SetCredential(c, token); err != nil {
		// Cookie 側は設定済みなのでログイン自体は継続する
		h.logger.ErrorContext(c.Request.Context(), "failed to mirror token into session",
			"user_id", user.ID, "error", err)
	}

	c.Redirect(http.StatusFound, dashboardPath)
}

// Logout は POST /logout のハンドラーです。セッション破棄に失敗してもログに残すだけで /login へ戻します。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.manager.DestroySession(c); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "session destroy error", "error", err)
	}
	c.Redirect(http.StatusFound, loginPath)
}

// Dashboard は GET /dashboard のハンドラーです。RequireLogin の後段で使います。
//
// トークンが有効でも主体のIDがストアに存在しない場合は未認証として扱い、トークンを消去して /login へ戻します。
func (h *Handler) Dashboard(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	user, err := h.service.Profile(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			h.logger.WarnContext(c.Request.Context(), "token subject no longer exists", "user_id", claims.UserID)
			h.manager.clearQuietly(c)
			c.Redirect(http.StatusFound, loginPath)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "failed to load profile", "user_id", claims.UserID, "error", err)
		c.String(http.StatusInternalServerError, MsgServerError)
		return
	}

	c.HTML(http.StatusOK, templateDashboard, gin.H{
		"user": Profile{
			ID:           user.ID,
			Name:         user.Name,
			Email:        user.Email,
			RegisteredAt: user.RegisteredAt,
		},
	})
}

// NotFound は未定義のルートに対するハンドラーです。
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, templateNotFound, gin.H{
		"path": c.Request.URL.Path,
	})
}

func (h *Handler) renderRegisterError(c *gin.Context, fe *FormError, in RegisterInput) {
	h.logFormError(c, "registration", fe)
	c.HTML(fe.Kind.Status(), templateRegister, gin.H{
		"error":    fe.Message,
		"formData": formData{Name: in.Name, Email: in.Email},
	})
}

func (h *Handler) renderLoginError(c *gin.Context, fe *FormError) {
	h.logFormError(c, "login", fe)
	c.HTML(fe.Kind.Status(), templateLogin, gin.H{
		"error":   fe.Message,
		"success": nil,
	})
}

func (h *Handler) logFormError(c *gin.Context, action string, fe *FormError) {
	ctx := c.Request.Context()
	switch fe.Kind {
	case KindInternal:
		h.logger.ErrorContext(ctx, action+" error", "error", fe.Err)
	case KindAuth:
		h.logger.InfoContext(ctx, action+" rejected", "reason", "invalid credentials")
	default:
		h.logger.DebugContext(ctx, action+" validation failed", "reason", fe.Message)
	}
}
