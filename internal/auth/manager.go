package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// TokenCookieName はトークンを運ぶ Cookie 名です。
	TokenCookieName = "token"
	// SessionCookieName はサーバー側セッションの Cookie 名です。
	SessionCookieName = "sid"

	sessionKeyToken = "token"
)

// ContextClaimsKey は、ハンドラー間で検証済みクレームを共有するためのキーです。
const ContextClaimsKey = "auth.claims"

// SessionMaxAgeSeconds はトークンの有効期間を秒に換算した値です。トークン Cookie とセッション Cookie の MaxAge に使います。
func SessionMaxAgeSeconds() int {
	return int(TokenTTL.Seconds())
}

// State はリクエストの認証状態です。
type State int

const (
	// StateNone はトークンが提示されていない状態です。
	StateNone State = iota
	// StateValid は有効なトークンが提示された状態です。
	StateValid
	// StateInvalid は署名不一致・形式不正・期限切れのトークンが提示された状態です。
	StateInvalid
)

// Manager はトークンの受け渡しと検証をまとめた構造体です。
//
// トークンは Cookie とセッションの二か所に置きますが、Cookie を正とします。
// セッション側は Cookie が無いときだけ参照し、そこで有効と判定できた場合は Cookie を再発行して揃えます。
// 無効と判定した場合は両方を消去します。
type Manager struct {
	tokens *TokenIssuer
	secure bool
	logger *slog.Logger
}

// NewManager は Manager を作成します。secure は本番環境で Cookie に Secure 属性を付けるかどうかです。
func NewManager(tokens *TokenIssuer, secure bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		tokens: tokens,
		secure: secure,
		logger: logger,
	}
}

// Resolve はリクエストからトークンを取り出して認証状態を判定します。
func (m *Manager) Resolve(c *gin.Context) (State, *Claims) {
	token, fromSession := m.extract(c)
	if token == "" {
		return StateNone, nil
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.DebugContext(c.Request.Context(), "token rejected", "error", err, "from_session", fromSession)
		return StateInvalid, nil
	}

	if fromSession {
		if remaining := m.tokens.Remaining(claims); remaining > 0 {
			m.setTokenCookie(c, token, int(remaining.Seconds()))
		}
	}
	return StateValid, claims
}

// SetCredential はトークンを Cookie に設定し、セッションにも複製します。
func (m *Manager) SetCredential(c *gin.Context, token string) error {
	m.setTokenCookie(c, token, int(m.tokens.TTL().Seconds()))

	session := sessions.Default(c)
	session.Set(sessionKeyToken, token)
	return session.Save()
}

// ClearCredential は Cookie とセッションの両方からトークンを消去します。
func (m *Manager) ClearCredential(c *gin.Context) error {
	m.setTokenCookie(c, "", -1)

	session := sessions.Default(c)
	session.Delete(sessionKeyToken)
	return session.Save()
}

// DestroySession はトークン Cookie を消去し、セッション自体も破棄します。
func (m *Manager) DestroySession(c *gin.Context) error {
	m.setTokenCookie(c, "", -1)

	session := sessions.Default(c)
	session.Clear()
	session.Options(m.sessionOptions(-1))
	return session.Save()
}

// SessionOptions はセッション Cookie の属性を返します。
func (m *Manager) SessionOptions() sessions.Options {
	return m.sessionOptions(SessionMaxAgeSeconds())
}

func (m *Manager) sessionOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (m *Manager) extract(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(TokenCookieName); err == nil && token != "" {
		return token, false
	}
	session := sessions.Default(c)
	if token, ok := session.Get(sessionKeyToken).(string); ok && token != "" {
		return token, true
	}
	return "", false
}

func (m *Manager) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookieName, token, maxAge, "/", "", m.secure, true)
}

func (m *Manager) clearQuietly(c *gin.Context) {
	if err := m.ClearCredential(c); err != nil {
		m.logger.ErrorContext(c.Request.Context(), "failed to clear credential", "error", err)
	}
}
