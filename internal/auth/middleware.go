package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// RequireLogin は有効なトークンを要求するミドルウェアを返します。
// 未認証なら /login へリダイレクトし、無効なトークンはあわせて消去します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, claims := m.Resolve(c)
		switch state {
		case StateValid:
			c.Set(ContextClaimsKey, claims)
			c.Next()
			return
		case StateInvalid:
			m.clearQuietly(c)
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}

// RedirectIfAuthenticated はログイン済みの利用者をダッシュボードへ送るミドルウェアを返します。
// ログイン画面と登録画面の表示前に使います。無効なトークンは消去してそのまま画面を表示します。
func (m *Manager) RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, _ := m.Resolve(c)
		switch state {
		case StateValid:
			c.Redirect(http.StatusFound, dashboardPath)
			c.Abort()
			return
		case StateInvalid:
			m.clearQuietly(c)
		}
		c.Next()
	}
}

// ClaimsFrom は RequireLogin が設定したクレームを取り出します。
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}
