package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL はトークンの有効期間です。更新の仕組みはなく、期限切れ後は再ログインが必要です。
const TokenTTL = 24 * time.Hour

// ErrInvalidToken は署名不一致・形式不正・期限切れのいずれかで検証に失敗したことを表します。
var ErrInvalidToken = errors.New("invalid token")

// Identity はトークンに埋め込むユーザー情報です。
type Identity struct {
	ID    int64
	Email string
	Name  string
}

// Claims はトークンのクレームです。
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Identity はクレームからユーザー情報を取り出します。
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Name: c.Name}
}

// TokenIssuer は HS256 署名付きトークンの発行と検証を行います。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption は TokenIssuer の設定を変更します。
type TokenOption func(*TokenIssuer)

// WithTTL は有効期間を変更します。
func WithTTL(ttl time.Duration) TokenOption {
	return func(t *TokenIssuer) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock は現在時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenIssuer は起動時に一度だけ読み込んだ秘密鍵で TokenIssuer を作成します。
func NewTokenIssuer(secret string, opts ...TokenOption) *TokenIssuer {
	t := &TokenIssuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TTL は発行するトークンの有効期間を返します。
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue は発行時刻から TTL 後に失効するトークンを発行します。
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: id.ID,
		Email:  id.Email,
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証してクレームを返します。
// 失敗時のエラーは常に ErrInvalidToken をラップし、期限切れなら jwt.ErrTokenExpired も辿れます。
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Remaining はクレームの失効までの残り時間を返します。
func (t *TokenIssuer) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(t.now())
}
