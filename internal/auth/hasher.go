package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost はパスワードハッシュに使う bcrypt のコストです。
const DefaultBcryptCost = 12

// PasswordHasher はパスワードの一方向ハッシュと照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// BcryptHasher は bcrypt による PasswordHasher の実装です。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定したコストの BcryptHasher を作成します。範囲外のコストは既定値に置き換えます。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash はソルト付きのハッシュを生成します。エラーにパスワードは含めません。
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify はパスワードがハッシュと一致するかを bcrypt の定数時間比較で判定します。
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
