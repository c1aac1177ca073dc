// Package auth はユーザー登録・ログイン・セッション検証を提供します。
package auth

import (
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 20
)

// Reasons はパスワードポリシー違反の理由を表すビット集合です。
type Reasons uint8

const (
	ReasonLength Reasons = 1 << iota
	ReasonUppercase
	ReasonLowercase
	ReasonDigit
)

// Has は指定した理由が含まれるかを返します。
func (r Reasons) Has(flag Reasons) bool {
	return r&flag != 0
}

// Message は違反理由をまとめた表示用メッセージを返します。違反がなければ空文字です。
func (r Reasons) Message() string {
	if r == 0 {
		return ""
	}
	var parts []string
	if r.Has(ReasonLength) {
		parts = append(parts, "6-20 characters")
	}
	if r.Has(ReasonUppercase) {
		parts = append(parts, "uppercase letter")
	}
	if r.Has(ReasonLowercase) {
		parts = append(parts, "lowercase letter")
	}
	if r.Has(ReasonDigit) {
		parts = append(parts, "number")
	}
	return "Password must contain: " + strings.Join(parts, ", ")
}

// PolicyResult はパスワードポリシーの判定結果です。
type PolicyResult struct {
	Valid   bool
	Reasons Reasons
}

// ValidatePassword はパスワードが 6〜20 文字で、英大文字・英小文字・数字をそれぞれ含むかを判定します。
// 文字数は Unicode のコードポイント単位で数えます。
func ValidatePassword(password string) PolicyResult {
	var reasons Reasons

	if n := utf8.RuneCountInString(password); n < minPasswordLength || n > maxPasswordLength {
		reasons |= ReasonLength
	}

	var hasUpper, hasLower, hasDigit bool
	for i := 0; i < len(password); i++ {
		switch ch := password[i]; {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		reasons |= ReasonUppercase
	}
	if !hasLower {
		reasons |= ReasonLowercase
	}
	if !hasDigit {
		reasons |= ReasonDigit
	}

	return PolicyResult{Valid: reasons == 0, Reasons: reasons}
}
