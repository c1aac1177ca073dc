package auth

import (
	"errors"
	"net/http"
)

// ErrorKind はフォーム処理で発生したエラーの分類です。
type ErrorKind int

const (
	// KindValidation は入力の欠落や形式不正です。フォームを再表示して利用者に修正してもらいます。
	KindValidation ErrorKind = iota + 1
	// KindAuth は認証情報の誤りです。未登録か誤パスワードかは区別しません。
	KindAuth
	// KindInternal はハッシュ化・署名・ストアの失敗です。詳細はログにのみ残します。
	KindInternal
)

// Status はエラー分類に対応する HTTP ステータスを返します。
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// 利用者に表示するメッセージ
const (
	MsgAllFieldsRequired    = "All fields are required"
	MsgInvalidEmail         = "Please enter a valid email address"
	MsgPasswordMismatch     = "Passwords do not match"
	MsgEmailTaken           = "User with this email already exists"
	MsgRegistrationFailed   = "An error occurred during registration"
	MsgCredentialsRequired  = "Email and password are required"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgLoginFailed          = "An error occurred during login"
	MsgRegistrationComplete = "Registration successful! Please login."
)

// FormError は利用者に表示するメッセージと、ログ用の原因エラーを保持します。
type FormError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FormError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *FormError) Unwrap() error {
	return e.Err
}

func validationError(msg string) *FormError {
	return &FormError{Kind: KindValidation, Message: msg}
}

func authError() *FormError {
	return &FormError{Kind: KindAuth, Message: MsgInvalidCredentials}
}

func internalError(msg string, err error) *FormError {
	return &FormError{Kind: KindInternal, Message: msg, Err: err}
}

// AsFormError は err が FormError ならそれを返し、そうでなければ内部エラーとして包みます。
func AsFormError(err error, fallback string) *FormError {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe
	}
	return internalError(fallback, err)
}
