package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/secrets-gate/internal/users"
)

const minTLDLength = 2

// RegisterInput は登録フォームの入力です。フォームと JSON のどちらでも受け付けます。
type RegisterInput struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
}

// LoginInput はログインフォームの入力です。
type LoginInput struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Service は登録とログインの手順をまとめます。HTTP には依存しません。
type Service struct {
	store    users.Store
	hasher   PasswordHasher
	tokens   *TokenIssuer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService は Service を作成します。
func NewService(store users.Store, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register は入力を検証してユーザーを登録します。
//
// 検証順序は 必須項目 → メール形式 → 確認用パスワード → パスワードポリシー → 重複 で固定で、
// 最初に見つかった違反を *FormError で返します。ハッシュ化は全ての検証を通過した後にだけ行います。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, validationError(MsgAllFieldsRequired)
	}
	if !s.validEmail(in.Email) {
		return nil, validationError(MsgInvalidEmail)
	}
	if in.Password != in.ConfirmPassword {
		return nil, validationError(MsgPasswordMismatch)
	}
	if res := ValidatePassword(in.Password); !res.Valid {
		return nil, validationError(res.Reasons.Message())
	}

	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, validationError(MsgEmailTaken)
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, internalError(MsgRegistrationFailed, fmt.Errorf("lookup email: %w", err))
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalError(MsgRegistrationFailed, err)
	}

	// 事前確認の後に別リクエストが同じメールアドレスで登録した場合はここで弾かれる
	user, err := s.store.Insert(ctx, &users.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, validationError(MsgEmailTaken)
		}
		return nil, internalError(MsgRegistrationFailed, fmt.Errorf("insert user: %w", err))
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login は認証に成功したユーザーと署名済みトークンを返します。
// 未登録のメールアドレスと誤ったパスワードは同じ KindAuth のエラーになります。
func (s *Service) Login(ctx context.Context, in LoginInput) (*users.User, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", validationError(MsgCredentialsRequired)
	}
	if !s.validEmail(in.Email) {
		return nil, "", validationError(MsgInvalidEmail)
	}

	user, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, "", authError()
		}
		return nil, "", internalError(MsgLoginFailed, fmt.Errorf("lookup email: %w", err))
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, "", authError()
	}

	token, err := s.tokens.Issue(Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, "", internalError(MsgLoginFailed, err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

// Profile は検証済みトークンの主体に対応するユーザーを返します。存在しなければ users.ErrNotFound です。
func (s *Service) Profile(ctx context.Context, claims *Claims) (*users.User, error) {
	if claims == nil {
		return nil, users.ErrNotFound
	}
	return s.store.FindByID(ctx, claims.UserID)
}

// validEmail は validator の email 規則に加え、ドメインの最後のラベルが2文字以上であることを求めます。
func (s *Service) validEmail(email string) bool {
	if s.validate.Var(email, "required,email") != nil {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	dot := strings.LastIndexByte(email, '.')
	if dot < at {
		return false
	}
	return len(email)-dot-1 >= minTLDLength
}
