// Package users は登録ユーザーの保存と検索を提供します。
package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound は該当するユーザーが存在しない場合に返されます。
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken は同じメールアドレスのユーザーが既に登録されている場合に返されます。
	ErrEmailTaken = errors.New("email already registered")
)

// User は登録済みユーザーのレコードです。
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Store はユーザーレコードの保存先です。
//
// 実装は並行呼び出しに対して安全でなければなりません。
// Insert はメールアドレスの重複確認とIDの採番を一つの不可分な操作として行い、
// 重複時は ErrEmailTaken を返します。検索系は見つからない場合 ErrNotFound を返します。
// 返されるレコードはコピーで、呼び出し側が変更してもストアには影響しません。
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}
