package users

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore はプロセス内のスライスにユーザーを保持します。再起動すると消えます。
type MemoryStore struct {
	mu    sync.RWMutex
	users []User
	seq   int64
	now   func() time.Time
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// FindByEmail はメールアドレスが完全一致するユーザーを返します（大文字小文字を区別）。
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID はIDに対応するユーザーを返します。
func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// Insert は重複確認の後、連番のIDを採番してユーザーを追加します。
// 確認から追加までを書き込みロック内で行うため、同じメールアドレスの同時登録は一件しか成功しません。
func (s *MemoryStore) Insert(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, fmt.Errorf("user is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == user.Email {
			return nil, ErrEmailTaken
		}
	}

	s.seq++
	record := *user
	record.ID = s.seq
	if record.RegisteredAt.IsZero() {
		record.RegisteredAt = s.now().UTC()
	}
	s.users = append(s.users, record)

	out := record
	return &out, nil
}

// Len は保持しているユーザー数を返します。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Reset は全ユーザーを削除します。採番は続きから行うため、削除前に発行したトークンのIDが新しいユーザーに当たることはありません。
// テストで主体が消えた状態を作るためのものです。
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
}
