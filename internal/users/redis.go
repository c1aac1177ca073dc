package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix  = "user:id:"
	emailKeyPrefix = "user:email:"
	userSeqKey     = "user:seq"
)

// RedisStore はユーザーを Redis に保存します。複数プロセスで同じストアを共有する場合に使います。
//
// レコードは user:id:<id> に JSON で、メールアドレスの索引は user:email:<email> に保存します。
// IDは user:seq の INCR で採番するため単調増加しますが、重複で弾かれた登録の分は欠番になります。
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		now: time.Now,
	}
}

// FindByEmail はメールアドレスの索引からユーザーを取得します。
func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	id, err := s.rdb.Get(ctx, emailKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read email index: %w", err)
	}
	return s.FindByID(ctx, id)
}

// FindByID はユーザー情報を取得します。
func (s *RedisStore) FindByID(ctx context.Context, id int64) (*User, error) {
	data, err := s.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read user %d: %w", id, err)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %d: %w", id, err)
	}
	return &user, nil
}

// Insert はメールアドレスの索引キーを WATCH した上でユーザーを保存します。
// 確認から書き込みまでの間に同じキーが書き換えられた場合は ErrEmailTaken を返します。
func (s *RedisStore) Insert(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, fmt.Errorf("user is nil")
	}
	if user.Email == "" {
		return nil, fmt.Errorf("user email is required")
	}

	record := *user
	if record.RegisteredAt.IsZero() {
		record.RegisteredAt = s.now().UTC()
	}
	key := emailKey(record.Email)

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return ErrEmailTaken
		}

		id, err := tx.Incr(ctx, userSeqKey).Result()
		if err != nil {
			return err
		}
		record.ID = id

		payload, err := json.Marshal(&record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, id, 0)
			pipe.Set(ctx, userKey(id), payload, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return &record, nil
	case errors.Is(err, ErrEmailTaken), errors.Is(err, redis.TxFailedErr):
		return nil, ErrEmailTaken
	default:
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
}

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}

func emailKey(email string) string {
	return emailKeyPrefix + email
}
