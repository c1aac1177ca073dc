package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	sessionredis "github.com/gin-contrib/sessions/redis"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/secrets-gate/internal/config"
	"github.com/yourusername/secrets-gate/internal/users"
)

const (
	redisPingTimeout    = 5 * time.Second
	sessionPoolSize     = 10
	sessionKeyPrefix    = "session:"
	sessionRedisNetwork = "tcp"
)

// setupStore は STORE_DRIVER に応じたユーザーストアを作成します。close は終了時に呼び出します。
func setupStore(ctx context.Context, cfg *config.Config) (users.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		rdb := redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return users.NewRedisStore(rdb), rdb.Close, nil
	default:
		return users.NewMemoryStore(), func() error { return nil }, nil
	}
}

// setupSessionStore はユーザーストアと同じ置き場所にセッションストアを作成します。
// redis の場合はユーザー情報と同じデータベースに session: 接頭辞で保存します。
func setupSessionStore(cfg *config.Config) (sessions.Store, func() error, error) {
	secret := []byte(cfg.SessionSecret)

	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
		}

		store, err := sessionredis.NewStoreWithDB(sessionPoolSize, sessionRedisNetwork, opt.Addr,
			opt.Username, opt.Password, strconv.Itoa(opt.DB), secret)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		if err := sessionredis.SetKeyPrefix(store, sessionKeyPrefix); err != nil {
			return nil, nil, err
		}
		rs, err := sessionredis.GetRedisStore(store)
		if err != nil {
			return nil, nil, err
		}
		return store, rs.Close, nil
	default:
		return memstore.NewStore(secret), func() error { return nil }, nil
	}
}
