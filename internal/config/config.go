// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// 開発用の既定値です。本番環境ではこのまま使うことはできません。
const (
	DefaultSessionSecret = "your-secret-key-change-in-production"
	DefaultJWTSecret     = "your-jwt-secret-change-in-production"

	minSecretLength = 16
)

// ストアの種類
const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string `env:"PORT" envDefault:"3000"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"` // development または production
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// 認証設定（Cookie署名鍵とトークン署名鍵）
	SessionSecret string `env:"SESSION_SECRET" envDefault:"your-secret-key-change-in-production"`
	JWTSecret     string `env:"JWT_SECRET" envDefault:"your-jwt-secret-change-in-production"`

	// CORS許可オリジン（カンマ区切り）
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// ユーザーストア設定
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`

	// ログ設定
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// 本番環境では Gin も release モードで動かす
	if cfg.Production() {
		cfg.GinMode = "release"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Production は本番環境で動作しているかを返します。
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER: %q", c.StoreDriver)
	}
	if c.StoreDriver == StoreDriverRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when STORE_DRIVER=redis")
	}

	// ローカル開発では既定の秘密鍵でも起動できる
	if !c.Production() {
		return nil
	}

	if c.SessionSecret == "" || c.SessionSecret == DefaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be overridden in production")
	}
	if c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be overridden in production")
	}
	if len(c.SessionSecret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSecretLength)
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	return nil
}
