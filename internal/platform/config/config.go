// Package config はアプリケーション設定を読み込みます。
// config.yaml（任意）を読み、YIELD_<SECTION>_<KEY> 形式の環境変数で上書きします。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix は環境変数のプレフィックスです。例: YIELD_DATABASE_HOST
const EnvPrefix = "YIELD"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Timezone string `mapstructure:"timezone"`
	// WriteRateLimit はオペレーター1人あたりの書き込みリクエスト数/分です。0 で無制限。
	WriteRateLimit int `mapstructure:"write_rate_limit"`
}

type DatabaseConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RunMigrations  bool          `mapstructure:"run_migrations"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// EngineConfig はカーブ構築と implied yield 選定の定数です。
type EngineConfig struct {
	MarginTolerance     float64 `mapstructure:"margin_tolerance"`
	MinQualifyingVolume int64   `mapstructure:"min_qualifying_volume"`
	TBillTenorDays      int     `mapstructure:"tbill_tenor_days"`
	PrefetchConcurrency int     `mapstructure:"prefetch_concurrency"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

// Load は path 配下の config.yaml と環境変数から設定を読み込みます。
// ファイルが無い場合はデフォルト値と環境変数だけを使います。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は起動できない設定値を検出します。
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid server.timezone %q: %w", c.Server.Timezone, err)
	}
	if c.Server.WriteRateLimit < 0 {
		return fmt.Errorf("server.write_rate_limit must not be negative: %d", c.Server.WriteRateLimit)
	}
	if c.Engine.MarginTolerance < 0 {
		return fmt.Errorf("engine.margin_tolerance must not be negative: %v", c.Engine.MarginTolerance)
	}
	if c.Engine.MinQualifyingVolume < 0 {
		return fmt.Errorf("engine.min_qualifying_volume must not be negative: %d", c.Engine.MinQualifyingVolume)
	}
	if c.Engine.TBillTenorDays <= 0 {
		return fmt.Errorf("engine.tbill_tenor_days must be positive: %d", c.Engine.TBillTenorDays)
	}
	return nil
}

// Location は "今日" とキャッシュ期限の判定に使うタイムゾーンを返します。
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timezone", "Africa/Nairobi")
	v.SetDefault("server.write_rate_limit", 120)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "yieldcurve")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.connect_timeout", 60*time.Second)
	v.SetDefault("database.run_migrations", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("engine.margin_tolerance", 0.05)
	v.SetDefault("engine.min_qualifying_volume", 50_000_000)
	v.SetDefault("engine.tbill_tenor_days", 364)
	v.SetDefault("engine.prefetch_concurrency", 8)

	v.SetDefault("logging.level", "info")
}
