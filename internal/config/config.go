package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type RateConfig struct {
	PerMinute int
	Burst     int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
	SMTP        SMTPConfig
	Rate        RateConfig
	Location    *time.Location
}

func Load() (*Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("JWT_ACCESS_TTL", "12h")
	v.SetDefault("REDIS_CHANNEL", "reports:changes")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SUBMIT_RATE_PER_MINUTE", 5)
	v.SetDefault("SUBMIT_RATE_BURST", 3)
	v.SetDefault("LOCATION", "Asia/Jakarta")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Channel:  v.GetString("REDIS_CHANNEL"),
		},
		SMTP: SMTPConfig{
			Host:        v.GetString("SMTP_HOST"),
			Port:        v.GetInt("SMTP_PORT"),
			Username:    v.GetString("SMTP_USER"),
			Password:    v.GetString("SMTP_PASSWORD"),
			FromAddress: v.GetString("SMTP_FROM_ADDRESS"),
			FromName:    v.GetString("SMTP_FROM_NAME"),
		},
		Rate: RateConfig{
			PerMinute: v.GetInt("SUBMIT_RATE_PER_MINUTE"),
			Burst:     v.GetInt("SUBMIT_RATE_BURST"),
		},
	}

	loc, err := time.LoadLocation(v.GetString("LOCATION"))
	if err != nil {
		return nil, fmt.Errorf("LOCATION: %w", err)
	}
	cfg.Location = loc

	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = 12 * time.Hour
	}
	if cfg.Rate.PerMinute <= 0 {
		cfg.Rate.PerMinute = 5
	}
	if cfg.Rate.Burst <= 0 {
		cfg.Rate.Burst = 3
	}
	if cfg.SMTP.FromAddress == "" {
		cfg.SMTP.FromAddress = cfg.SMTP.Username
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
