package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // pending-payment pointer lifetime
}

type PaymentConfig struct {
	YooKassa struct {
		ShopID    string `yaml:"shop_id"`
		SecretKey string `yaml:"secret_key"`
		ReturnURL string `yaml:"return_url"`
		Sandbox   bool   `yaml:"sandbox"`
	} `yaml:"yookassa"`
}

type ReconcilerConfig struct {
	Interval   time.Duration `yaml:"interval"`    // scan period
	StaleAfter time.Duration `yaml:"stale_after"` // pending age before retry
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	DefaultModel string `yaml:"default_model"`
}

type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	AdminEmail string `yaml:"admin_email"`
}

type SecurityConfig struct {
	SessionSecret string `yaml:"session_secret"`
	AdminSecret   string `yaml:"admin_secret"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Payment    PaymentConfig    `yaml:"payment"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	AI         AIConfig         `yaml:"ai"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Security   SecurityConfig   `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = time.Minute
	}
	if cfg.Reconciler.StaleAfter <= 0 {
		cfg.Reconciler.StaleAfter = 10 * time.Minute
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if !dev {
		if cfg.Payment.YooKassa.ShopID == "" || cfg.Payment.YooKassa.SecretKey == "" {
			return nil, errors.New("payment.yookassa credentials are required")
		}
		if cfg.Security.SessionSecret == "" {
			return nil, errors.New("security.session_secret is required")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
