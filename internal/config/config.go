package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	AppURL   string `yaml:"app_url"`
	DryRun   bool   `yaml:"dry_run"`
}

type AuthConfig struct {
	JWTSecret             string `yaml:"jwt_secret"`
	SessionTTLHours       int    `yaml:"session_ttl_hours"`
	CodeTTLMinutes        int    `yaml:"code_ttl_minutes"`
	SweepIntervalSeconds  int    `yaml:"sweep_interval_seconds"`
	ThrottleWindowMinutes int    `yaml:"throttle_window_minutes"`
	AttemptThreshold      int    `yaml:"attempt_threshold"`
}

func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

func (a AuthConfig) CodeTTL() time.Duration {
	return time.Duration(a.CodeTTLMinutes) * time.Minute
}

func (a AuthConfig) SweepInterval() time.Duration {
	return time.Duration(a.SweepIntervalSeconds) * time.Second
}

func (a AuthConfig) ThrottleWindow() time.Duration {
	return time.Duration(a.ThrottleWindowMinutes) * time.Minute
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Telegram TelegramConfig `yaml:"telegram"`
	Auth     AuthConfig     `yaml:"auth"`
	Files    struct {
		PublicDir string `yaml:"public_dir"`
	} `yaml:"files"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	// секреты можно переопределить через ENV, чтобы config.yaml оставался в репо
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Telegram.AppURL == "" {
		cfg.Telegram.AppURL = "http://localhost:3000"
	}
	if cfg.Auth.SessionTTLHours == 0 {
		cfg.Auth.SessionTTLHours = 7 * 24
	}
	if cfg.Auth.CodeTTLMinutes == 0 {
		cfg.Auth.CodeTTLMinutes = 5
	}
	if cfg.Auth.SweepIntervalSeconds == 0 {
		cfg.Auth.SweepIntervalSeconds = 60
	}
	if cfg.Auth.ThrottleWindowMinutes == 0 {
		cfg.Auth.ThrottleWindowMinutes = 15
	}
	if cfg.Auth.AttemptThreshold == 0 {
		cfg.Auth.AttemptThreshold = 10
	}
	if cfg.Files.PublicDir == "" {
		cfg.Files.PublicDir = "./public"
	}
	return &cfg
}
