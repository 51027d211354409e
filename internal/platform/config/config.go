// Package config loads the quest server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then an
// optional .env file, then process environment variables. Game rules are not
// configurable; they live in engine.DefaultRules.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the full quest.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"QUEST_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"QUEST_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"QUEST_ALLOWED_ORIGINS" envSeparator:","`
	// ClientSendBuffer is the outbound message queue per WebSocket.
	ClientSendBuffer int `yaml:"client_send_buffer" env:"QUEST_CLIENT_SEND_BUFFER"`
	// InputBuffer is the task queue of each session loop.
	InputBuffer int `yaml:"input_buffer" env:"QUEST_INPUT_BUFFER"`
	// MaxMessageSize caps inbound WebSocket frames.
	MaxMessageSize int64 `yaml:"max_message_size" env:"QUEST_MAX_MESSAGE_SIZE"`
}

type StorageConfig struct {
	Path     string `yaml:"path" env:"QUEST_DB_PATH"`
	Disabled bool   `yaml:"disabled" env:"QUEST_STORAGE_DISABLED"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"QUEST_LOG_LEVEL"`
	Development bool   `yaml:"development" env:"QUEST_LOG_DEVELOPMENT"`
}

// Load reads the YAML file at path (if any), then .env and the environment.
// A missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return finish(cfg)
}

// Parse parses raw YAML bytes over the defaults and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Validate checks a Config for logical errors.
func Validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Server.ClientSendBuffer < 1 {
		return fmt.Errorf("server.client_send_buffer must be >= 1, got %d", cfg.Server.ClientSendBuffer)
	}
	if cfg.Server.InputBuffer < 1 {
		return fmt.Errorf("server.input_buffer must be >= 1, got %d", cfg.Server.InputBuffer)
	}
	if cfg.Server.MaxMessageSize < 64 {
		return fmt.Errorf("server.max_message_size must be >= 64, got %d", cfg.Server.MaxMessageSize)
	}
	if !cfg.Storage.Disabled && cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path is required unless storage.disabled is set")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level)
	}
	return nil
}
