package config

import "time"

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.ClientSendBuffer == 0 {
		cfg.Server.ClientSendBuffer = 256
	}
	if cfg.Server.InputBuffer == 0 {
		cfg.Server.InputBuffer = 64
	}
	if cfg.Server.MaxMessageSize == 0 {
		cfg.Server.MaxMessageSize = 512
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/quest.db"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
