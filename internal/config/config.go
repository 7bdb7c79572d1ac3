// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds app credentials and client settings. Credentials are
// supplied through the environment (optionally via a .env file loaded in
// main); there is no on-disk token state.
type Config struct {
	AppID     string        `env:"TASKSYNC_APP_ID"`
	AppSecret string        `env:"TASKSYNC_APP_SECRET"`
	BaseURL   string        `env:"TASKSYNC_BASE_URL" envDefault:"https://open.feishu.cn/open-apis"`
	Timeout   time.Duration `env:"TASKSYNC_TIMEOUT" envDefault:"10s"`

	// Set by CLI flags, not the environment.
	Debug bool `env:"-"`
	Quiet bool `env:"-"`
}

// Load parses configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// HasCredentials reports whether app credentials are present.
func (c *Config) HasCredentials() bool {
	return c.AppID != "" && c.AppSecret != ""
}
