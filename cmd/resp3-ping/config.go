package main

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// envConfig holds the environment-driven overrides for the endpoint, loaded via go-envconfig
// the way luma-pharos's internal/env.Config does for its own process.
type envConfig struct {
	Host     string `env:"RESP3_PING_HOST"`
	Port     string `env:"RESP3_PING_PORT"`
	Username string `env:"RESP3_PING_USERNAME"`
	Password string `env:"RESP3_PING_PASSWORD"`
}

func loadEnvConfig(ctx context.Context) (*envConfig, error) {
	cfg := envConfig{}
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
