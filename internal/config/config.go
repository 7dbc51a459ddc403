// Package config loads runtime settings from the environment, after reading
// a .env file if one is present.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Prefix is the command prefix for guilds without an override.
	Prefix string `env:"DETACHE_PREFIX" envDefault:"!"`
	// GuildPrefixes are per-guild overrides: "guildID:prefix,guildID:prefix".
	GuildPrefixes map[string]string `env:"DETACHE_GUILD_PREFIXES"`

	Statuses       []string      `env:"DETACHE_STATUSES" envSeparator:"|" envDefault:"with commands|!help for help"`
	StatusInterval time.Duration `env:"DETACHE_STATUS_INTERVAL" envDefault:"5m"`

	ReplyRate     float64 `env:"DETACHE_REPLY_RATE" envDefault:"5"`
	ReplyAttempts int     `env:"DETACHE_REPLY_ATTEMPTS" envDefault:"5"`

	Log Log
}

// Log configures the log output. File output is off when File is empty.
type Log struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Load reads .env (if any) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}
	return parse(env.Options{})
}

// FromMap parses settings from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Prefix == "" {
		errs = append(errs, errors.New("DETACHE_PREFIX must not be empty"))
	}
	if c.StatusInterval <= 0 {
		errs = append(errs, errors.New("DETACHE_STATUS_INTERVAL must be positive"))
	}
	if c.ReplyRate <= 0 {
		errs = append(errs, errors.New("DETACHE_REPLY_RATE must be positive"))
	}
	if c.ReplyAttempts < 1 {
		errs = append(errs, errors.New("DETACHE_REPLY_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}

// RequireToken fails when no Discord token is configured. Only the Discord
// transport needs one.
func (c *Config) RequireToken() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}
