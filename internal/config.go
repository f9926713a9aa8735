/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreDisk   = "disk"
	StoreS3     = "s3"
)

type Config struct {
	Store             string  `env:"TD_STORE"              envDefault:"disk"       envDocs:"tournament storage backend: memory, disk or s3"`
	DataDir           string  `env:"TD_DATA_DIR"           envDefault:""           envDocs:"directory for the disk store (default ~/.baduk-td)"`
	Bucket            string  `env:"TD_BUCKET"             envDefault:""           envDocs:"S3 bucket for the s3 store and the roster web cache"`
	GlickoTau         float64 `env:"TD_GLICKO_TAU"         envDefault:"0.5"        envDocs:"Glicko-2 system constant constraining volatility change"`
	RatingPeriod      string  `env:"TD_RATING_PERIOD"      envDefault:"round"      envDocs:"when ratings move: round or tournament"`
	LogLevel          string  `env:"TD_LOG_LEVEL"          envDefault:"info"       envDocs:"logrus level"`
	RosterCacheHours  int     `env:"TD_ROSTER_CACHE_HOURS" envDefault:"12"         envDocs:"client side TTL for fetched roster pages"`
	ListenAddr        string  `env:"TD_LISTEN_ADDR"        envDefault:":8080"      envDocs:"discord bot interactions listen address"`
	DiscordToken      string  `env:"DISCORD_BOT_TOKEN"     envDefault:""           envDocs:"discord bot token"`
	DiscordPublicKey  string  `env:"DISCORD_PUBLIC_KEY"    envDefault:""           envDocs:"discord application public key (hex)"`
	DiscordAppID      string  `env:"DISCORD_APP_ID"        envDefault:""           envDocs:"discord application id"`
	DiscordCmdID      string  `env:"DISCORD_CMD_ID"        envDefault:""           envDocs:"registered /td command id"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func LoadConfig(dotenvFiles ...string) (*Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil &&
		!errors.Is(err, fs.ErrNotExist) {

		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: unable to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Store {
	case StoreMemory, StoreDisk:
	case StoreS3:
		if cfg.Bucket == "" {
			return fmt.Errorf("config: TD_STORE=s3 requires TD_BUCKET")
		}
	default:
		return fmt.Errorf("config: unknown TD_STORE %q", cfg.Store)
	}
	if cfg.GlickoTau <= 0 {
		return fmt.Errorf("config: TD_GLICKO_TAU must be positive, got %v",
			cfg.GlickoTau)
	}
	if cfg.RosterCacheHours < 0 {
		return fmt.Errorf("config: TD_ROSTER_CACHE_HOURS must not be negative")
	}

	return nil
}

// DataPath returns the disk store directory, defaulting to ~/.baduk-td.
func (cfg *Config) DataPath() (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot determine home directory: %w", err)
	}

	return filepath.Join(home, ".baduk-td"), nil
}

func (cfg *Config) RosterCacheTTL() time.Duration {
	return time.Duration(cfg.RosterCacheHours) * time.Hour
}
