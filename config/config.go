package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Bun        BunConfig
	App        AppConfig
	Sync       SyncConfig
	LoggerMode LoggerMode
}

type Server struct {
	Port        string
	Environment string
}

type BunConfig struct {
	DSN string
}

// AppConfig scopes every record and notification to one application/tenant.
// The scope travels explicitly through constructors; there is no ambient
// global app id anywhere in the codebase.
type AppConfig struct {
	ID string
}

// SyncConfig bounds the exponential backoff used when re-establishing the
// store's change-notification listener after a transport failure.
type SyncConfig struct {
	RetryMin time.Duration
	RetryMax time.Duration
}

type LoggerMode struct {
	Development bool
	Prod        bool
	Level       string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	if c.Sync.RetryMin <= 0 {
		c.Sync.RetryMin = 500 * time.Millisecond
	}
	if c.Sync.RetryMax < c.Sync.RetryMin {
		c.Sync.RetryMax = 30 * time.Second
	}
	return &c, nil
}
