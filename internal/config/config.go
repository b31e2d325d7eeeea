// Package config loads the engine's YAML configuration: data directory,
// page size, buffer pool capacity and replacement strategy, and the
// housekeeping daemon's flush interval.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/relstore/engine/internal/bufferpool"
)

// Config is the engine's full runtime configuration.
type Config struct {
	Storage struct {
		DataDir  string `mapstructure:"data_dir"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`
	BufferPool struct {
		Capacity int    `mapstructure:"capacity"`
		Strategy string `mapstructure:"strategy"`
	} `mapstructure:"buffer_pool"`
	Housekeeping struct {
		Enabled  bool   `mapstructure:"enabled"`
		Schedule string `mapstructure:"schedule"`
	} `mapstructure:"housekeeping"`
}

// Strategy parses BufferPool.Strategy into bufferpool.Strategy, defaulting
// to FIFO on anything other than an exact, case-insensitive "lru" match.
func (c Config) Strategy() bufferpool.Strategy {
	if strings.EqualFold(c.BufferPool.Strategy, "lru") {
		return bufferpool.LRU
	}
	return bufferpool.FIFO
}

// Default returns sane settings for a fresh engine with no config file.
func Default() Config {
	var c Config
	c.Storage.DataDir = "./data"
	c.Storage.PageSize = 4096
	c.BufferPool.Capacity = 64
	c.BufferPool.Strategy = "fifo"
	c.Housekeeping.Enabled = true
	c.Housekeeping.Schedule = "@every 5m"
	return c
}

// Load reads path as YAML and unmarshals it into a Config, defaulting any
// field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
