// Package config loads the on-disk YAML configuration for the heap
// store: buffer pool size, replacement policy, and file locations.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// StoreConfig mirrors the "store:" section of the YAML config file.
type StoreConfig struct {
	DataFile      string `mapstructure:"data_file"`
	DirectoryFile string `mapstructure:"directory_file"`
	PoolSize      int    `mapstructure:"pool_size"`
	Policy        string `mapstructure:"policy"`
}

// Config is the root of the YAML document.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
}

// Defaults applied to any field left unset in the file.
const (
	DefaultPoolSize = 16
	DefaultPolicy   = "clock"
)

// Load reads and validates the YAML config at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("store.pool_size", DefaultPoolSize)
	v.SetDefault("store.policy", DefaultPolicy)
	v.SetDefault("store.data_file", "./data/heap.dat")
	v.SetDefault("store.directory_file", "./data/heap.dir")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	if cfg.Store.PoolSize <= 0 {
		return nil, fmt.Errorf("config: store.pool_size must be positive, got %d", cfg.Store.PoolSize)
	}

	return &cfg, nil
}
