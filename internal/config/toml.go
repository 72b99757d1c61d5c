// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Race  RaceConfig  `toml:"race"`
	Lobby LobbyConfig `toml:"lobby"`
}

// RaceConfig maps race-related settings.
type RaceConfig struct {
	Tier       *string `toml:"tier"`
	Opponents  *int    `toml:"opponents"`
	Countdown  *int    `toml:"countdown"`
	Grace      *int    `toml:"grace"`
	PromptFile *string `toml:"prompt-file"`
}

// LobbyConfig maps networked-race settings.
type LobbyConfig struct {
	Addr *string `toml:"addr"`
	Name *string `toml:"name"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
