package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file and returns the resulting Config.
// Unknown keys are fatal errors with "did you mean?" suggestions. Values are
// not range-checked here; Resolve validates once all overrides are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. Credentials can then still
// arrive through the environment.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// The result is validated for value ranges but not for completeness;
// commands that talk to the service call ValidateResolved as well.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, string, error) {
	// 1. Resolve config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists)
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// 3. Apply env overrides
	if env.ClientSecret != "" {
		cfg.ClientSecret = env.ClientSecret
	}

	if env.Drive != "" {
		cfg.Drive = env.Drive
	}

	if env.ParallelDownloads != 0 {
		cfg.ParallelDownloads = env.ParallelDownloads
	}

	// 4. Apply CLI overrides (nil = not specified)
	if cli.Drive != nil {
		cfg.Drive = *cli.Drive
	}

	if err := Validate(cfg); err != nil {
		return nil, cfgPath, fmt.Errorf("config validation: %w", err)
	}

	return cfg, cfgPath, nil
}
