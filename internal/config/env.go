package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Environment variable names for overrides.
const (
	EnvConfig            = "SPDRIVE_CONFIG"
	EnvClientSecret      = "SPDRIVE_CLIENT_SECRET"
	EnvDrive             = "SPDRIVE_DRIVE"
	EnvParallelDownloads = "SPDRIVE_PARALLEL_DOWNLOADS"
)

// EnvOverrides holds values derived from environment variables. Empty and
// zero fields mean "not set".
type EnvOverrides struct {
	ConfigPath        string `env:"SPDRIVE_CONFIG"`
	ClientSecret      string `env:"SPDRIVE_CLIENT_SECRET"` // keeps the secret out of the file
	Drive             string `env:"SPDRIVE_DRIVE"`
	ParallelDownloads int    `env:"SPDRIVE_PARALLEL_DOWNLOADS"`
}

// ReadEnvOverrides reads the SPDRIVE_* environment variables.
func ReadEnvOverrides() (EnvOverrides, error) {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return EnvOverrides{}, fmt.Errorf("reading environment: %w", err)
	}

	return o, nil
}
