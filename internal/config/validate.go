package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Validation range constants.
const (
	minParallelDownloads = 1
	maxParallelDownloads = 16
	minConnectTimeout    = 1 * time.Second
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"auto", "text", "json"}
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Drive == "" {
		errs = append(errs, errors.New("drive: must not be empty"))
	}

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level: must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), cfg.LogLevel))
	}

	if !slices.Contains(validLogFormats, cfg.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format: must be one of %s, got %q",
			strings.Join(validLogFormats, ", "), cfg.LogFormat))
	}

	if cfg.ParallelDownloads < minParallelDownloads || cfg.ParallelDownloads > maxParallelDownloads {
		errs = append(errs, fmt.Errorf("parallel_downloads: must be between %d and %d, got %d",
			minParallelDownloads, maxParallelDownloads, cfg.ParallelDownloads))
	}

	if err := validateMinDuration("connect_timeout", cfg.ConnectTimeout, minConnectTimeout); err != nil {
		errs = append(errs, err)
	}

	if strings.Contains(cfg.TenantName, ".") {
		errs = append(errs, fmt.Errorf(
			"tenant_name: must be the short tenant name (e.g. \"contoso\"), got %q", cfg.TenantName))
	}

	if strings.Contains(cfg.SiteName, "/") {
		errs = append(errs, fmt.Errorf("site_name: must be a single path segment, got %q", cfg.SiteName))
	}

	return errors.Join(errs...)
}

// ValidateResolved checks that a fully resolved configuration carries
// everything needed to talk to the service. It runs after the override
// chain, since the client secret usually arrives through the environment.
func ValidateResolved(cfg *Config) error {
	var errs []error

	required := []struct {
		key, value string
	}{
		{"tenant_id", cfg.TenantID},
		{"tenant_name", cfg.TenantName},
		{"site_name", cfg.SiteName},
		{"client_id", cfg.ClientID},
		{"client_secret", cfg.ClientSecret},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s: required", r.key))
		}
	}

	return errors.Join(errs...)
}

// ConnectTimeoutDuration returns connect_timeout parsed, or the default when
// the value is empty or unparsable (Validate reports the latter).
func (c *Config) ConnectTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil {
		d, _ = time.ParseDuration(defaultConnectTimeout)
	}

	return d
}

func validateMinDuration(key, raw string, minimum time.Duration) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}

	if d < minimum {
		return fmt.Errorf("%s: must be at least %s, got %s", key, minimum, d)
	}

	return nil
}
