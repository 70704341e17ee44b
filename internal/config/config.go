// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for spdrive. It supports a four-layer
// override chain (defaults -> config file -> environment -> CLI flags).
package config

// Config is the configuration parsed from a TOML file. All keys are flat
// top-level keys; there are no sections.
type Config struct {
	// App registration and target site.
	TenantID     string `toml:"tenant_id"`
	TenantName   string `toml:"tenant_name"`
	SiteName     string `toml:"site_name"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// Drive is the document library used when --drive is not given.
	Drive string `toml:"drive"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	UserAgent         string `toml:"user_agent"`
	ConnectTimeout    string `toml:"connect_timeout"`
	ParallelDownloads int    `toml:"parallel_downloads"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	Drive      *string // --drive flag
}
