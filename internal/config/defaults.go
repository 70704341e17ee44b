package config

// Default values for configuration options. These are layer 0 of the
// override chain.
const (
	defaultDrive             = "Documents"
	defaultLogLevel          = "warn"
	defaultLogFormat         = "auto"
	defaultConnectTimeout    = "10s"
	defaultParallelDownloads = 4
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset keys keep their defaults.
// Credentials have no defaults.
func DefaultConfig() *Config {
	return &Config{
		Drive:             defaultDrive,
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
		ConnectTimeout:    defaultConnectTimeout,
		ParallelDownloads: defaultParallelDownloads,
	}
}
