package config

import (
	"fmt"
	"io"
)

// redacted replaces secret values in rendered output.
const redacted = "********"

// RenderEffective writes the resolved configuration as an annotated TOML
// summary to w. It powers "config show". The client secret is never
// printed; only whether it is set.
func RenderEffective(cfg *Config, path string, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n")
	ew.printf("# file: %s\n\n", path)

	ew.printf("tenant_id          = %q\n", cfg.TenantID)
	ew.printf("tenant_name        = %q\n", cfg.TenantName)
	ew.printf("site_name          = %q\n", cfg.SiteName)
	ew.printf("client_id          = %q\n", cfg.ClientID)

	if cfg.ClientSecret != "" {
		ew.printf("client_secret      = %q\n", redacted)
	} else {
		ew.printf("# client_secret is not set\n")
	}

	ew.printf("\n")
	ew.printf("drive              = %q\n", cfg.Drive)
	ew.printf("log_level          = %q\n", cfg.LogLevel)
	ew.printf("log_format         = %q\n", cfg.LogFormat)

	if cfg.UserAgent != "" {
		ew.printf("user_agent         = %q\n", cfg.UserAgent)
	}

	ew.printf("connect_timeout    = %q\n", cfg.ConnectTimeout)
	ew.printf("parallel_downloads = %d\n", cfg.ParallelDownloads)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
