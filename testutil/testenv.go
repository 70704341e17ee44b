// Package testutil provides shared environment helpers for the live-tenant
// E2E tests. It depends only on stdlib so that it stays usable from test
// packages outside internal/.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by the E2E suite.
const (
	EnvTenantID     = "SPDRIVE_TEST_TENANT_ID"
	EnvTenantName   = "SPDRIVE_TEST_TENANT_NAME"
	EnvSiteName     = "SPDRIVE_TEST_SITE_NAME"
	EnvClientID     = "SPDRIVE_TEST_CLIENT_ID"
	EnvClientSecret = "SPDRIVE_TEST_CLIENT_SECRET"
	EnvDrive        = "SPDRIVE_TEST_DRIVE"
	EnvAllowedSites = "SPDRIVE_ALLOWED_TEST_SITES"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// MissingEnv returns the names of the given variables that are unset or
// empty, in argument order.
func MissingEnv(keys ...string) []string {
	var missing []string

	for _, k := range keys {
		if os.Getenv(k) == "" {
			missing = append(missing, k)
		}
	}

	return missing
}

// SiteKey is the allowlist form of a site: "<tenant>/<site>".
func SiteKey(tenantName, siteName string) string {
	return tenantName + "/" + siteName
}

// ValidateAllowlist crashes the process unless the test site named by the
// environment appears in SPDRIVE_ALLOWED_TEST_SITES. The suite writes to
// the site, so it must never run against one nobody opted in.
func ValidateAllowlist() {
	allowlist := os.Getenv(EnvAllowedSites)
	if allowlist == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", EnvAllowedSites)
		fmt.Fprintln(os.Stderr, "Set it in .env or as an environment variable.")
		fmt.Fprintf(os.Stderr, "Example: %s=contoso/spdrive-ci\n", EnvAllowedSites)
		os.Exit(1)
	}

	site := SiteKey(os.Getenv(EnvTenantName), os.Getenv(EnvSiteName))

	for _, a := range strings.Split(allowlist, ",") {
		if strings.TrimSpace(a) == site {
			return
		}
	}

	fmt.Fprintf(os.Stderr, "FATAL: site %q is not in %s=%q\n", site, EnvAllowedSites, allowlist)
	os.Exit(1)
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// WriteConfig writes a config.toml for the test site into dir and returns
// its path. The client secret is left out; callers pass it through the
// environment so it never lands on disk.
func WriteConfig(dir string) (string, error) {
	drive := os.Getenv(EnvDrive)
	if drive == "" {
		drive = "Documents"
	}

	content := fmt.Sprintf(`tenant_id = %q
tenant_name = %q
site_name = %q
client_id = %q
drive = %q
log_format = "text"
`,
		os.Getenv(EnvTenantID),
		os.Getenv(EnvTenantName),
		os.Getenv(EnvSiteName),
		os.Getenv(EnvClientID),
		drive,
	)

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("writing test config: %w", err)
	}

	return path, nil
}
