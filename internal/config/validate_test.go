package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResolvedConfig() *Config {
	cfg := DefaultConfig()
	cfg.TenantID = "tid"
	cfg.TenantName = "contoso"
	cfg.SiteName = "Engineering"
	cfg.ClientID = "cid"
	cfg.ClientSecret = "secret"

	return cfg
}

func TestValidate_ValidDefaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_LogLevel(t *testing.T) {
	for _, lvl := range validLogLevels {
		cfg := DefaultConfig()
		cfg.LogLevel = lvl
		assert.NoError(t, Validate(cfg), lvl)
	}

	cfg := DefaultConfig()
	cfg.LogLevel = "trace"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestValidate_LogFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFormat = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}

func TestValidate_ParallelDownloads_Range(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{16, false},
		{17, true},
		{-1, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.ParallelDownloads = tt.n

		err := Validate(cfg)
		if tt.wantErr {
			assert.Error(t, err, "parallel_downloads=%d", tt.n)
		} else {
			assert.NoError(t, err, "parallel_downloads=%d", tt.n)
		}
	}
}

func TestValidate_ConnectTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectTimeout = "500ms"
	assert.ErrorContains(t, Validate(cfg), "connect_timeout")

	cfg.ConnectTimeout = "soon"
	assert.ErrorContains(t, Validate(cfg), "invalid duration")
}

func TestValidate_TenantNameIsShortName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TenantName = "contoso.sharepoint.com"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant_name")
}

func TestValidate_SiteNameSingleSegment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SiteName = "sites/Engineering"

	assert.ErrorContains(t, Validate(cfg), "site_name")
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Drive = ""
	cfg.LogLevel = "loud"
	cfg.ParallelDownloads = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drive")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "parallel_downloads")
}

func TestValidateResolved_Complete(t *testing.T) {
	assert.NoError(t, ValidateResolved(validResolvedConfig()))
}

func TestValidateResolved_MissingCredentials(t *testing.T) {
	err := ValidateResolved(DefaultConfig())
	require.Error(t, err)

	for _, key := range []string{"tenant_id", "tenant_name", "site_name", "client_id", "client_secret"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidateResolved_WhitespaceSecret(t *testing.T) {
	cfg := validResolvedConfig()
	cfg.ClientSecret = "   "

	assert.ErrorContains(t, ValidateResolved(cfg), "client_secret")
}

func TestConnectTimeoutDuration(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeoutDuration())

	cfg.ConnectTimeout = "3s"
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeoutDuration())

	cfg.ConnectTimeout = "garbage"
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeoutDuration())
}
