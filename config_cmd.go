package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/spdrive/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

// configJSON is the JSON output schema for config show. The client secret
// is reduced to whether it is set.
type configJSON struct {
	Path              string `json:"path"`
	TenantID          string `json:"tenant_id"`
	TenantName        string `json:"tenant_name"`
	SiteName          string `json:"site_name"`
	ClientID          string `json:"client_id"`
	ClientSecretSet   bool   `json:"client_secret_set"`
	Drive             string `json:"drive"`
	LogLevel          string `json:"log_level"`
	LogFormat         string `json:"log_format"`
	UserAgent         string `json:"user_agent,omitempty"`
	ConnectTimeout    string `json:"connect_timeout"`
	ParallelDownloads int    `json:"parallel_downloads"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	cfg := cc.Cfg

	if cc.Flags.JSON {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")

		return enc.Encode(configJSON{
			Path:              cc.CfgPath,
			TenantID:          cfg.TenantID,
			TenantName:        cfg.TenantName,
			SiteName:          cfg.SiteName,
			ClientID:          cfg.ClientID,
			ClientSecretSet:   cfg.ClientSecret != "",
			Drive:             cfg.Drive,
			LogLevel:          cfg.LogLevel,
			LogFormat:         cfg.LogFormat,
			UserAgent:         cfg.UserAgent,
			ConnectTimeout:    cfg.ConnectTimeout,
			ParallelDownloads: cfg.ParallelDownloads,
		})
	}

	return config.RenderEffective(cfg, cc.CfgPath, cc.Out)
}
