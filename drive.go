package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/spdrive/internal/graph"
)

func newSiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "site",
		Short: "Show the configured SharePoint site",
		Args:  cobra.NoArgs,
		RunE:  runSite,
	}
}

func newDrivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "List the document libraries of the configured site",
		Args:  cobra.NoArgs,
		RunE:  runDrives,
	}
}

// siteJSON is the JSON output schema for the site command.
type siteJSON struct {
	ID          string `json:"id"`
	SiteID      string `json:"site_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	WebURL      string `json:"web_url"`
	ModifiedAt  string `json:"modified_at"`
}

func runSite(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	sess, err := NewSession(ctx, cc)
	if err != nil {
		return err
	}

	site, siteID, err := sess.Site(ctx)
	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")

		return enc.Encode(siteJSON{
			ID:          site.ID,
			SiteID:      siteID,
			Name:        site.Name,
			DisplayName: site.DisplayName,
			WebURL:      site.WebURL,
			ModifiedAt:  site.ModifiedAt.UTC().Format(time.RFC3339),
		})
	}

	printSiteText(cc.Out, site, siteID)

	return nil
}

func printSiteText(w io.Writer, site *graph.Site, siteID string) {
	fmt.Fprintf(w, "Name:     %s\n", site.DisplayName)
	fmt.Fprintf(w, "URL:      %s\n", site.WebURL)
	fmt.Fprintf(w, "Site ID:  %s\n", siteID)
	fmt.Fprintf(w, "Modified: %s\n", formatTime(site.ModifiedAt))

	if site.Description != "" {
		fmt.Fprintf(w, "About:    %s\n", site.Description)
	}
}

// driveJSON is the JSON output schema for a single drive in drives output.
type driveJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DriveType  string `json:"drive_type"`
	Owner      string `json:"owner,omitempty"`
	QuotaUsed  int64  `json:"quota_used"`
	QuotaTotal int64  `json:"quota_total"`
	WebURL     string `json:"web_url"`
}

func runDrives(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	sess, err := NewSession(ctx, cc)
	if err != nil {
		return err
	}

	_, siteID, err := sess.Site(ctx)
	if err != nil {
		return err
	}

	drives, err := sess.Client.ListDrives(ctx, sess.Token, siteID)
	if err != nil {
		return fmt.Errorf("listing drives: %w", err)
	}

	if cc.Flags.JSON {
		out := make([]driveJSON, 0, len(drives))
		for i := range drives {
			out = append(out, driveJSON{
				ID:         drives[i].ID,
				Name:       drives[i].Name,
				DriveType:  drives[i].DriveType,
				Owner:      drives[i].OwnerName,
				QuotaUsed:  drives[i].QuotaUsed,
				QuotaTotal: drives[i].QuotaTotal,
				WebURL:     drives[i].WebURL,
			})
		}

		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	printDrivesTable(cc.Out, drives, cc.Cfg.Drive)

	return nil
}

// printDrivesTable prints drives in server order, marking the default one.
func printDrivesTable(w io.Writer, drives []graph.Drive, defaultName string) {
	headers := []string{"", "NAME", "TYPE", "USED", "ID"}
	rows := make([][]string, 0, len(drives))

	for i := range drives {
		mark := ""
		if drives[i].Name == defaultName {
			mark = "*"
		}

		rows = append(rows, []string{
			mark, drives[i].Name, drives[i].DriveType, formatSize(drives[i].QuotaUsed), drives[i].ID,
		})
	}

	printTable(w, headers, rows)
}
