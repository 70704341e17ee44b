package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tonimelisma/spdrive/internal/config"
	"github.com/tonimelisma/spdrive/internal/graph"
)

// Service roots. Empty means the production endpoints; tests point them at
// an httptest server.
var (
	graphBaseURL  string
	graphLoginURL string
)

// metadataTimeout bounds metadata calls (token, site, drives, listings).
// Transfers get no overall timeout, only the connect timeout.
const metadataTimeout = 30 * time.Second

// Session holds an authenticated pair of Graph clients and the token they
// share. Client serves metadata calls; Transfer serves uploads and downloads.
type Session struct {
	Client   *graph.Client
	Transfer *graph.Client
	Token    *graph.Token
	logger   *slog.Logger
}

// graphConfig maps the resolved configuration onto the client's Config.
func graphConfig(cfg *config.Config) graph.Config {
	return graph.Config{
		TenantID:     cfg.TenantID,
		TenantName:   cfg.TenantName,
		SiteName:     cfg.SiteName,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}
}

// newHTTPClient returns an HTTP client whose dialer honours connect_timeout.
// A zero overall timeout leaves the request bounded only by ctx.
func newHTTPClient(connectTimeout, overall time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext

	return &http.Client{Transport: transport, Timeout: overall}
}

// newClients builds the metadata and transfer clients for cfg without
// authenticating.
func newClients(cfg *config.Config, logger *slog.Logger) (*graph.Client, *graph.Client) {
	connect := cfg.ConnectTimeoutDuration()
	gc := graphConfig(cfg)

	client := graph.NewClient(graphBaseURL, graphLoginURL, gc,
		newHTTPClient(connect, metadataTimeout), logger, cfg.UserAgent)
	transfer := graph.NewClient(graphBaseURL, graphLoginURL, gc,
		newHTTPClient(connect, 0), logger, cfg.UserAgent)

	return client, transfer
}

// NewSession checks that the configuration is complete, then authenticates.
// Every network command starts here, so each invocation acquires exactly one
// token.
func NewSession(ctx context.Context, cc *CLIContext) (*Session, error) {
	if err := config.ValidateResolved(cc.Cfg); err != nil {
		return nil, fmt.Errorf("incomplete configuration (%s): %w", cc.CfgPath, err)
	}

	client, transfer := newClients(cc.Cfg, cc.Logger)

	tok, err := client.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	return &Session{
		Client:   client,
		Transfer: transfer,
		Token:    tok,
		logger:   cc.Logger,
	}, nil
}

// Site fetches the configured site and returns it with its site-collection id.
func (s *Session) Site(ctx context.Context) (*graph.Site, string, error) {
	site, err := s.Client.FetchSite(ctx, s.Token)
	if err != nil {
		return nil, "", fmt.Errorf("fetching site: %w", err)
	}

	id, err := graph.SiteID(site)
	if err != nil {
		return nil, "", err
	}

	s.logger.Debug("resolved site", slog.String("site_id", id), slog.String("web_url", site.WebURL))

	return site, id, nil
}

// Drive resolves the named document library in the configured site.
func (s *Session) Drive(ctx context.Context, name string) (*graph.Drive, error) {
	_, siteID, err := s.Site(ctx)
	if err != nil {
		return nil, err
	}

	drive, err := s.Client.ResolveDrive(ctx, s.Token, siteID, name)
	if err != nil {
		return nil, fmt.Errorf("resolving drive: %w", err)
	}

	s.logger.Debug("resolved drive", slog.String("name", drive.Name), slog.String("drive_id", drive.ID))

	return drive, nil
}
