package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Default service roots.
const (
	DefaultBaseURL  = "https://graph.microsoft.com/v1.0"
	DefaultLoginURL = "https://login.microsoftonline.com"
	defaultAgent    = "spdrive/0.1"
)

// Config holds the tenant and application credentials a Client is bound to.
// It is copied into the Client at construction and never changed afterwards.
type Config struct {
	TenantID     string // Entra ID directory (tenant) GUID or domain
	TenantName   string // SharePoint tenant prefix: "contoso" for contoso.sharepoint.com
	SiteName     string // site path segment under /sites/
	ClientID     string // application (client) ID
	ClientSecret string
}

// Client is an HTTP client for the SharePoint drive endpoints of the
// Microsoft Graph API. It holds no mutable state after construction, so a
// single Client may be used from many goroutines at once.
type Client struct {
	baseURL    string
	loginURL   string
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewClient creates a Graph API client.
// baseURL is typically DefaultBaseURL and loginURL DefaultLoginURL; empty
// values select those defaults. The client sets no timeout of its own, so
// a hung request only ends when ctx or httpClient gives up.
func NewClient(
	baseURL, loginURL string, cfg Config, httpClient *http.Client, logger *slog.Logger, userAgent string,
) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if loginURL == "" {
		loginURL = DefaultLoginURL
	}

	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if userAgent == "" {
		userAgent = defaultAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		loginURL:   strings.TrimRight(loginURL, "/"),
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}
}

// Config returns a copy of the credentials the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// do executes a single authenticated request against the Graph API.
// path is appended to the base URL. contentType is set only when non-empty.
// Non-2xx responses are drained, logged, and returned as *GraphError; the
// caller closes the body on success.
func (c *Client) do(
	ctx context.Context, tok *Token, method, path, contentType string, body io.Reader,
) (*http.Response, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("graph: %s %s: %w: no access token", method, path, ErrUnauthorized)
	}

	url := c.baseURL + path
	clientReqID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("client-request-id", clientReqID)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("graph request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("client_request_id", clientReqID),
			slog.String("error", err.Error()),
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("graph: request canceled: %w", errors.Join(ErrTransport, ctxErr))
		}

		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("request_id", resp.Header.Get("request-id")),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	graphErr := newGraphError(resp.StatusCode, resp.Header.Get("request-id"), errBody)

	c.logger.Error("graph request returned error status",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("code", graphErr.Code),
		slog.String("request_id", graphErr.RequestID),
		slog.String("client_request_id", clientReqID),
		slog.String("body", graphErr.Message),
	)

	return nil, graphErr
}
