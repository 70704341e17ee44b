package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// defaultScope requests every application permission granted to the app
// registration for Microsoft Graph.
const defaultScope = "https://graph.microsoft.com/.default"

// tokenEndpoint returns the v2.0 token URL for the configured tenant.
func (c *Client) tokenEndpoint() string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginURL, c.cfg.TenantID)
}

// oauthConfig builds the client-credentials configuration. Credentials go
// in the form body rather than a Basic auth header.
func (c *Client) oauthConfig() *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.tokenEndpoint(),
		Scopes:       []string{defaultScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
}

// Authenticate performs the OAuth2 client-credentials grant against the
// tenant's token endpoint and returns the issued token. Only an HTTP 200
// response counts as success; anything else, including transport errors,
// is logged and returned wrapped in ErrAuthFailed. There is no retry.
func (c *Client) Authenticate(ctx context.Context) (*Token, error) {
	c.logger.Info("requesting app-only token",
		slog.String("tenant_id", c.cfg.TenantID),
		slog.String("client_id", c.cfg.ClientID),
	)

	rec := &statusRecorder{base: c.httpClient.Transport}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport:     rec,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
		Timeout:       c.httpClient.Timeout,
	})

	tok, err := c.oauthConfig().Token(ctx)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			c.logger.Error("token request rejected",
				slog.Int("status", rErr.Response.StatusCode),
				slog.String("error_code", rErr.ErrorCode),
				slog.String("error_description", rErr.ErrorDescription),
			)

			return nil, fmt.Errorf("%w: HTTP %d: %w", ErrAuthFailed, rErr.Response.StatusCode, err)
		}

		c.logger.Error("token request failed",
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	if rec.status != http.StatusOK {
		c.logger.Error("token endpoint returned non-200 success status",
			slog.Int("status", rec.status),
		)

		return nil, fmt.Errorf("%w: unexpected HTTP %d from token endpoint", ErrAuthFailed, rec.status)
	}

	out := &Token{
		TokenType:    tok.Type(),
		AccessToken:  tok.AccessToken,
		ExpiresIn:    extraSeconds(tok, "expires_in"),
		ExtExpiresIn: extraSeconds(tok, "ext_expires_in"),
		Expiry:       tok.Expiry,
	}

	c.logger.Info("token acquired",
		slog.String("token_type", out.TokenType),
		slog.Int("expires_in", out.ExpiresIn),
		slog.Time("expiry", out.Expiry),
	)

	return out, nil
}

// extraSeconds reads an integer field from the raw token response.
// JSON numbers arrive as float64; some endpoints send them as strings.
func extraSeconds(tok *oauth2.Token, key string) int {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}

		return n
	default:
		return 0
	}
}

// statusRecorder remembers the status code of the token response. oauth2
// accepts any 2xx, while the token contract here is 200 only. Each
// Authenticate call builds its own recorder, so nothing is shared.
type statusRecorder struct {
	base   http.RoundTripper
	status int
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	r.status = resp.StatusCode

	return resp, nil
}
