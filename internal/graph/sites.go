package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// siteResponse mirrors the Graph API site JSON response.
// Unexported; callers use Site via toSite() normalization.
type siteResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	DisplayName          string `json:"displayName"`
	Description          string `json:"description"`
	WebURL               string `json:"webUrl"`
	CreatedDateTime      string `json:"createdDateTime"`
	LastModifiedDateTime string `json:"lastModifiedDateTime"`
}

func (s *siteResponse) toSite(logger *slog.Logger) Site {
	return Site{
		ID:          s.ID,
		Name:        s.Name,
		DisplayName: s.DisplayName,
		Description: s.Description,
		WebURL:      s.WebURL,
		CreatedAt:   parseTimestamp(s.CreatedDateTime, "createdDateTime", s.ID, logger),
		ModifiedAt:  parseTimestamp(s.LastModifiedDateTime, "lastModifiedDateTime", s.ID, logger),
	}
}

// sitePath addresses a site by server-relative URL:
// /sites/{tenant}.sharepoint.com:/sites/{site}.
func (c *Client) sitePath() string {
	return fmt.Sprintf("/sites/%s.sharepoint.com:/sites/%s", c.cfg.TenantName, c.cfg.SiteName)
}

// FetchSite returns the site named by the client's tenant and site name.
func (c *Client) FetchSite(ctx context.Context, tok *Token) (*Site, error) {
	c.logger.Info("fetching site",
		slog.String("tenant_name", c.cfg.TenantName),
		slog.String("site_name", c.cfg.SiteName),
	)

	resp, err := c.do(ctx, tok, http.MethodGet, c.sitePath(), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr siteResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		c.logger.Error("decoding site response failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: site: %w", ErrDecode, err)
	}

	site := sr.toSite(c.logger)

	c.logger.Debug("fetched site",
		slog.String("id", site.ID),
		slog.String("name", site.Name),
	)

	return &site, nil
}

// SiteID extracts the site-collection id, the second segment of the
// composite Site.ID. It is the identifier the drives endpoints expect.
func SiteID(site *Site) (string, error) {
	if site == nil {
		return "", fmt.Errorf("%w: nil site", ErrMalformedSiteID)
	}

	parts := strings.Split(site.ID, ",")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedSiteID, site.ID)
	}

	return parts[1], nil
}
