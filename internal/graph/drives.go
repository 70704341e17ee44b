package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// driveResponse mirrors the Graph API drive JSON response.
// Unexported; callers use Drive via toDrive() normalization.
type driveResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	DriveType string      `json:"driveType"`
	WebURL    string      `json:"webUrl"`
	Owner     *ownerFacet `json:"owner"`
	Quota     *quotaFacet `json:"quota"`
}

// ownerFacet represents the owner block in a Graph API drive response.
// Site libraries are owned by a group rather than a user.
type ownerFacet struct {
	User *struct {
		DisplayName string `json:"displayName"`
	} `json:"user"`
	Group *struct {
		DisplayName string `json:"displayName"`
	} `json:"group"`
}

// quotaFacet represents the quota block in a Graph API drive response.
type quotaFacet struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

// drivesListResponse wraps the value array from GET /sites/{id}/Drives.
type drivesListResponse struct {
	Value []driveResponse `json:"value"`
}

// toDrive normalizes a Graph API drive response into our Drive type.
// Nil-safe for optional owner and quota facets.
func (d *driveResponse) toDrive() Drive {
	drive := Drive{
		ID:        d.ID,
		Name:      d.Name,
		DriveType: d.DriveType,
		WebURL:    d.WebURL,
	}

	if d.Owner != nil {
		switch {
		case d.Owner.User != nil:
			drive.OwnerName = d.Owner.User.DisplayName
		case d.Owner.Group != nil:
			drive.OwnerName = d.Owner.Group.DisplayName
		}
	}

	if d.Quota != nil {
		drive.QuotaUsed = d.Quota.Used
		drive.QuotaTotal = d.Quota.Total
	}

	return drive
}

// ListDrives returns the document libraries of a site in the order the
// service returned them.
func (c *Client) ListDrives(ctx context.Context, tok *Token, siteID string) ([]Drive, error) {
	c.logger.Info("listing site drives",
		slog.String("site_id", siteID),
	)

	path := fmt.Sprintf("/sites/%s/Drives", siteID)

	resp, err := c.do(ctx, tok, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dlr drivesListResponse
	if err := json.NewDecoder(resp.Body).Decode(&dlr); err != nil {
		c.logger.Error("decoding drives response failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: drives: %w", ErrDecode, err)
	}

	drives := make([]Drive, 0, len(dlr.Value))
	for i := range dlr.Value {
		drives = append(drives, dlr.Value[i].toDrive())
	}

	c.logger.Info("listed drives",
		slog.Int("count", len(drives)),
	)

	return drives, nil
}

// ResolveDrive lists the site's drives and returns the first one whose
// name equals name exactly (case-sensitive). Duplicate names resolve to the
// first in server order. A miss returns ErrDriveNotFound.
func (c *Client) ResolveDrive(ctx context.Context, tok *Token, siteID, name string) (*Drive, error) {
	drives, err := c.ListDrives(ctx, tok, siteID)
	if err != nil {
		return nil, err
	}

	for i := range drives {
		if drives[i].Name == name {
			c.logger.Debug("resolved drive",
				slog.String("name", name),
				slog.String("drive_id", drives[i].ID),
			)

			return &drives[i], nil
		}
	}

	c.logger.Error("no drive with requested name",
		slog.String("site_id", siteID),
		slog.String("name", name),
		slog.Int("candidates", len(drives)),
	)

	return nil, fmt.Errorf("%w: %q", ErrDriveNotFound, name)
}
