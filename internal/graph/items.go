package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Timestamp validation bounds. Timestamps outside this range are replaced
// with the current time and a warning is logged.
const (
	minValidYear = 1970
	maxValidYear = 2100
)

// driveItemResponse mirrors the Graph API driveItem JSON exactly.
// Unexported; callers use Item via toItem() normalization.
type driveItemResponse struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Size                 int64        `json:"size"`
	ETag                 string       `json:"eTag"`
	CTag                 string       `json:"cTag"`
	WebURL               string       `json:"webUrl"`
	CreatedDateTime      string       `json:"createdDateTime"`
	LastModifiedDateTime string       `json:"lastModifiedDateTime"`
	ParentReference      *parentRef   `json:"parentReference"`
	File                 *fileFacet   `json:"file"`
	Folder               *folderFacet `json:"folder"`
	Shared               *sharedFacet `json:"shared"`
	DownloadURL          string       `json:"@microsoft.graph.downloadUrl"` //nolint:tagliatelle // Graph API annotation key
}

type parentRef struct {
	ID      string `json:"id"`
	DriveID string `json:"driveId"`
	Path    string `json:"path"`
}

type fileFacet struct {
	MimeType string     `json:"mimeType"`
	Hashes   *hashFacet `json:"hashes"`
}

type hashFacet struct {
	QuickXorHash string `json:"quickXorHash"`
	SHA1Hash     string `json:"sha1Hash"`
	SHA256Hash   string `json:"sha256Hash"`
}

type folderFacet struct {
	ChildCount int `json:"childCount"`
}

type sharedFacet struct {
	Scope string `json:"scope"`
}

type listChildrenResponse struct {
	Value []driveItemResponse `json:"value"`
}

// toItem normalizes a Graph API driveItem response into our Item type.
// The file and folder facets are copied as-is; the service keeps them
// mutually exclusive and that is not re-checked here.
func (d *driveItemResponse) toItem(logger *slog.Logger) Item {
	item := Item{
		ID:          d.ID,
		Name:        normalizeName(d.Name, d.ID, logger),
		Size:        d.Size,
		ETag:        d.ETag,
		CTag:        d.CTag,
		WebURL:      d.WebURL,
		IsFile:      d.File != nil,
		IsFolder:    d.Folder != nil,
		ChildCount:  ChildCountUnknown,
		DownloadURL: d.DownloadURL,
	}

	if d.ParentReference != nil {
		item.DriveID = d.ParentReference.DriveID
		item.ParentID = d.ParentReference.ID
		item.ParentPath = d.ParentReference.Path
	}

	if d.Folder != nil {
		item.ChildCount = d.Folder.ChildCount
	}

	// File hashes, nil-safe at each level.
	if d.File != nil {
		item.MimeType = d.File.MimeType

		if d.File.Hashes != nil {
			item.QuickXorHash = d.File.Hashes.QuickXorHash
			item.SHA1Hash = d.File.Hashes.SHA1Hash
			item.SHA256Hash = d.File.Hashes.SHA256Hash
		}
	}

	if d.Shared != nil {
		item.SharedScope = d.Shared.Scope
	}

	item.CreatedAt = parseTimestamp(d.CreatedDateTime, "createdDateTime", d.ID, logger)
	item.ModifiedAt = parseTimestamp(d.LastModifiedDateTime, "lastModifiedDateTime", d.ID, logger)

	return item
}

// parseTimestamp parses an RFC3339 timestamp and validates the year range.
// Invalid or out-of-range timestamps are replaced with time.Now().UTC() and logged.
func parseTimestamp(raw, field, id string, logger *slog.Logger) time.Time {
	if raw == "" {
		logger.Warn("empty timestamp, using current time",
			slog.String("field", field),
			slog.String("id", id),
		)

		return time.Now().UTC()
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp, using current time",
			slog.String("field", field),
			slog.String("id", id),
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)

		return time.Now().UTC()
	}

	if t.Year() < minValidYear || t.Year() > maxValidYear {
		logger.Warn("timestamp out of valid range, using current time",
			slog.String("field", field),
			slog.String("id", id),
			slog.String("raw", raw),
		)

		return time.Now().UTC()
	}

	return t
}

// childrenPath is the children collection of the folder at path:
// /Drives/{driveId}/root:/{path}:/Children. path is interpolated without
// escaping, so callers pass URL-safe segments. An empty path addresses the
// drive root, which has no path form.
func childrenPath(driveID, path string) string {
	if path == "" {
		return fmt.Sprintf("/Drives/%s/root/Children", driveID)
	}

	return fmt.Sprintf("/Drives/%s/root:/%s:/Children", driveID, path)
}

// ListItems returns the children of the folder at path in the order the
// service returned them. Only the first page of results is fetched.
func (c *Client) ListItems(ctx context.Context, tok *Token, driveID, path string) ([]Item, error) {
	c.logger.Info("listing items",
		slog.String("drive_id", driveID),
		slog.String("path", path),
	)

	resp, err := c.do(ctx, tok, http.MethodGet, childrenPath(driveID, path), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var lcr listChildrenResponse
	if err := json.NewDecoder(resp.Body).Decode(&lcr); err != nil {
		c.logger.Error("decoding children response failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("%w: children of %q: %w", ErrDecode, path, err)
	}

	items := make([]Item, 0, len(lcr.Value))
	for i := range lcr.Value {
		items = append(items, lcr.Value[i].toItem(c.logger))
	}

	c.logger.Debug("listed items",
		slog.String("path", path),
		slog.Int("count", len(items)),
	)

	return items, nil
}
