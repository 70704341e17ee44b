package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// contentPath is the content endpoint of the item at path:
// /Drives/{driveId}/root:/{path}:/content.
func contentPath(driveID, path string) string {
	return fmt.Sprintf("/Drives/%s/root:/%s:/content", driveID, path)
}

// DownloadItem returns the full content of the item at path, buffered in
// memory and byte-for-byte as served. No size limit is applied. The service
// answers with a 302 to a pre-authenticated URL, which the HTTP client
// follows without forwarding the Authorization header to the new host.
func (c *Client) DownloadItem(ctx context.Context, tok *Token, driveID, path string) ([]byte, error) {
	c.logger.Info("downloading item",
		slog.String("drive_id", driveID),
		slog.String("path", path),
	)

	resp, err := c.do(ctx, tok, http.MethodGet, contentPath(driveID, path), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading download content failed",
			slog.String("path", path),
			slog.Int("bytes_before_error", len(data)),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("%w: reading content of %q: %w", ErrTransport, path, err)
	}

	c.logger.Debug("download complete",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	return data, nil
}
