package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// SimpleUploadMaxSize is the service ceiling for single-request uploads
// (4 MiB). Upload does not check it; larger payloads are rejected by the
// service and surface as a *GraphError.
const SimpleUploadMaxSize = 4 * 1024 * 1024

// uploadPath is the content endpoint for {path}/{fileName}:
// /drives/{driveId}/root:{path}/{fileName}:/content. path carries its own
// leading slash ("/Reports/2024"), or is empty for the drive root.
func uploadPath(driveID, path, fileName string) string {
	return fmt.Sprintf("/drives/%s/root:%s/%s:/content", driveID, path, fileName)
}

// Upload writes data to {path}/{fileName} in a single PUT, replacing any
// existing file, and returns the resulting item. The body is sent exactly as
// given with contentType as its Content-Type.
func (c *Client) Upload(
	ctx context.Context, tok *Token, driveID, path, fileName, contentType string, data []byte,
) (*Item, error) {
	c.logger.Info("simple upload",
		slog.String("drive_id", driveID),
		slog.String("path", path),
		slog.String("name", fileName),
		slog.String("content_type", contentType),
		slog.Int("size", len(data)),
	)

	resp, err := c.do(ctx, tok, http.MethodPut, uploadPath(driveID, path, fileName), contentType, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&dir); err != nil {
		c.logger.Error("decoding upload response failed",
			slog.String("name", fileName),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("%w: upload of %q: %w", ErrDecode, fileName, err)
	}

	item := dir.toItem(c.logger)

	c.logger.Debug("upload complete",
		slog.String("id", item.ID),
		slog.String("name", item.Name),
		slog.Int64("size", item.Size),
	)

	return &item, nil
}
