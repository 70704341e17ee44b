package graph

import (
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeName cleans an item name as returned by the service:
//  1. Names that arrive percent-encoded ("My%20File.docx") are decoded.
//     A name that fails to decode, or that would decode to something
//     containing a path separator ("a%2Fb"), is kept verbatim.
//  2. The result is NFC-normalized so names uploaded from macOS (NFD)
//     compare equal to the same name typed on Windows or Linux.
func normalizeName(name, id string, logger *slog.Logger) string {
	out := name

	if strings.Contains(name, "%") {
		decoded, err := url.PathUnescape(name)
		if err == nil && decoded != name && !strings.Contains(decoded, "/") {
			logger.Debug("decoded URL-encoded item name",
				slog.String("id", id),
				slog.String("raw", name),
				slog.String("decoded", decoded),
			)

			out = decoded
		}
	}

	if !norm.NFC.IsNormalString(out) {
		out = norm.NFC.String(out)
	}

	return out
}
