// Package graph provides a client for the SharePoint document-library
// surface of the Microsoft Graph API: app-only authentication, site and
// drive resolution, folder listing, and single-request content transfer.
// Every operation issues exactly one HTTP request and never retries.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, graph.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("graph: bad request")
	ErrUnauthorized = errors.New("graph: unauthorized")
	ErrForbidden    = errors.New("graph: forbidden")
	ErrNotFound     = errors.New("graph: not found")
	ErrConflict     = errors.New("graph: conflict")
	ErrGone         = errors.New("graph: resource gone")
	ErrThrottled    = errors.New("graph: throttled")
	ErrLocked       = errors.New("graph: resource locked")
	ErrServerError  = errors.New("graph: server error")
	ErrUnexpected   = errors.New("graph: unexpected status")
)

// Failures that do not come from a Graph status code.
var (
	// ErrAuthFailed is returned by Authenticate for any non-200 token
	// response or token endpoint transport failure.
	ErrAuthFailed = errors.New("graph: authentication failed")

	// ErrTransport wraps network-level failures (DNS, connection reset, ...).
	ErrTransport = errors.New("graph: transport failure")

	// ErrDecode is returned when a 2xx response body is not the expected JSON.
	ErrDecode = errors.New("graph: decoding response")

	// ErrDriveNotFound is returned by ResolveDrive when no drive in the
	// site carries the requested name.
	ErrDriveNotFound = errors.New("graph: drive not found")

	// ErrMalformedSiteID is returned by SiteID when the composite site id
	// has fewer than two comma-separated segments.
	ErrMalformedSiteID = errors.New("graph: malformed site id")
)

// GraphError wraps a sentinel error with HTTP status code, request ID,
// the Graph error code, and the API error message body for debugging.
type GraphError struct {
	StatusCode int
	RequestID  string
	Code       string // Graph "error.code", e.g. "itemNotFound"; empty if the body was not JSON
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *GraphError) Error() string {
	code := ""
	if e.Code != "" {
		code = e.Code + ": "
	}

	if e.RequestID != "" {
		return fmt.Sprintf("graph: HTTP %d (request-id: %s): %s%s", e.StatusCode, e.RequestID, code, e.Message)
	}

	return fmt.Sprintf("graph: HTTP %d: %s%s", e.StatusCode, code, e.Message)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// errorEnvelope mirrors the Graph API error body:
// {"error": {"code": "...", "message": "..."}}.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newGraphError builds a GraphError from a non-2xx response. The Graph
// error code and message are extracted when the body is the standard
// envelope; otherwise the raw body becomes the message.
func newGraphError(status int, requestID string, body []byte) *GraphError {
	ge := &GraphError{
		StatusCode: status,
		RequestID:  requestID,
		Message:    string(body),
		Err:        classifyStatus(status),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Code != "" {
		ge.Code = env.Error.Code
		ge.Message = env.Error.Message
	}

	return ge
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusGone:
		return ErrGone
	case http.StatusTooManyRequests:
		return ErrThrottled
	case http.StatusLocked:
		return ErrLocked
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrUnexpected
	}
}
