package graph

import "time"

// ChildCountUnknown indicates the child count was not present in the API response.
const ChildCountUnknown = -1

// Token is an app-only bearer credential returned by Authenticate.
// The client never tracks its lifetime: callers re-authenticate when an
// operation fails with ErrUnauthorized.
type Token struct {
	TokenType    string // always "Bearer"
	ExpiresIn    int    // seconds, as reported by the token endpoint
	ExtExpiresIn int    // seconds; extended lifetime used during outages
	AccessToken  string // opaque; NEVER log
	Expiry       time.Time
}

// Site is a SharePoint site collection as returned by Graph.
// ID is composite: "<hostname>,<site-collection-id>,<web-id>".
type Site struct {
	ID          string
	Name        string
	DisplayName string
	Description string
	WebURL      string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Drive is a document library inside a site.
type Drive struct {
	ID         string
	Name       string
	DriveType  string // "documentLibrary" for SharePoint libraries
	WebURL     string
	OwnerName  string
	QuotaUsed  int64
	QuotaTotal int64
}

// Item represents a file or folder in a drive.
// Fields are normalized from the Graph API response; callers never see raw API data.
type Item struct {
	ID           string
	Name         string // NFC-normalized
	DriveID      string
	ParentID     string
	ParentPath   string // e.g. "/drives/{id}/root:/Reports"
	Size         int64
	ETag         string
	CTag         string
	IsFile       bool
	IsFolder     bool
	MimeType     string
	QuickXorHash string // base64-encoded
	SHA1Hash     string // hex
	SHA256Hash   string // hex
	CreatedAt    time.Time
	ModifiedAt   time.Time
	ChildCount   int    // ChildCountUnknown if not present
	SharedScope  string // "anonymous", "organization", "users"; empty when not shared
	WebURL       string
	DownloadURL  string // pre-authenticated, ephemeral; NEVER log
}
