package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListItems_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Drives/d/root:/Reports:/Children", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":[
			{
				"id": "folder-1",
				"name": "2024",
				"size": 0,
				"createdDateTime": "2024-01-01T00:00:00Z",
				"lastModifiedDateTime": "2024-02-01T00:00:00Z",
				"parentReference": {"id": "reports", "driveId": "d", "path": "/drive/root:/Reports"},
				"folder": {"childCount": 7}
			},
			{
				"id": "file-1",
				"name": "summary.xlsx",
				"size": 20480,
				"eTag": "\"{ETAG},1\"",
				"cTag": "\"c:{CTAG},1\"",
				"webUrl": "https://contoso.sharepoint.com/sites/Engineering/Shared%20Documents/Reports/summary.xlsx",
				"createdDateTime": "2024-03-10T08:15:00Z",
				"lastModifiedDateTime": "2024-03-11T09:45:30Z",
				"parentReference": {"id": "reports", "driveId": "d", "path": "/drive/root:/Reports"},
				"file": {
					"mimeType": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
					"hashes": {"quickXorHash": "aCgDG9jwBgAAAAAABQAAAAAAAAA=", "sha1Hash": "AAF4C61D"}
				},
				"shared": {"scope": "organization"},
				"@microsoft.graph.downloadUrl": "https://download.example.com/summary"
			}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListItems(context.Background(), testToken, "d", "Reports")
	require.NoError(t, err)
	require.Len(t, items, 2)

	folder := items[0]
	assert.Equal(t, "folder-1", folder.ID)
	assert.Equal(t, "2024", folder.Name)
	assert.True(t, folder.IsFolder)
	assert.False(t, folder.IsFile)
	assert.Equal(t, 7, folder.ChildCount)
	assert.Equal(t, "d", folder.DriveID)
	assert.Equal(t, "reports", folder.ParentID)
	assert.Equal(t, "/drive/root:/Reports", folder.ParentPath)

	file := items[1]
	assert.Equal(t, "summary.xlsx", file.Name)
	assert.True(t, file.IsFile)
	assert.False(t, file.IsFolder)
	assert.Equal(t, ChildCountUnknown, file.ChildCount)
	assert.Equal(t, int64(20480), file.Size)
	assert.Equal(t, `"{ETAG},1"`, file.ETag)
	assert.Equal(t, "aCgDG9jwBgAAAAAABQAAAAAAAAA=", file.QuickXorHash)
	assert.Equal(t, "AAF4C61D", file.SHA1Hash)
	assert.Empty(t, file.SHA256Hash)
	assert.Equal(t, "organization", file.SharedScope)
	assert.Equal(t, "https://download.example.com/summary", file.DownloadURL)
	assert.Equal(t, time.Date(2024, 3, 11, 9, 45, 30, 0, time.UTC), file.ModifiedAt.UTC())
}

func TestListItems_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":[{"id":"c","name":"c.txt","file":{}},{"id":"a","name":"a.txt","file":{}},{"id":"b","name":"b","folder":{}}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListItems(context.Background(), testToken, "d", "Reports")
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for i := range items {
		names = append(names, items[i].Name)
	}

	assert.Equal(t, []string{"c.txt", "a.txt", "b"}, names)
}

func TestListItems_NestedPathNotEscaped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Drives/b!xyz/root:/Reports/2024/Q1:/Children", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListItems(context.Background(), testToken, "b!xyz", "Reports/2024/Q1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListItems_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListItems(context.Background(), testToken, "d", "Missing")
	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListItems_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value": "not an array"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListItems(context.Background(), testToken, "d", "Reports")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestListItems_InvalidTimestampFallsBackToNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":[{"id":"x","name":"x.txt","file":{},
			"createdDateTime":"not-a-date",
			"lastModifiedDateTime":"0001-01-01T00:00:00Z"}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	before := time.Now().UTC()

	items, err := client.ListItems(context.Background(), testToken, "d", "Reports")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.WithinDuration(t, before, items[0].CreatedAt, 5*time.Second)
	assert.WithinDuration(t, before, items[0].ModifiedAt, 5*time.Second)
}

func TestParseTimestamp(t *testing.T) {
	logger := testNoopLogger()

	t.Run("valid", func(t *testing.T) {
		got := parseTimestamp("2023-07-14T18:30:00Z", "f", "id", logger)
		assert.Equal(t, time.Date(2023, 7, 14, 18, 30, 0, 0, time.UTC), got.UTC())
	})

	t.Run("fractional seconds", func(t *testing.T) {
		got := parseTimestamp("2023-07-14T18:30:00.1234567Z", "f", "id", logger)
		assert.Equal(t, 2023, got.Year())
	})

	t.Run("after upper bound", func(t *testing.T) {
		got := parseTimestamp("2150-01-01T00:00:00Z", "f", "id", logger)
		assert.WithinDuration(t, time.Now(), got, 5*time.Second)
	})

	t.Run("empty", func(t *testing.T) {
		got := parseTimestamp("", "f", "id", logger)
		assert.WithinDuration(t, time.Now(), got, 5*time.Second)
	})
}

func TestChildrenPath(t *testing.T) {
	assert.Equal(t, "/Drives/d/root:/a b:/Children", childrenPath("d", "a b"))
	assert.Equal(t, "/Drives/d/root/Children", childrenPath("d", ""))
}
