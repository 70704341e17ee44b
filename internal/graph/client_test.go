package graph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testToken is the bearer token handed to every data-plane call in tests.
var testToken = &Token{TokenType: "Bearer", AccessToken: "test-token", ExpiresIn: 3599}

// testConfig is the tenant/site configuration used by newTestClient.
var testConfig = Config{
	TenantID:     "tenant-guid",
	TenantName:   "contoso",
	SiteName:     "Engineering",
	ClientID:     "app-id",
	ClientSecret: "app-secret",
}

// newTestClient creates a Client whose Graph and login roots both point at
// the given httptest server.
func newTestClient(t *testing.T, url string) *Client {
	t.Helper()

	return NewClient(url, url, testConfig, http.DefaultClient, testNoopLogger(), "test-agent")
}

// testNoopLogger returns a logger that discards everything.
func testNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", testConfig, nil, nil, "")

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultLoginURL, c.loginURL)
	assert.Equal(t, http.DefaultClient, c.httpClient)
	assert.NotNil(t, c.logger)
	assert.Equal(t, defaultAgent, c.userAgent)
	assert.Equal(t, testConfig, c.Config())
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("https://graph.example.com/v1.0/", "https://login.example.com/", testConfig, nil, nil, "")

	assert.Equal(t, "https://graph.example.com/v1.0", c.baseURL)
	assert.Equal(t, "https://login.example.com", c.loginURL)
}

func TestDo_SetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))

		_, err := uuid.Parse(r.Header.Get("client-request-id"))
		assert.NoError(t, err, "client-request-id should be a UUID")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.do(context.Background(), testToken, http.MethodGet, "/x", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"ok"}`, string(body))
}

func TestDo_NoContentTypeWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.do(context.Background(), testToken, http.MethodGet, "/x", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestDo_UniqueClientRequestID(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("client-request-id")] = true
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	for range 3 {
		resp, err := client.do(context.Background(), testToken, http.MethodGet, "/x", "", nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)
}

func TestDo_MissingToken(t *testing.T) {
	var called atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called.Store(true)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.do(context.Background(), nil, http.MethodGet, "/x", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.do(context.Background(), &Token{}, http.MethodGet, "/x", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.False(t, called.Load(), "no request should be sent without a token")
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"conflict", http.StatusConflict, ErrConflict},
		{"gone", http.StatusGone, ErrGone},
		{"locked", http.StatusLocked, ErrLocked},
		{"throttled", http.StatusTooManyRequests, ErrThrottled},
		{"server error", http.StatusInternalServerError, ErrServerError},
		{"service unavailable", http.StatusServiceUnavailable, ErrServerError},
		{"payload too large", http.StatusRequestEntityTooLarge, ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("request-id", "test-req-id")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"something"}`))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.do(context.Background(), testToken, http.MethodGet, "/test", "", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var graphErr *GraphError
			require.ErrorAs(t, err, &graphErr)
			assert.Equal(t, tt.status, graphErr.StatusCode)
			assert.Equal(t, "test-req-id", graphErr.RequestID)
		})
	}
}

func TestDo_NoRetry(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.do(context.Background(), testToken, http.MethodGet, "/x", "", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_ParsesGraphErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.do(context.Background(), testToken, http.MethodGet, "/x", "", nil)

	var graphErr *GraphError
	require.ErrorAs(t, err, &graphErr)
	assert.Equal(t, "itemNotFound", graphErr.Code)
	assert.Equal(t, "The resource could not be found.", graphErr.Message)
	assert.Contains(t, err.Error(), "itemNotFound")
}

func TestDo_TransportError(t *testing.T) {
	httpClient := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset by peer")
		}),
	}

	client := NewClient("http://graph.invalid", "", testConfig, httpClient, testNoopLogger(), "")
	_, err := client.do(context.Background(), testToken, http.MethodGet, "/x", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestDo_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL)
	_, err := client.do(ctx, testToken, http.MethodGet, "/x", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestGraphError_Format(t *testing.T) {
	withID := &GraphError{StatusCode: 404, RequestID: "abc", Code: "itemNotFound", Message: "gone", Err: ErrNotFound}
	assert.Equal(t, "graph: HTTP 404 (request-id: abc): itemNotFound: gone", withID.Error())

	bare := &GraphError{StatusCode: 500, Message: "boom", Err: ErrServerError}
	assert.Equal(t, "graph: HTTP 500: boom", bare.Error())
	assert.ErrorIs(t, bare, ErrServerError)
}
