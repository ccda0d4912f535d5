package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name:    "missing server",
			opts:    []Option{},
			wantErr: true,
		},
		{
			name:    "valid config",
			opts:    []Option{WithServer("http://localhost:8080")},
			wantErr: false,
		},
		{
			name:    "unsupported scheme",
			opts:    []Option{WithServer("ftp://localhost")},
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			opts:    []Option{WithServer("http://localhost:8080"), WithTimeout(0)},
			wantErr: true,
		},
		{
			name:    "missing CA file",
			opts:    []Option{WithServer("https://localhost:8443"), WithTLSConfig("/nonexistent/ca.pem", false)},
			wantErr: true,
		},
		{
			name: "with custom user agent and base path",
			opts: []Option{
				WithServer("http://localhost:8080"),
				WithUserAgent("test-agent"),
				WithBasePath("api/medicines-v2"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, client)
			} else {
				require.NoError(t, err)
				require.NotNil(t, client)
			}
		})
	}
}

func TestCollectionURL(t *testing.T) {
	tests := []struct {
		server   string
		basePath string
		want     string
	}{
		{server: "http://localhost:8080", want: "http://localhost:8080/api/medicines"},
		{server: "http://localhost:8080/", want: "http://localhost:8080/api/medicines"},
		{server: "http://example.com/prefix", basePath: "/api/medicines-schedule", want: "http://example.com/prefix/api/medicines-schedule"},
		{server: "http://example.com", basePath: "v2/items/", want: "http://example.com/v2/items"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c, err := New(WithServer(tt.server), WithBasePath(tt.basePath))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.CollectionURL())
		})
	}
}

func TestClientDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		assert.Empty(t, r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, err := New(WithServer(server.URL), WithUserAgent("test-agent"))
	require.NoError(t, err)

	resp, err := client.do(context.Background(), http.MethodGet, "test", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK", resp.Reason)
	require.Equal(t, server.URL+"/api/medicines/test", resp.URL)
	require.True(t, resp.IsJSON())

	var result map[string]string
	require.NoError(t, resp.Decode(&result))
	require.Equal(t, "ok", result["status"])
}

func TestClientDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(WithServer(url))
	require.NoError(t, err)

	_, err = client.Medicines().List(context.Background())
	require.Error(t, err)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := New(WithServer(server.URL), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Medicines().List(context.Background())
	require.Error(t, err)
}

func TestWithHTTPClientLeavesCallerClientUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transport := &http.Transport{}
	hc := &http.Client{Transport: transport, Timeout: 3 * time.Second}
	client, err := New(WithServer(server.URL), WithHTTPClient(hc), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, hc.Timeout)
	assert.Equal(t, 50*time.Millisecond, client.http.Timeout)
	assert.NotSame(t, hc, client.http)
	assert.Same(t, transport, client.http.Transport)

	resp, err := client.Medicines().Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestClientVerboseLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	core, recorded := observer.New(zap.DebugLevel)
	client, err := New(WithServer(server.URL), WithLogger(zap.New(core).Sugar()))
	require.NoError(t, err)

	resp, err := client.Medicines().Delete(context.Background(), 3)
	require.NoError(t, err)

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Sending request", entries[0].Message)
	assert.Equal(t, "Received response", entries[1].Message)
	fields := entries[1].ContextMap()
	assert.Equal(t, http.MethodDelete, fields["method"])
	assert.Equal(t, resp.RequestID, fields["requestID"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestResponseIsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{contentType: "application/json", want: true},
		{contentType: "application/json;charset=UTF-8", want: true},
		{contentType: "application/problem+json", want: true},
		{contentType: "text/plain", want: false},
		{contentType: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			resp := &Response{Header: http.Header{}}
			if tt.contentType != "" {
				resp.Header.Set("Content-Type", tt.contentType)
			}
			assert.Equal(t, tt.want, resp.IsJSON())
		})
	}
}

func TestResponseDecodeError(t *testing.T) {
	tests := []struct {
		name        string
		resp        *Response
		wantMessage string
	}{
		{
			name: "json error body",
			resp: &Response{
				StatusCode: http.StatusNotFound,
				Reason:     "Not Found",
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       []byte(`{"status":404,"error":"Not Found","path":"/api/medicines/9"}`),
			},
			wantMessage: "Not Found",
		},
		{
			name: "plain text body",
			resp: &Response{
				StatusCode: http.StatusInternalServerError,
				Reason:     "Internal Server Error",
				Body:       []byte("boom"),
			},
			wantMessage: "boom",
		},
		{
			name:        "empty body falls back to reason",
			resp:        &Response{StatusCode: http.StatusBadRequest, Reason: "Bad Request"},
			wantMessage: "Bad Request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out any
			err := tt.resp.Decode(&out)
			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.resp.StatusCode, httpErr.StatusCode)
			assert.Equal(t, tt.wantMessage, httpErr.Message)
		})
	}
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{
		StatusCode: http.StatusBadRequest,
		Message:    "validation failed",
	}
	require.Equal(t, "request failed (400): validation failed", err.Error())
}
