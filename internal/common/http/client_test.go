package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetMergesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "12.9", r.URL.Query().Get("lat"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(2 * time.Second)
	resp, err := c.Get(context.Background(), server.URL+"?format=json", url.Values{"lat": {"12.9"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestClient_GetInvalidURL(t *testing.T) {
	c := NewClient(time.Second)
	_, err := c.Get(context.Background(), "://bad", nil)
	assert.Error(t, err)
}

func TestClient_GetCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClientWith(server.Client()).Get(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
