package catalogsource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
)

func TestNewHTTPSource_RequiresURL(t *testing.T) {
	_, err := NewHTTPSource(Config{})
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestHTTPSource_Fetch(t *testing.T) {
	var gotBody map[string]any
	var gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"A1","nombre":"Widget","precio":9.5}]`))
	}))
	defer server.Close()

	source, err := NewHTTPSource(Config{URL: server.URL})
	require.NoError(t, err)

	body, err := source.Fetch(context.Background(), catalog.Query{CategoryID: 5, ApprovedLine: 2})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":"A1","nombre":"Widget","precio":9.5}]`, string(body))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{"idCategoria": float64(5), "lineaAprobada": float64(2)}, gotBody)
}

func TestHTTPSource_Fetch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source, err := NewHTTPSource(Config{URL: server.URL})
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), catalog.Query{CategoryID: 1, ApprovedLine: 1})
	require.Error(t, err)

	var transportErr *catalog.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	assert.ErrorIs(t, err, shared.ErrTransport)
}

func TestHTTPSource_Fetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	source, err := NewHTTPSource(Config{URL: url})
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), catalog.Query{CategoryID: 1, ApprovedLine: 1})
	var transportErr *catalog.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
	assert.NotNil(t, transportErr.Cause)
}

func TestHTTPSource_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	source, err := NewHTTPSource(Config{URL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), catalog.Query{CategoryID: 1, ApprovedLine: 1})
	assert.ErrorIs(t, err, shared.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPSource_Fetch_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[" + strings.Repeat(" ", 200) + "]"))
	}))
	defer server.Close()

	source, err := NewHTTPSource(Config{URL: server.URL, MaxResponseBytes: 100})
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), catalog.Query{CategoryID: 1, ApprovedLine: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 100 bytes")
}

func TestHTTPSource_Fetch_NonArrayBodyIsPassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	source, err := NewHTTPSource(Config{URL: server.URL})
	require.NoError(t, err)

	body, err := source.Fetch(context.Background(), catalog.Query{CategoryID: 1, ApprovedLine: 1})
	require.NoError(t, err)

	_, _, err = catalog.ParseCollection(body)
	assert.ErrorIs(t, err, shared.ErrSchema)
}
