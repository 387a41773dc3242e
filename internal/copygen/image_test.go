package copygen

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDataURL(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	fetcher := NewImageFetcher()
	dataURL, err := fetcher.FetchDataURL(context.Background(), srv.URL+"/p.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestFetchDataURL_NonImageContentTypeDefaultsToJpeg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	fetcher := NewImageFetcher()
	dataURL, err := fetcher.FetchDataURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
}

func TestFetchDataURL_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fetcher := NewImageFetcher()
	_, err := fetcher.FetchDataURL(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetchDataURL_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer srv.Close()

	fetcher := NewImageFetcher()
	_, err := fetcher.FetchDataURL(context.Background(), srv.URL)
	require.Error(t, err)
}
