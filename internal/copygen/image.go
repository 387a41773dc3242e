package copygen

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxImageBytes = 5 << 20

// ImageFetcher downloads a product image and returns it as a data URL
// ready for inlining into a vision request.
type ImageFetcher interface {
	FetchDataURL(ctx context.Context, imageURL string) (string, error)
}

type httpImageFetcher struct {
	client *http.Client
}

func NewImageFetcher() ImageFetcher {
	return &httpImageFetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *httpImageFetcher) FetchDataURL(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d byte limit", maxImageBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image body is empty")
	}

	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
