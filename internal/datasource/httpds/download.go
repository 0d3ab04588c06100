package httpds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, headers http.Header, v any) error {
	h := headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Accept", "application/json")

	resp, err := c.Get(ctx, url, h)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("httpds: decode %s: %w", url, err)
	}
	return nil
}

// Download streams url into path. The body is written to a temporary file in
// the same directory and renamed into place, so path never holds a partial
// download. It returns the number of bytes written.
func (c *Client) Download(ctx context.Context, url string, headers http.Header, path string) (int64, error) {
	resp, err := c.Get(ctx, url, headers)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("httpds: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("httpds: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("httpds: download %s: %w", url, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return n, fmt.Errorf("httpds: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("httpds: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return n, fmt.Errorf("httpds: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("httpds: rename: %w", err)
	}
	return n, nil
}

// Remote is a datasource.Source reading a URL through a Client.
type Remote struct {
	Client  *Client
	URL     string
	Headers http.Header
}

// Open issues the GET request and returns the response body.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := r.Client.Get(ctx, r.URL, r.Headers)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
