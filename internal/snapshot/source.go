// Package snapshot loads the outage dataset into an immutable year store and hands the
// current one to readers.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Source is where dataset documents are read from
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Versioner is implemented by sources that can tell cheaply whether the underlying
// document changed since the last load. An empty version is unknown and always
// counts as changed.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// FileSource reads the dataset from a local file
type FileSource struct {
	Path string
}

// NewFileSource creates a Source for a local file
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return file, nil
}

// Version identifies the file contents by modification time and size
func (f *FileSource) Version(ctx context.Context) (string, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to stat dataset: %w", err)
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

func (f *FileSource) String() string {
	return "file:" + f.Path
}

// HTTPSource fetches the dataset with a single GET per load. There are no retries; a
// failed fetch fails the load.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates a Source for a URL with a request timeout
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch dataset: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// Version asks the server for the ETag or Last-Modified header of the document
func (h *HTTPSource) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check dataset version: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to check dataset version: unexpected status %s", resp.Status)
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		return etag, nil
	}
	// empty when the server offers no validator
	return resp.Header.Get("Last-Modified"), nil
}

func (h *HTTPSource) String() string {
	return h.URL
}
