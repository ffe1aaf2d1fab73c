package taxonomy

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HTTPClient allows injecting mock clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads reference assets (crosswalk workbook, ESCO exports) into
// the raw data directory. Downloads are one-time: when a cached copy exists
// the network is skipped entirely. There is no invalidation; staleness of
// reference data is accepted.
type Fetcher struct {
	rawDir string
	client HTTPClient
	logger *log.Logger
}

func NewFetcher(rawDir string, client HTTPClient, logger *log.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{rawDir: rawDir, client: client, logger: logger}
}

// Path returns where a named asset lives (or would live) under the raw
// data directory.
func (f *Fetcher) Path(filename string) string {
	return filepath.Join(f.rawDir, filename)
}

// Fetch downloads url into rawDir/filename unless the file already exists,
// and returns the local path.
func (f *Fetcher) Fetch(ctx context.Context, url, filename string) (string, error) {
	path := filepath.Join(f.rawDir, filename)
	if _, err := os.Stat(path); err == nil {
		f.logger.Printf("[Taxonomy] cached copy exists, skipping download file=%s", filename)
		return path, nil
	}

	if err := os.MkdirAll(f.rawDir, 0o755); err != nil {
		return "", err
	}

	f.logger.Printf("[Taxonomy] downloading url=%s file=%s", url, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status=%d", filename, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.rawDir, filename+"-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}
