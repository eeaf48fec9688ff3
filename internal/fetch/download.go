// Package fetch downloads the package-manager installer script.
//
// This is the only direct network access winstrap performs; everything
// else goes through the package manager. The Downloader interface exists
// so tests can substitute a fake and assert the installer URL was — or,
// more importantly, was not — fetched.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Downloader fetches a URL into a local file.
type Downloader interface {
	// DownloadFile GETs url and writes the body to dest, creating or
	// truncating it. dest is left in place on failure; the caller owns
	// cleanup either way.
	DownloadFile(ctx context.Context, url, dest string) error
}

// HTTPDownloader is the production Downloader.
type HTTPDownloader struct {
	Client *http.Client
}

// NewHTTPDownloader creates a Downloader with a sane default timeout.
// The installer script is tiny; a minute covers even hostile networks.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{Client: &http.Client{Timeout: time.Minute}}
}

// DownloadFile implements Downloader.
func (d *HTTPDownloader) DownloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
