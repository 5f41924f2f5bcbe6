package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

const (
	downloadDirPerm  = 0o750
	downloadFilePerm = 0o600
	fallbackFileName = "download"
)

// Download fetches rawURL into dir, naming the file after the last segment of
// the URL path, and returns the file's path. It is not bounded by the probe
// timeout; bound it through ctx. Non-2xx responses write nothing and return
// ErrUnexpectedStatus. A body cut short leaves no partial file behind.
func (p *Prober) Download(ctx context.Context, rawURL, dir string) (string, error) {
	target, err := p.target(rawURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "parse %q: %v", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "build download request for %s: %v", target, err)
	}

	client := &http.Client{Transport: p.client.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", e2eerrors.ErrProbeTransport, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", e2eerrors.Wrapf(e2eerrors.ErrUnexpectedStatus, "GET %s: %d", target, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, downloadDirPerm); err != nil {
		return "", e2eerrors.Wrapf(err, "create download directory %s", dir)
	}
	dest := filepath.Join(dir, fileNameOf(u))
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, downloadFilePerm) //nolint:gosec // dest is dir plus a cleaned base name
	if err != nil {
		return "", e2eerrors.Wrapf(err, "create %s", dest)
	}

	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(dest)
		return "", e2eerrors.Wrapf(copyErr, "write %s", dest)
	}
	if closeErr != nil {
		_ = os.Remove(dest)
		return "", e2eerrors.Wrapf(closeErr, "close %s", dest)
	}

	p.logger.Debug().Str("url", target).Str("file", dest).Int64("bytes", n).Msg("downloaded")
	return dest, nil
}

// fileNameOf returns the last path segment of u, or a fallback name.
func fileNameOf(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == ".." || name == "/" || name == "" {
		return fallbackFileName
	}
	return name
}
