package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// Fetcher downloads a remote image. Errors wrap common.ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error)
}

var (
	errUnsupportedScheme = errors.New("only http(s) urls are fetched")
	errTooLarge          = errors.New("response exceeds size limit")
)

// HTTPFetcher fetches images over HTTP with a browser-like User-Agent.
type HTTPFetcher struct {
	client *http.Client
	cfg    common.FetchConfig
	logger *slog.Logger
}

func NewHTTPFetcher(cfg common.FetchConfig, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

var _ Fetcher = (*HTTPFetcher)(nil)

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if !IsFetchable(rawURL) {
		return nil, "", common.FetchError(rawURL, errUnsupportedScheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", common.FetchError(rawURL, err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", common.FetchError(rawURL, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			f.logger.Warn("email.fetch.body_close_error", "url", rawURL, "error", err)
		}
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		return nil, "", common.FetchError(rawURL, fmt.Errorf("status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, "", common.FetchError(rawURL, err)
	}
	if int64(len(body)) > f.cfg.MaxBytes {
		return nil, "", common.FetchError(rawURL, errTooLarge)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// IsFetchable reports whether a harvested src is a remote http(s) URL.
// Data URIs, cid: references and relative paths are not.
func IsFetchable(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Materializer writes an email's images and attachments to disk for OCR.
type Materializer struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewMaterializer(fetcher Fetcher, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{fetcher: fetcher, logger: logger}
}

// Materialize downloads images then saves attachments into dir and returns
// the written files in that order. Every failure is logged and skipped.
func (m *Materializer) Materialize(ctx context.Context, images []entity.ImageRef, attachments []entity.Attachment, dir string) []string {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Error("email.assets.mkdir_failed", "dir", dir, "error", err)
		return nil
	}

	var (
		files []string
		used  = map[string]bool{}
	)
	if m.fetcher != nil {
		for i, img := range images {
			if !IsFetchable(img.URL) {
				m.logger.Debug("email.assets.skip_url", "url", img.URL)
				continue
			}
			body, ct, err := m.fetcher.Fetch(ctx, img.URL)
			if err != nil {
				m.logger.Warn("email.assets.fetch_failed", "url", img.URL, "error", err)
				continue
			}
			name, ok := imageFileName(img.URL, ct, i)
			if !ok {
				m.logger.Warn("email.assets.unsupported_type", "url", img.URL, "content_type", ct)
				continue
			}
			if p, err := writeUnique(dir, name, body, used); err != nil {
				m.logger.Warn("email.assets.write_failed", "name", name, "error", err)
			} else {
				m.logger.Info("email.assets.downloaded", "name", filepath.Base(p), "bytes", len(body))
				files = append(files, p)
			}
		}
	}

	for _, att := range attachments {
		name := filepath.Base(att.Filename)
		if !constants.IsImageExt(filepath.Ext(name)) {
			continue
		}
		if p, err := writeUnique(dir, name, att.Content, used); err != nil {
			m.logger.Warn("email.assets.write_failed", "name", name, "error", err)
		} else {
			m.logger.Info("email.assets.saved_attachment", "name", filepath.Base(p), "bytes", len(att.Content))
			files = append(files, p)
		}
	}
	return files
}

// imageFileName names a downloaded image from its URL path when that carries
// an eligible extension, else from the Content-Type.
func imageFileName(rawURL, contentType string, index int) (string, bool) {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if base != "." && base != "/" && constants.IsImageExt(path.Ext(base)) {
			return base, true
		}
	}
	if ext := constants.ExtFromContentType(contentType); ext != "" {
		return fmt.Sprintf("image_%d.%s", index, ext), true
	}
	return "", false
}

// writeUnique writes data under dir, suffixing the name until it differs from
// every name already written for this email.
func writeUnique(dir, name string, data []byte, used map[string]bool) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 1; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[strings.ToLower(candidate)] = true
	p := filepath.Join(dir, candidate)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}
