// Package media downloads remote images into the local media directory.
package media

import (
	"context"
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
)

var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

type Config struct {
	Dir             string
	DownloadTimeout time.Duration
}

type Store struct {
	httpClient *http.Client
	dir        string
	logger     *slog.Logger
}

func NewStore(cfg Config, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{
		httpClient: &http.Client{Timeout: cfg.DownloadTimeout},
		dir:        cfg.Dir,
		logger:     logger.With("component", "media"),
	}, nil
}

// Download fetches the image at rawURL into the media directory under
// baseName plus the URL's extension (jpg when unrecognized) and returns the
// stored file path.
func (s *Store) Download(ctx context.Context, rawURL, baseName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}

	filePath := filepath.Join(s.dir, baseName+"."+extensionFor(rawURL))
	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(filePath)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(filePath)
		return "", fmt.Errorf("close media file: %w", err)
	}

	s.logger.Debug("downloaded image", "url", rawURL, "path", filePath)
	return filePath, nil
}

// Remove deletes owned media files, logging rather than failing on missing
// ones (a crashed step may already have removed them).
func (s *Store) Remove(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove media file", "path", p, "error", err)
		}
	}
}

func extensionFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "jpg"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if !allowedExtensions[ext] {
		return "jpg"
	}
	return ext
}
