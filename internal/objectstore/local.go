package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalGateway is the reference Gateway implementation: files live under
// a base directory on disk and are served back by PublicDomain (e.g. a
// sibling static file server or a dev-only echo handler). It exists so
// the rest of the system (media upload, TikTok driver download) has a
// concrete collaborator to run against without a cloud SDK dependency.
type LocalGateway struct {
	baseDir      string
	publicDomain string
	httpClient   *http.Client
}

func NewLocalGateway(baseDir, publicDomain string) *LocalGateway {
	return &LocalGateway{baseDir: baseDir, publicDomain: publicDomain, httpClient: &http.Client{}}
}

func (g *LocalGateway) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	dest := filepath.Join(g.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("objectstore: mkdir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("objectstore: create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("objectstore: write: %w", err)
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(g.publicDomain, "/"), key), nil
}

// GetSignedURL returns the plain public URL of key under PublicDomain,
// the same URL UploadFile returns. It is not signed, does not expire,
// and method is ignored.
func (g *LocalGateway) GetSignedURL(ctx context.Context, key string, method string) (string, error) {
	return fmt.Sprintf("%s/%s", strings.TrimRight(g.publicDomain, "/"), key), nil
}

func (g *LocalGateway) DeleteFile(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(g.baseDir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objectstore: delete: %w", err)
	}
	return nil
}

// DownloadToTempFile fetches sourceURL over HTTP to a local temp file.
// Used by the TikTok driver, which needs random byte-range access for
// chunked upload (spec §4.5). The temp file is confined to the system
// temp directory with publicationID in its name (spec §5), so a file
// left behind by a crashed process can be traced back to its publication.
func (g *LocalGateway) DownloadToTempFile(ctx context.Context, publicationID uuid.UUID, sourceURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("objectstore: build download request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("objectstore: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("objectstore: download failed (%d)", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", fmt.Sprintf("planer-media-%s-*.tmp", publicationID))
	if err != nil {
		return "", 0, fmt.Errorf("objectstore: create temp file: %w", err)
	}
	defer tmp.Close()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("objectstore: write temp file: %w", err)
	}
	return tmp.Name(), n, nil
}
