// Package objectstore declares the Object Store Gateway (spec §4.9): a
// small interface used by two flows — issuing presigned upload URLs to
// clients, and letting the TikTok driver download media to a local temp
// file for chunked upload. No example repo in the corpus imports a cloud
// storage SDK, so the only concrete implementation here is a local
// filesystem reference gateway; a real deployment swaps in an
// S3/R2-compatible client behind the same interface.
package objectstore

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Gateway is the out-of-scope external collaborator boundary for blob
// storage.
type Gateway interface {
	// UploadFile stores bytes under key and returns a publicly
	// resolvable URL.
	UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (publicURL string, err error)

	// GetSignedURL returns a time-limited URL for client-side GET/PUT
	// of key.
	GetSignedURL(ctx context.Context, key string, method string) (string, error)

	DeleteFile(ctx context.Context, key string) error

	// DownloadToTempFile fetches key (or an arbitrary external URL, for
	// driver use) to a local temp file and returns its path. The caller
	// owns the returned file and must remove it. publicationID is
	// embedded in the temp file's name (spec §5) so a stuck download can
	// be traced back to the publication that triggered it.
	DownloadToTempFile(ctx context.Context, publicationID uuid.UUID, sourceURL string) (path string, size int64, err error)
}
