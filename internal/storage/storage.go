// Package storage persists uploaded attachments. Handlers see only
// ObjectStore; the MinIO implementation lives behind it.
package storage

import (
	"context"
	"errors"
	"io"
)

// Upload size caps, per uploader kind.
const (
	MaxWriterAttachmentSize  = 5 << 20  // 5 MB
	MaxProjectAttachmentSize = 10 << 20 // 10 MB
)

var (
	ErrFileTooLarge       = errors.New("file exceeds the size limit")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// allowedContentTypes for writer-application documents.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// AllowedContentType reports whether a writer attachment of the given MIME
// type may be stored. Project attachments are not restricted by type.
func AllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[contentType]
	return ok
}

// ObjectStore stores attachment blobs and hands back opaque references.
type ObjectStore interface {
	// Put stores size bytes from r under a generated key and returns the
	// reference to persist on the owning entity.
	Put(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}
