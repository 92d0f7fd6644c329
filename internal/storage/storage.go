package storage

import (
	"context"
	"errors"
	"io"
	"path"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore keeps uploaded blobs outside the relational database.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

// ObjectKey builds the blob key for a stored file under its owner prefix.
func ObjectKey(ownerKind, ownerID, fileName string) string {
	return path.Join(ownerKind+"s", ownerID, fileName)
}
