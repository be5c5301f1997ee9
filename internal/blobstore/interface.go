package blobstore

import (
	"context"
	"io"
	"os"
)

// BlobStore is the named-object storage abstraction used by the hook store.
// Objects become visible under their final name only after a complete write.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	WriteFile(ctx context.Context, name string, data []byte) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, name string) (os.FileInfo, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, suffix string) ([]string, error)
}
